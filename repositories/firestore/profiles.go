package firestore

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const (
	childrenCollection = "children"
	parentsCollection  = "parents"
	choresCollection   = "chores"
)

// Профили лежат в документах с id = Firebase UID (для задач id задачи).
// Интерфейсы репозиториев без контекста, поэтому используется context.Background().

type ChildRepository struct {
	client *firestore.Client
}

func NewChildRepository(client *firestore.Client) *ChildRepository {
	return &ChildRepository{client: client}
}

func (r *ChildRepository) FindByFirebaseUID(firebaseUID string) (models.Child, error) {
	var child models.Child
	err := getDoc(context.Background(), r.client.Collection(childrenCollection).Doc(firebaseUID), &child)
	return child, err
}

// FindByParentAndName сравнивает имена без учета регистра на клиенте:
// Firestore не умеет case-insensitive запросы
func (r *ChildRepository) FindByParentAndName(parentFirebaseUID, name string) (models.Child, error) {
	children, err := r.ListByParent(parentFirebaseUID)
	if err != nil {
		return models.Child{}, err
	}
	name = strings.TrimSpace(name)
	for _, child := range children {
		if strings.EqualFold(child.Name, name) {
			return child, nil
		}
	}
	return models.Child{}, repositories.ErrNotFound
}

func (r *ChildRepository) ListByParent(parentFirebaseUID string) ([]models.Child, error) {
	var children []models.Child
	query := r.client.Collection(childrenCollection).Where("parentFirebaseUid", "==", parentFirebaseUID)
	err := collect(context.Background(), query, func(snap *firestore.DocumentSnapshot) error {
		var child models.Child
		if err := snap.DataTo(&child); err != nil {
			return err
		}
		children = append(children, child)
		return nil
	})
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, err
}

func (r *ChildRepository) Save(child models.Child) error {
	_, err := r.client.Collection(childrenCollection).Doc(child.FirebaseUID).Set(context.Background(), child)
	return err
}

type ParentRepository struct {
	client *firestore.Client
}

func NewParentRepository(client *firestore.Client) *ParentRepository {
	return &ParentRepository{client: client}
}

func (r *ParentRepository) FindByFirebaseUID(firebaseUID string) (models.Parent, error) {
	var parent models.Parent
	err := getDoc(context.Background(), r.client.Collection(parentsCollection).Doc(firebaseUID), &parent)
	return parent, err
}

func (r *ParentRepository) FindByCode(code string) (models.Parent, error) {
	var found *models.Parent
	query := r.client.Collection(parentsCollection).Where("code", "==", code).Limit(1)
	err := collect(context.Background(), query, func(snap *firestore.DocumentSnapshot) error {
		var parent models.Parent
		if err := snap.DataTo(&parent); err != nil {
			return err
		}
		found = &parent
		return nil
	})
	if err != nil {
		return models.Parent{}, err
	}
	if found == nil {
		return models.Parent{}, repositories.ErrNotFound
	}
	return *found, nil
}

func (r *ParentRepository) CountByCode(code string, count *int64) error {
	*count = 0
	query := r.client.Collection(parentsCollection).Where("code", "==", code)
	return collect(context.Background(), query, func(*firestore.DocumentSnapshot) error {
		*count++
		return nil
	})
}

func (r *ParentRepository) Save(parent models.Parent) error {
	_, err := r.client.Collection(parentsCollection).Doc(parent.FirebaseUID).Set(context.Background(), parent)
	return err
}

type ChoreRepository struct {
	client *firestore.Client
}

func NewChoreRepository(client *firestore.Client) *ChoreRepository {
	return &ChoreRepository{client: client}
}

func (r *ChoreRepository) Save(chore models.Chore) error {
	_, err := r.client.Collection(choresCollection).Doc(chore.ID).Set(context.Background(), chore)
	return err
}

func (r *ChoreRepository) FindByID(id string) (models.Chore, error) {
	var chore models.Chore
	err := getDoc(context.Background(), r.client.Collection(choresCollection).Doc(id), &chore)
	return chore, err
}

func (r *ChoreRepository) ListByChild(childFirebaseUID string) ([]models.Chore, error) {
	var chores []models.Chore
	query := r.client.Collection(choresCollection).
		Where("childId", "==", childFirebaseUID).
		OrderBy("createdAt", firestore.Desc)
	err := collect(context.Background(), query, func(snap *firestore.DocumentSnapshot) error {
		var chore models.Chore
		if err := snap.DataTo(&chore); err != nil {
			return err
		}
		chores = append(chores, chore)
		return nil
	})
	return chores, err
}

func collect(ctx context.Context, query firestore.Query, fn func(snap *firestore.DocumentSnapshot) error) error {
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}
