package memory

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"sort"
	"strings"
	"sync"
)

// ChildRepository хранит профили детей в памяти (STORE_DRIVER=memory)
type ChildRepository struct {
	mu       sync.RWMutex
	children map[string]models.Child
}

func NewChildRepository(children ...models.Child) *ChildRepository {
	r := &ChildRepository{children: make(map[string]models.Child)}
	for _, child := range children {
		r.children[child.FirebaseUID] = child
	}
	return r
}

func (r *ChildRepository) FindByFirebaseUID(firebaseUID string) (models.Child, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	child, ok := r.children[firebaseUID]
	if !ok {
		return models.Child{}, repositories.ErrNotFound
	}
	return child, nil
}

func (r *ChildRepository) FindByParentAndName(parentFirebaseUID, name string) (models.Child, error) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, child := range r.children {
		if child.ParentFirebaseUID == parentFirebaseUID && strings.EqualFold(child.Name, name) {
			return child, nil
		}
	}
	return models.Child{}, repositories.ErrNotFound
}

func (r *ChildRepository) ListByParent(parentFirebaseUID string) ([]models.Child, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Child
	for _, child := range r.children {
		if child.ParentFirebaseUID == parentFirebaseUID {
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ChildRepository) Save(child models.Child) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children[child.FirebaseUID] = child
	return nil
}

type ParentRepository struct {
	mu      sync.RWMutex
	parents map[string]models.Parent
}

func NewParentRepository(parents ...models.Parent) *ParentRepository {
	r := &ParentRepository{parents: make(map[string]models.Parent)}
	for _, parent := range parents {
		r.parents[parent.FirebaseUID] = parent
	}
	return r
}

func (r *ParentRepository) FindByFirebaseUID(firebaseUID string) (models.Parent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parent, ok := r.parents[firebaseUID]
	if !ok {
		return models.Parent{}, repositories.ErrNotFound
	}
	return parent, nil
}

func (r *ParentRepository) FindByCode(code string) (models.Parent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, parent := range r.parents {
		if parent.Code == code {
			return parent, nil
		}
	}
	return models.Parent{}, repositories.ErrNotFound
}

func (r *ParentRepository) CountByCode(code string, count *int64) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	*count = 0
	for _, parent := range r.parents {
		if parent.Code == code {
			*count++
		}
	}
	return nil
}

func (r *ParentRepository) Save(parent models.Parent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents[parent.FirebaseUID] = parent
	return nil
}

type ChoreRepository struct {
	mu     sync.RWMutex
	chores map[string]models.Chore
}

func NewChoreRepository() *ChoreRepository {
	return &ChoreRepository{chores: make(map[string]models.Chore)}
}

func (r *ChoreRepository) Save(chore models.Chore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chores[chore.ID] = chore
	return nil
}

func (r *ChoreRepository) FindByID(id string) (models.Chore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chore, ok := r.chores[id]
	if !ok {
		return models.Chore{}, repositories.ErrNotFound
	}
	return chore, nil
}

// ListByChild новые задачи первыми
func (r *ChoreRepository) ListByChild(childFirebaseUID string) ([]models.Chore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Chore
	for _, chore := range r.chores {
		if chore.ChildID == childFirebaseUID {
			out = append(out, chore)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
