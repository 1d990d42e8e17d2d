package repositories

import "FamilyTime/models"

type ChildRepository interface {
	FindByFirebaseUID(firebaseUID string) (models.Child, error)
	FindByParentAndName(parentFirebaseUID, name string) (models.Child, error)
	ListByParent(parentFirebaseUID string) ([]models.Child, error)
	Save(child models.Child) error
}
