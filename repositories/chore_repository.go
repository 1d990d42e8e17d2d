package repositories

import "FamilyTime/models"

type ChoreRepository interface {
	Save(chore models.Chore) error
	FindByID(id string) (models.Chore, error)
	ListByChild(childFirebaseUID string) ([]models.Chore, error)
}
