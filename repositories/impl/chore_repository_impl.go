package impl

import (
	"FamilyTime/models"
	"FamilyTime/repositories"

	"gorm.io/gorm"
)

type ChoreRepositoryImpl struct {
	DB *gorm.DB
}

func NewChoreRepository(db *gorm.DB) repositories.ChoreRepository {
	return &ChoreRepositoryImpl{DB: db}
}

func (r *ChoreRepositoryImpl) Save(chore models.Chore) error {
	return r.DB.Save(&chore).Error
}

func (r *ChoreRepositoryImpl) FindByID(id string) (models.Chore, error) {
	var chore models.Chore
	if err := r.DB.First(&chore, "id = ?", id).Error; err != nil {
		return models.Chore{}, translate(err)
	}
	return chore, nil
}

func (r *ChoreRepositoryImpl) ListByChild(childFirebaseUID string) ([]models.Chore, error) {
	var chores []models.Chore
	err := r.DB.Where("child_id = ?", childFirebaseUID).Order("created_at DESC").Find(&chores).Error
	return chores, err
}
