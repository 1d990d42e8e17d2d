package impl

import (
	"FamilyTime/models"
	"FamilyTime/repositories"

	"gorm.io/gorm"
)

type ParentRepositoryImpl struct {
	DB *gorm.DB
}

func NewParentRepository(db *gorm.DB) repositories.ParentRepository {
	return &ParentRepositoryImpl{DB: db}
}

func (r *ParentRepositoryImpl) FindByFirebaseUID(firebaseUID string) (models.Parent, error) {
	var parent models.Parent
	if err := r.DB.Where("firebase_uid = ?", firebaseUID).First(&parent).Error; err != nil {
		return models.Parent{}, translate(err)
	}
	return parent, nil
}

func (r *ParentRepositoryImpl) FindByCode(code string) (models.Parent, error) {
	var parent models.Parent
	if err := r.DB.Where("code = ?", code).First(&parent).Error; err != nil {
		return models.Parent{}, translate(err)
	}
	return parent, nil
}

func (r *ParentRepositoryImpl) CountByCode(code string, count *int64) error {
	return r.DB.Model(&models.Parent{}).Where("code = ?", code).Count(count).Error
}

func (r *ParentRepositoryImpl) Save(parent models.Parent) error {
	return r.DB.Save(&parent).Error
}
