package impl

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"strings"

	"gorm.io/gorm"
)

type ChildRepositoryImpl struct {
	DB *gorm.DB
}

func NewChildRepository(db *gorm.DB) repositories.ChildRepository {
	return &ChildRepositoryImpl{DB: db}
}

func (r *ChildRepositoryImpl) FindByFirebaseUID(firebaseUID string) (models.Child, error) {
	var child models.Child
	if err := r.DB.Where("firebase_uid = ?", firebaseUID).First(&child).Error; err != nil {
		return models.Child{}, translate(err)
	}
	return child, nil
}

func (r *ChildRepositoryImpl) FindByParentAndName(parentFirebaseUID, name string) (models.Child, error) {
	var child models.Child
	err := r.DB.Where("parent_firebase_uid = ? AND LOWER(name) = ?", parentFirebaseUID, strings.ToLower(strings.TrimSpace(name))).
		First(&child).Error
	if err != nil {
		return models.Child{}, translate(err)
	}
	return child, nil
}

func (r *ChildRepositoryImpl) ListByParent(parentFirebaseUID string) ([]models.Child, error) {
	var children []models.Child
	err := r.DB.Where("parent_firebase_uid = ?", parentFirebaseUID).Order("name").Find(&children).Error
	return children, err
}

func (r *ChildRepositoryImpl) Save(child models.Child) error {
	return r.DB.Save(&child).Error
}
