package impl

import (
	"FamilyTime/repositories"
	"errors"

	"gorm.io/gorm"
)

// translate приводит gorm.ErrRecordNotFound к общему repositories.ErrNotFound
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
