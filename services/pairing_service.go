package services

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const maxCodeAttempts = 20

// PairingService 4-значный код, по которому ребенок привязывается к семье
type PairingService struct {
	ParentRepo repositories.ParentRepository
	Now        func() time.Time
	// Intn равномерное число из [0, n); код открывает доступ к семье,
	// поэтому по умолчанию берется из crypto/rand
	Intn       func(n int) (int, error)
}

func NewPairingService(parentRepo repositories.ParentRepository) *PairingService {
	return &PairingService{ParentRepo: parentRepo, Now: time.Now, Intn: cryptoIntn}
}

func cryptoIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// RefreshParentCode выдает новый уникальный код со сроком действия 24 часа
func (s *PairingService) RefreshParentCode(firebaseUID string) (models.Parent, error) {
	parent, err := s.loadOrCreateParent(firebaseUID)
	if err != nil {
		return models.Parent{}, err
	}

	code, err := s.uniqueCode()
	if err != nil {
		return models.Parent{}, err
	}
	parent.RefreshCode(code, s.Now())

	if err := s.ParentRepo.Save(parent); err != nil {
		return models.Parent{}, internalError("Failed to save parent", err)
	}
	return parent, nil
}

// EnsureValidParentCode возвращает текущий код или выпускает новый, если он истек
func (s *PairingService) EnsureValidParentCode(firebaseUID string) (models.Parent, error) {
	parent, err := s.loadOrCreateParent(firebaseUID)
	if err != nil {
		return models.Parent{}, err
	}
	if parent.IsCodeValid(s.Now()) {
		return parent, nil
	}
	return s.RefreshParentCode(firebaseUID)
}

// loadOrCreateParent: аккаунт создается в Firebase, профиль заводим при первом обращении
func (s *PairingService) loadOrCreateParent(firebaseUID string) (models.Parent, error) {
	parent, err := s.ParentRepo.FindByFirebaseUID(firebaseUID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Parent{FirebaseUID: firebaseUID, Role: models.RoleParent}, nil
	}
	if err != nil {
		return models.Parent{}, internalError("Failed to load parent", err)
	}
	return parent, nil
}

func (s *PairingService) IsParentCodeValid(code string) (bool, error) {
	parent, err := s.ParentRepo.FindByCode(code)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, internalError("Failed to load parent", err)
	}
	return parent.IsCodeValid(s.Now()), nil
}

func (s *PairingService) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		n, err := s.Intn(9000)
		if err != nil {
			return "", internalError("Failed to generate pairing code", err)
		}
		code := fmt.Sprintf("%04d", 1000+n) // Гарантируем формат 4 цифр
		var count int64
		if err := s.ParentRepo.CountByCode(code, &count); err != nil {
			return "", internalError("Failed to check pairing code", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", internalError("Failed to generate pairing code", errors.New("no free code"))
}
