package services

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/policy"
	"FamilyTime/repositories"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// FamilyService привязка детей к семье и их настройки (бюджет, тихие часы, токен устройства)
type FamilyService struct {
	LedgerDeps
	ParentRepo repositories.ParentRepository
}

func NewFamilyService(deps LedgerDeps, parentRepo repositories.ParentRepository) *FamilyService {
	return &FamilyService{LedgerDeps: deps.withDefaults(), ParentRepo: parentRepo}
}

type BindChildInput struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Lang string `json:"lang,omitempty"`
}

// ChildSettingsInput nil поля не меняются
type ChildSettingsInput struct {
	Name               *string        `json:"name,omitempty"`
	Lang               *string        `json:"lang,omitempty"`
	DailyBudgetMinutes *int           `json:"dailyBudgetMinutes,omitempty"`
	Policy             *models.Policy `json:"policy,omitempty"`
}

func (in ChildSettingsInput) Validate(limits LedgerLimits) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return newLedgerError(CodeInvalidArgument, "Name must not be empty")
	}
	if in.DailyBudgetMinutes != nil && (*in.DailyBudgetMinutes < 0 || *in.DailyBudgetMinutes > limits.MaxDailyBudget) {
		return newLedgerError(CodeInvalidArgument, fmt.Sprintf("Daily budget must be between 0 and %d minutes", limits.MaxDailyBudget))
	}
	if in.Policy != nil {
		if bad := policy.ValidatePolicy(*in.Policy); len(bad) > 0 {
			return newLedgerError(CodeInvalidArgument, fmt.Sprintf("Invalid quiet hours at index %d", bad[0]))
		}
	}
	return nil
}

// BindChild привязывает устройство ребенка к родителю по коду. Повторная привязка
// (например, после выхода) переносит ребенка к владельцу нового кода.
func (s *FamilyService) BindChild(ctx context.Context, session *models.Session, in BindChildInput) (models.Child, error) {
	if err := s.requireSession(session); err != nil {
		return models.Child{}, err
	}
	if session.Role != models.RoleChild {
		return models.Child{}, newLedgerError(CodePermissionDenied, "Only a child device can be bound")
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return models.Child{}, newLedgerError(CodeInvalidArgument, "code is required")
	}

	parent, err := s.ParentRepo.FindByCode(code)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Child{}, newLedgerError(CodeInvalidArgument, "Invalid or expired pairing code")
	}
	if err != nil {
		return models.Child{}, internalError("Failed to load parent", err)
	}
	if !parent.IsCodeValid(s.Now()) {
		return models.Child{}, newLedgerError(CodeInvalidArgument, "Invalid or expired pairing code")
	}

	now := s.now()
	child, err := s.Children.FindByFirebaseUID(session.UID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return models.Child{}, newLedgerError(CodeInvalidArgument, "name is required")
		}
		child = models.Child{
			Role:               models.RoleChild,
			Name:               name,
			Lang:               in.Lang,
			FirebaseUID:        session.UID,
			DailyBudgetMinutes: s.Limits.DefaultBudgetMinutes,
			CreatedAt:          now,
		}
	case err != nil:
		return models.Child{}, internalError("Failed to load child", err)
	default:
		if name := strings.TrimSpace(in.Name); name != "" {
			child.Name = name
		}
		if in.Lang != "" {
			child.Lang = in.Lang
		}
	}
	child.ParentFirebaseUID = parent.FirebaseUID
	child.IsBinded = true
	child.UpdatedAt = now

	if err := s.Children.Save(child); err != nil {
		return models.Child{}, internalError("Failed to save child", err)
	}

	config.Log.WithFields(logrus.Fields{
		"child":  child.FirebaseUID,
		"parent": parent.FirebaseUID,
	}).Info("[FAMILY] Ребенок привязан")

	s.notify(ctx, models.Notification{
		RecipientID: parent.FirebaseUID,
		FamilyID:    parent.FirebaseUID,
		Kind:        models.NotifyChildBound,
		Title:       "New device",
		Body:        fmt.Sprintf("%s joined your family", displayName(child)),
		Data:        map[string]string{"childId": child.FirebaseUID},
	})
	return child, nil
}

// UnbindChild выход ребенка из семьи; ссылка на родителя сохраняется для журнала
func (s *FamilyService) UnbindChild(session *models.Session, childID string) (models.Child, error) {
	if err := s.requireSession(session); err != nil {
		return models.Child{}, err
	}
	child, err := s.loadChild(childID)
	if err != nil {
		return models.Child{}, err
	}
	if err := requireFamilyMember(session, child); err != nil {
		return models.Child{}, err
	}

	child.IsBinded = false
	child.UpdatedAt = s.now()
	if err := s.Children.Save(child); err != nil {
		return models.Child{}, internalError("Failed to save child", err)
	}
	return child, nil
}

func (s *FamilyService) ListChildren(session *models.Session) ([]models.Child, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	if !session.IsParent() {
		return nil, newLedgerError(CodePermissionDenied, "Only a parent can list children")
	}
	children, err := s.Children.ListByParent(session.UID)
	if err != nil {
		return nil, internalError("Failed to load children", err)
	}
	if children == nil {
		children = []models.Child{}
	}
	return children, nil
}

// UpdateChildSettings меняет бюджет по умолчанию и политику. Уже созданные записи
// дня не пересчитываются: новый бюджет действует со следующего дня.
func (s *FamilyService) UpdateChildSettings(session *models.Session, childID string, in ChildSettingsInput) (models.Child, error) {
	if err := s.requireSession(session); err != nil {
		return models.Child{}, err
	}
	if err := in.Validate(s.Limits); err != nil {
		return models.Child{}, err
	}
	child, err := s.loadChild(childID)
	if err != nil {
		return models.Child{}, err
	}
	if err := requireParentOf(session, child); err != nil {
		return models.Child{}, err
	}

	if in.Name != nil {
		child.Name = strings.TrimSpace(*in.Name)
	}
	if in.Lang != nil {
		child.Lang = *in.Lang
	}
	if in.DailyBudgetMinutes != nil {
		child.DailyBudgetMinutes = *in.DailyBudgetMinutes
	}
	if in.Policy != nil {
		raw, err := json.Marshal(in.Policy)
		if err != nil {
			return models.Child{}, internalError("Failed to encode policy", err)
		}
		child.Policy = datatypes.JSON(raw)
	}
	child.UpdatedAt = s.now()

	if err := s.Children.Save(child); err != nil {
		return models.Child{}, internalError("Failed to save child", err)
	}
	return child, nil
}

// RegisterDevice сохраняет FCM токен устройства вызывающего
func (s *FamilyService) RegisterDevice(session *models.Session, deviceToken string) error {
	if err := s.requireSession(session); err != nil {
		return err
	}
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return newLedgerError(CodeInvalidArgument, "deviceToken is required")
	}

	if session.IsParent() {
		parent, err := s.ParentRepo.FindByFirebaseUID(session.UID)
		if err != nil {
			return asLedgerError(err, "Parent not found")
		}
		parent.DeviceToken = deviceToken
		if err := s.ParentRepo.Save(parent); err != nil {
			return internalError("Failed to save parent", err)
		}
		return nil
	}

	child, err := s.loadChild(session.UID)
	if err != nil {
		return err
	}
	child.DeviceToken = deviceToken
	if err := s.Children.Save(child); err != nil {
		return internalError("Failed to save child", err)
	}
	return nil
}
