package services

import (
	"FamilyTime/config"
	"FamilyTime/interfaces"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LedgerLimits ограничения леджера
type LedgerLimits struct {
	DailyRequestCap      int
	MaxRequestMinutes    int
	MaxDailyBudget       int
	DefaultBudgetMinutes int
}

func DefaultLimits() LedgerLimits {
	return LedgerLimits{
		DailyRequestCap:      3,
		MaxRequestMinutes:    120,
		MaxDailyBudget:       240,
		DefaultBudgetMinutes: 120,
	}
}

// LedgerDeps общие зависимости сервисов леджера
type LedgerDeps struct {
	Store    repositories.LedgerStore
	Children repositories.ChildRepository
	Notifier interfaces.NotificationSink
	Limits   LedgerLimits
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

func (d LedgerDeps) withDefaults() LedgerDeps {
	if d.Limits == (LedgerLimits{}) {
		d.Limits = DefaultLimits()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

func (d LedgerDeps) now() time.Time {
	return d.Now().In(d.Location)
}

func (d LedgerDeps) dayOf(t time.Time, offsetDays int) string {
	return t.In(d.Location).AddDate(0, 0, offsetDays).Format(models.DateLayout)
}

func (d LedgerDeps) budgetFor(child models.Child) int {
	if child.DailyBudgetMinutes > 0 {
		return child.DailyBudgetMinutes
	}
	return d.Limits.DefaultBudgetMinutes
}

func (d LedgerDeps) requireSession(session *models.Session) error {
	if !session.Authenticated(d.Now()) {
		return ErrUnauthenticated
	}
	return nil
}

func (d LedgerDeps) loadChild(childID string) (models.Child, error) {
	child, err := d.Children.FindByFirebaseUID(childID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Child{}, newLedgerError(CodeNotFound, "Child not found")
	}
	if err != nil {
		return models.Child{}, internalError("Failed to load child", err)
	}
	return child, nil
}

func requireParentOf(session *models.Session, child models.Child) error {
	if !session.IsParent() || !child.BelongsTo(session.UID) {
		return newLedgerError(CodePermissionDenied, "Only the child's parent can do this")
	}
	return nil
}

// requireFamilyMember: сам ребенок или его родитель
func requireFamilyMember(session *models.Session, child models.Child) error {
	if session.UID == child.FirebaseUID || child.BelongsTo(session.UID) {
		return nil
	}
	return newLedgerError(CodePermissionDenied, "Not a member of this family")
}

// asLedgerError оборачивает ошибки хранилища, не трогая уже типизированные
func asLedgerError(err error, message string) error {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return err
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return newLedgerError(CodeNotFound, message)
	}
	return internalError(message, err)
}

// notify best-effort: ошибка только логируется
func (d LedgerDeps) notify(ctx context.Context, n models.Notification) {
	if d.Notifier == nil || n.RecipientID == "" {
		return
	}
	if err := d.Notifier.Notify(ctx, n); err != nil {
		config.Log.WithFields(logrus.Fields{
			"recipient": n.RecipientID,
			"kind":      n.Kind,
		}).Warnf("[NOTIFY] Не удалось доставить уведомление: %v", err)
	}
}
