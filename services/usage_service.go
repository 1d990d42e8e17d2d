package services

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/policy"
	"FamilyTime/repositories"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultAuditLimit = 50

type ReportUsageInput struct {
	ChildID     string `json:"childId"`
	UsedMinutes int    `json:"usedMinutes"`
}

func (in ReportUsageInput) Validate() error {
	if strings.TrimSpace(in.ChildID) == "" {
		return newLedgerError(CodeInvalidArgument, "childId is required")
	}
	if in.UsedMinutes < 0 {
		return newLedgerError(CodeInvalidArgument, "usedMinutes must not be negative")
	}
	return nil
}

type LockStateResult struct {
	OK               bool   `json:"ok"`
	ChildID          string `json:"childId"`
	Date             string `json:"date"`
	Locked           bool   `json:"locked"`
	BudgetMinutes    int    `json:"budgetMinutes"`
	UsedMinutes      int    `json:"usedMinutes"`
	RemainingMinutes int    `json:"remainingMinutes"`
}

// UsageService расход экранного времени и состояние блокировки устройства
type UsageService struct {
	LedgerDeps
}

func NewUsageService(deps LedgerDeps) *UsageService {
	return &UsageService{LedgerDeps: deps.withDefaults()}
}

// ReportUsage сохраняет расход за сегодня. Значение только растет:
// запоздавший отчет с меньшим числом не уменьшает UsedMinutes.
func (s *UsageService) ReportUsage(ctx context.Context, session *models.Session, in ReportUsageInput) (LockStateResult, error) {
	if err := s.requireSession(session); err != nil {
		return LockStateResult{}, err
	}
	if err := in.Validate(); err != nil {
		return LockStateResult{}, err
	}
	child, err := s.loadChild(in.ChildID)
	if err != nil {
		return LockStateResult{}, err
	}
	if err := requireFamilyMember(session, child); err != nil {
		return LockStateResult{}, err
	}

	now := s.now()
	today := s.dayOf(now, 0)
	var record models.ScreenTimeRecord
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		var err error
		record, err = tx.LockScreenTimeRecord(child.FirebaseUID, today, s.budgetFor(child))
		if err != nil {
			return err
		}
		previous := record.UsedMinutes
		if in.UsedMinutes > record.UsedMinutes {
			record.UsedMinutes = in.UsedMinutes
		}
		record.UpdatedAt = now
		if err := tx.SaveScreenTimeRecord(record); err != nil {
			return err
		}
		return tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), models.AuditUsageReported,
			session.UID, child.FirebaseUID, map[string]interface{}{
				"reportedMinutes": in.UsedMinutes,
				"previousMinutes": previous,
				"usedMinutes":     record.UsedMinutes,
				"date":            today,
			}, now))
	})
	if err != nil {
		return LockStateResult{}, asLedgerError(err, "Child not found")
	}

	state := s.evaluate(child, record, now)
	config.Log.WithFields(logrus.Fields{
		"child":  child.FirebaseUID,
		"used":   record.UsedMinutes,
		"locked": state.Locked,
	}).Debug("[USAGE] Расход обновлен")
	return state, nil
}

// LockState вычисляет, заблокировано ли устройство ребенка в момент now
func (s *UsageService) LockState(ctx context.Context, session *models.Session, childID string, now time.Time) (LockStateResult, error) {
	if err := s.requireSession(session); err != nil {
		return LockStateResult{}, err
	}
	child, err := s.loadChild(childID)
	if err != nil {
		return LockStateResult{}, err
	}
	if err := requireFamilyMember(session, child); err != nil {
		return LockStateResult{}, err
	}
	if now.IsZero() {
		now = s.now()
	}
	record, err := s.todayRecord(ctx, child, now)
	if err != nil {
		return LockStateResult{}, err
	}
	return s.evaluate(child, record, now), nil
}

// AuditTrail последние события журнала, новые первыми
func (s *UsageService) AuditTrail(ctx context.Context, session *models.Session, childID string, limit int) ([]models.AuditEvent, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	child, err := s.loadChild(childID)
	if err != nil {
		return nil, err
	}
	if err := requireParentOf(session, child); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultAuditLimit
	}
	events, err := s.Store.ListAuditEvents(ctx, childID, limit)
	if err != nil {
		return nil, internalError("Failed to load audit trail", err)
	}
	return events, nil
}

func (s *UsageService) todayRecord(ctx context.Context, child models.Child, now time.Time) (models.ScreenTimeRecord, error) {
	today := s.dayOf(now, 0)
	record, err := s.Store.FindScreenTimeRecord(ctx, child.FirebaseUID, today)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.ScreenTimeRecord{ChildID: child.FirebaseUID, Date: today, BudgetMinutes: s.budgetFor(child)}, nil
	}
	if err != nil {
		return models.ScreenTimeRecord{}, internalError("Failed to load screen time", err)
	}
	return record, nil
}

func (s *UsageService) evaluate(child models.Child, record models.ScreenTimeRecord, now time.Time) LockStateResult {
	usage := record.Snapshot()
	return LockStateResult{
		OK:               true,
		ChildID:          child.FirebaseUID,
		Date:             record.Date,
		Locked:           !policy.IsUsageAllowed(child.DecodePolicy(), &usage, now.In(s.Location)),
		BudgetMinutes:    usage.BudgetMinutes,
		UsedMinutes:      usage.UsedMinutes,
		RemainingMinutes: usage.RemainingMinutes(),
	}
}
