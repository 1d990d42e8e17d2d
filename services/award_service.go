package services

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type AwardResult struct {
	OK               bool   `json:"ok"`
	AwardDate        string `json:"awardDate,omitempty"`
	Capped           bool   `json:"capped"`
	NewBudgetMinutes int    `json:"newBudgetMinutes,omitempty"`
	AlreadyApplied   bool   `json:"alreadyApplied,omitempty"`
}

type GrantBonusInput struct {
	ChildID string `json:"childId"`
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason,omitempty"`
}

func (in GrantBonusInput) Validate() error {
	if strings.TrimSpace(in.ChildID) == "" {
		return newLedgerError(CodeInvalidArgument, "childId is required")
	}
	if in.Minutes <= 0 {
		return newLedgerError(CodeInvalidArgument, "Minutes must be greater than 0")
	}
	return nil
}

type BonusResult struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	AwardDate        string `json:"awardDate"`
	Capped           bool   `json:"capped"`
	NewBudgetMinutes int    `json:"newBudgetMinutes"`
}

// AwardService начисление минут за выполненные задачи и ручные бонусы
type AwardService struct {
	LedgerDeps
}

func NewAwardService(deps LedgerDeps) *AwardService {
	return &AwardService{LedgerDeps: deps.withDefaults()}
}

// ApplyAward начисляет награду за прошедшую проверку задачу на завтрашний день.
// Повторный вызов для той же submission ничего не пишет и возвращает AlreadyApplied.
func (s *AwardService) ApplyAward(ctx context.Context, submissionID string) (AwardResult, error) {
	if strings.TrimSpace(submissionID) == "" {
		return AwardResult{}, newLedgerError(CodeInvalidArgument, "submissionId is required")
	}
	existing, err := s.Store.FindSubmission(ctx, submissionID)
	if err != nil {
		return AwardResult{}, asLedgerError(err, "Submission not found")
	}
	child, err := s.loadChild(existing.ChildID)
	if err != nil {
		return AwardResult{}, err
	}

	now := s.now()
	var (
		result  AwardResult
		applied models.Submission
	)
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		submission, err := tx.GetSubmission(submissionID)
		if err != nil {
			return err
		}
		if submission.RewardApplied {
			result = AwardResult{OK: true, AwardDate: s.dayOf(now, 1), AlreadyApplied: true}
			return nil
		}
		if submission.Verdict != models.VerdictPass {
			return newLedgerError(CodeFailedPrecondition, "Submission has not passed verification")
		}
		result, applied, err = s.awardInTx(tx, submission, child, now)
		return err
	})
	if err != nil {
		return AwardResult{}, asLedgerError(err, "Submission not found")
	}
	if result.AlreadyApplied {
		config.Log.WithField("submission", submissionID).Info("[AWARD] Награда уже начислена, пропускаем")
		return result, nil
	}
	s.awarded(ctx, child, applied, result)
	return result, nil
}

// awardInTx пишет награду в открытой транзакции. Сначала читает запись дня,
// потом пишет: Firestore не допускает чтений после записи.
// submission сохраняется целиком, вместе с уже выставленным вердиктом.
func (s *AwardService) awardInTx(tx repositories.LedgerTx, submission models.Submission, child models.Child, now time.Time) (AwardResult, models.Submission, error) {
	tomorrow := s.dayOf(now, 1)
	record, err := tx.LockScreenTimeRecord(submission.ChildID, tomorrow, s.budgetFor(child))
	if err != nil {
		return AwardResult{}, submission, err
	}

	result := AwardResult{OK: true, AwardDate: tomorrow}
	result.Capped = record.AddCapped(submission.MinutesAward, s.Limits.MaxDailyBudget)
	result.NewBudgetMinutes = record.BudgetMinutes
	record.UpdatedAt = now
	if err := tx.SaveScreenTimeRecord(record); err != nil {
		return AwardResult{}, submission, err
	}
	submission.RewardApplied = true
	submission.RewardAppliedAt = &now
	if err := tx.SaveSubmission(submission); err != nil {
		return AwardResult{}, submission, err
	}
	err = tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), models.AuditChoreRewardApplied,
		submission.ParentID, submission.ChildID, map[string]interface{}{
			"submissionId":     submission.ID,
			"choreId":          submission.ChoreID,
			"minutes":          submission.MinutesAward,
			"awardDate":        tomorrow,
			"newBudgetMinutes": record.BudgetMinutes,
			"capped":           result.Capped,
		}, now))
	return result, submission, err
}

// awarded логирует и уведомляет ребенка после коммита
func (s *AwardService) awarded(ctx context.Context, child models.Child, applied models.Submission, result AwardResult) {
	config.Log.WithFields(logrus.Fields{
		"submission": applied.ID,
		"child":      applied.ChildID,
		"date":       result.AwardDate,
		"capped":     result.Capped,
	}).Info("[AWARD] Награда начислена")

	s.notify(ctx, models.Notification{
		RecipientID: applied.ChildID,
		FamilyID:    child.ParentFirebaseUID,
		Kind:        models.NotifyChoreReward,
		Title:       "Chore approved",
		Body:        fmt.Sprintf("You earned %d minutes for tomorrow!", applied.MinutesAward),
		Data: map[string]string{
			"submissionId":     applied.ID,
			"awardDate":        result.AwardDate,
			"newBudgetMinutes": strconv.Itoa(result.NewBudgetMinutes),
			"capped":           strconv.FormatBool(result.Capped),
		},
	})
}

// GrantBonusTime ручной бонус от родителя на сегодня, не выше MaxDailyBudget
func (s *AwardService) GrantBonusTime(ctx context.Context, session *models.Session, in GrantBonusInput) (BonusResult, error) {
	if err := s.requireSession(session); err != nil {
		return BonusResult{}, err
	}
	if err := in.Validate(); err != nil {
		return BonusResult{}, err
	}
	child, err := s.loadChild(in.ChildID)
	if err != nil {
		return BonusResult{}, err
	}
	if err := requireParentOf(session, child); err != nil {
		return BonusResult{}, err
	}

	now := s.now()
	today := s.dayOf(now, 0)
	var result BonusResult
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		record, err := tx.LockScreenTimeRecord(child.FirebaseUID, today, s.budgetFor(child))
		if err != nil {
			return err
		}
		before := record.BudgetMinutes
		capped := record.AddCapped(in.Minutes, s.Limits.MaxDailyBudget)
		record.UpdatedAt = now
		if err := tx.SaveScreenTimeRecord(record); err != nil {
			return err
		}
		result = BonusResult{OK: true, AwardDate: today, Capped: capped, NewBudgetMinutes: record.BudgetMinutes}
		return tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), models.AuditManualBonusGranted,
			session.UID, child.FirebaseUID, map[string]interface{}{
				"minutes":               in.Minutes,
				"reason":                in.Reason,
				"previousBudgetMinutes": before,
				"newBudgetMinutes":      record.BudgetMinutes,
				"capped":                capped,
			}, now))
	})
	if err != nil {
		return BonusResult{}, asLedgerError(err, "Child not found")
	}

	if result.Capped {
		result.Message = fmt.Sprintf("Budget capped at %d minutes", s.Limits.MaxDailyBudget)
	} else {
		result.Message = fmt.Sprintf("Granted %d bonus minutes", in.Minutes)
	}

	s.notify(ctx, models.Notification{
		RecipientID: child.FirebaseUID,
		FamilyID:    child.ParentFirebaseUID,
		Kind:        models.NotifyBonus,
		Title:       "Bonus time",
		Body:        fmt.Sprintf("Today's budget is now %d minutes.", result.NewBudgetMinutes),
		Data: map[string]string{
			"awardDate":        today,
			"newBudgetMinutes": strconv.Itoa(result.NewBudgetMinutes),
			"capped":           strconv.FormatBool(result.Capped),
		},
	})
	return result, nil
}
