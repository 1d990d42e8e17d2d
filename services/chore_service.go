package services

import (
	"FamilyTime/config"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type AssignChoreInput struct {
	ChildID      string `json:"childId"`
	Title        string `json:"title"`
	MinutesAward int    `json:"minutesAward"`
}

func (in AssignChoreInput) Validate(limits LedgerLimits) error {
	if strings.TrimSpace(in.ChildID) == "" {
		return newLedgerError(CodeInvalidArgument, "childId is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return newLedgerError(CodeInvalidArgument, "title is required")
	}
	if in.MinutesAward < 0 || in.MinutesAward > limits.MaxDailyBudget {
		return newLedgerError(CodeInvalidArgument,
			fmt.Sprintf("minutesAward must be between 0 and %d", limits.MaxDailyBudget))
	}
	return nil
}

type RecordVerdictInput struct {
	SubmissionID string `json:"submissionId"`
	Verdict      string `json:"verdict"`
}

func (in RecordVerdictInput) Validate() error {
	if strings.TrimSpace(in.SubmissionID) == "" {
		return newLedgerError(CodeInvalidArgument, "submissionId is required")
	}
	if in.Verdict != models.VerdictPass && in.Verdict != models.VerdictFail {
		return newLedgerError(CodeInvalidArgument, "verdict must be pass or fail")
	}
	return nil
}

type VerdictResult struct {
	OK         bool              `json:"ok"`
	Submission models.Submission `json:"submission"`
	Award      *AwardResult      `json:"award,omitempty"`
}

// ChoreService задачи, отчеты о выполнении и вердикты проверки
type ChoreService struct {
	LedgerDeps
	ChoreRepo repositories.ChoreRepository
	Awards    *AwardService
}

func NewChoreService(deps LedgerDeps, choreRepo repositories.ChoreRepository, awards *AwardService) *ChoreService {
	return &ChoreService{LedgerDeps: deps.withDefaults(), ChoreRepo: choreRepo, Awards: awards}
}

func (s *ChoreService) AssignChore(ctx context.Context, session *models.Session, in AssignChoreInput) (models.Chore, error) {
	if err := s.requireSession(session); err != nil {
		return models.Chore{}, err
	}
	if err := in.Validate(s.Limits); err != nil {
		return models.Chore{}, err
	}
	child, err := s.loadChild(in.ChildID)
	if err != nil {
		return models.Chore{}, err
	}
	if err := requireParentOf(session, child); err != nil {
		return models.Chore{}, err
	}

	chore := models.Chore{
		ID:           s.NewID(),
		ParentID:     session.UID,
		ChildID:      child.FirebaseUID,
		Title:        strings.TrimSpace(in.Title),
		MinutesAward: in.MinutesAward,
		CreatedAt:    s.now(),
	}
	if err := s.ChoreRepo.Save(chore); err != nil {
		return models.Chore{}, internalError("Failed to save chore", err)
	}

	s.notify(ctx, models.Notification{
		RecipientID: child.FirebaseUID,
		FamilyID:    child.ParentFirebaseUID,
		Kind:        models.NotifyChoreReward,
		Title:       "New chore",
		Body:        fmt.Sprintf("%s (+%d minutes)", chore.Title, chore.MinutesAward),
		Data:        map[string]string{"choreId": chore.ID},
	})
	return chore, nil
}

// SubmitChore ребенок сообщает о выполнении; создается submission с вердиктом pending
func (s *ChoreService) SubmitChore(ctx context.Context, session *models.Session, choreID string) (models.Submission, error) {
	if err := s.requireSession(session); err != nil {
		return models.Submission{}, err
	}
	chore, err := s.ChoreRepo.FindByID(choreID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Submission{}, newLedgerError(CodeNotFound, "Chore not found")
	}
	if err != nil {
		return models.Submission{}, internalError("Failed to load chore", err)
	}
	if session.UID != chore.ChildID {
		return models.Submission{}, newLedgerError(CodePermissionDenied, "Only the assigned child can submit this chore")
	}

	submission := models.Submission{
		ID:           s.NewID(),
		ChoreID:      chore.ID,
		ChildID:      chore.ChildID,
		ParentID:     chore.ParentID,
		MinutesAward: chore.MinutesAward,
		Verdict:      models.VerdictPending,
		CreatedAt:    s.now(),
	}
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		return tx.SaveSubmission(submission)
	})
	if err != nil {
		return models.Submission{}, internalError("Failed to save submission", err)
	}
	return submission, nil
}

// RecordVerdict фиксирует результат проверки. Вердикт pass и награда пишутся
// в одной транзакции; pass без начисленной награды можно повторить.
func (s *ChoreService) RecordVerdict(ctx context.Context, session *models.Session, in RecordVerdictInput) (VerdictResult, error) {
	if err := s.requireSession(session); err != nil {
		return VerdictResult{}, err
	}
	if err := in.Validate(); err != nil {
		return VerdictResult{}, err
	}
	existing, err := s.Store.FindSubmission(ctx, in.SubmissionID)
	if err != nil {
		return VerdictResult{}, asLedgerError(err, "Submission not found")
	}
	if session.Role != models.RoleVerifier && !(session.IsParent() && existing.ParentID == session.UID) {
		return VerdictResult{}, newLedgerError(CodePermissionDenied, "Only a verifier or the parent can record a verdict")
	}

	rewards := in.Verdict == models.VerdictPass && s.Awards != nil
	var child models.Child
	if rewards {
		if child, err = s.loadChild(existing.ChildID); err != nil {
			return VerdictResult{}, err
		}
	}

	now := s.now()
	var (
		updated models.Submission
		award   *AwardResult
	)
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		award = nil
		submission, err := tx.GetSubmission(in.SubmissionID)
		if err != nil {
			return err
		}
		unfinished := rewards && submission.Verdict == models.VerdictPass && !submission.RewardApplied
		if submission.Verdict != models.VerdictPending && !unfinished {
			return newLedgerError(CodeFailedPrecondition, "Verdict already recorded")
		}
		submission.Verdict = in.Verdict
		if !rewards {
			updated = submission
			return tx.SaveSubmission(submission)
		}
		result, applied, err := s.Awards.awardInTx(tx, submission, child, now)
		if err != nil {
			return err
		}
		updated, award = applied, &result
		return nil
	})
	if err != nil {
		return VerdictResult{}, asLedgerError(err, "Submission not found")
	}

	config.Log.WithFields(logrus.Fields{
		"submission": updated.ID,
		"verdict":    updated.Verdict,
	}).Info("[CHORE] Вердикт сохранен")

	if award != nil {
		s.Awards.awarded(ctx, child, updated, *award)
	}
	return VerdictResult{OK: true, Submission: updated, Award: award}, nil
}
