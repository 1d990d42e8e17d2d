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

type SubmitRequestInput struct {
	ChildID string `json:"childId"`
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason,omitempty"`
}

func (in SubmitRequestInput) Validate(limits LedgerLimits) error {
	if strings.TrimSpace(in.ChildID) == "" {
		return newLedgerError(CodeInvalidArgument, "childId is required")
	}
	if in.Minutes <= 0 || in.Minutes > limits.MaxRequestMinutes {
		return newLedgerError(CodeInvalidArgument,
			fmt.Sprintf("Minutes must be between 1 and %d", limits.MaxRequestMinutes))
	}
	return nil
}

type SubmitRequestResult struct {
	OK            bool   `json:"ok"`
	ID            string `json:"id"`
	RequestNumber int    `json:"requestNumber"`
	Message       string `json:"message"`
}

type DecideRequestInput struct {
	RequestID string `json:"requestId"`
	Approved  bool   `json:"approved"`
	Reason    string `json:"reason,omitempty"`
}

func (in DecideRequestInput) Validate() error {
	if strings.TrimSpace(in.RequestID) == "" {
		return newLedgerError(CodeInvalidArgument, "requestId is required")
	}
	return nil
}

type DecideRequestResult struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	ChildID          string `json:"childId"`
	MinutesApproved  int    `json:"minutesApproved,omitempty"`
	MinutesDenied    int    `json:"minutesDenied,omitempty"`
	NewBudgetMinutes *int   `json:"newBudgetMinutes,omitempty"`
	Capped           bool   `json:"capped,omitempty"`
}

// TimeRequestService запросы ребенка на дополнительное время и решения родителя
type TimeRequestService struct {
	LedgerDeps
}

func NewTimeRequestService(deps LedgerDeps) *TimeRequestService {
	return &TimeRequestService{LedgerDeps: deps.withDefaults()}
}

// SubmitRequest создает запрос. Не больше DailyRequestCap запросов в день;
// попытка сверх лимита сохраняется со статусом exceeded, счетчик не растет.
func (s *TimeRequestService) SubmitRequest(ctx context.Context, session *models.Session, in SubmitRequestInput) (SubmitRequestResult, error) {
	if err := s.requireSession(session); err != nil {
		return SubmitRequestResult{}, err
	}
	if err := in.Validate(s.Limits); err != nil {
		return SubmitRequestResult{}, err
	}
	child, err := s.loadChild(in.ChildID)
	if err != nil {
		return SubmitRequestResult{}, err
	}
	if session.UID != child.FirebaseUID && !child.BelongsTo(session.UID) {
		return SubmitRequestResult{}, newLedgerError(CodePermissionDenied, "Not allowed to request time for this child")
	}

	now := s.now()
	today := s.dayOf(now, 0)
	request := models.TimeRequest{
		ID:               s.NewID(),
		ChildID:          child.FirebaseUID,
		ParentID:         child.ParentFirebaseUID,
		MinutesRequested: in.Minutes,
		Reason:           in.Reason,
		Date:             today,
		CreatedAt:        now,
	}

	exceeded := false
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		exceeded = false
		counter, err := tx.LockRequestCounter(child.FirebaseUID, today)
		if err != nil {
			return err
		}

		if counter.Count >= s.Limits.DailyRequestCap {
			exceeded = true
			request.Status = models.RequestStatusExceeded
			request.RequestNumber = 0
			if err := tx.SaveTimeRequest(request); err != nil {
				return err
			}
			return tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), models.AuditTimeRequestExceeded,
				session.UID, child.FirebaseUID, map[string]interface{}{
					"requestId":  request.ID,
					"minutes":    in.Minutes,
					"dailyCount": counter.Count,
					"dailyLimit": s.Limits.DailyRequestCap,
					"date":       today,
				}, now))
		}

		counter.Count++
		counter.UpdatedAt = now
		if err := tx.SaveRequestCounter(counter); err != nil {
			return err
		}
		request.Status = models.RequestStatusPending
		request.RequestNumber = counter.Count
		if err := tx.SaveTimeRequest(request); err != nil {
			return err
		}
		return tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), models.AuditTimeRequestSubmitted,
			session.UID, child.FirebaseUID, map[string]interface{}{
				"requestId":     request.ID,
				"requestNumber": request.RequestNumber,
				"minutes":       in.Minutes,
				"reason":        in.Reason,
			}, now))
	})
	if err != nil {
		return SubmitRequestResult{}, asLedgerError(err, "Failed to submit request")
	}

	if exceeded {
		config.Log.WithFields(logrus.Fields{"child": child.FirebaseUID, "date": today}).
			Info("[LEDGER] Дневной лимит запросов исчерпан")
		return SubmitRequestResult{}, ErrDailyLimitExceeded
	}

	config.Log.WithFields(logrus.Fields{
		"child":   child.FirebaseUID,
		"request": request.ID,
		"number":  request.RequestNumber,
	}).Info("[LEDGER] Запрос времени создан")

	s.notify(ctx, models.Notification{
		RecipientID: child.ParentFirebaseUID,
		FamilyID:    child.ParentFirebaseUID,
		Kind:        models.NotifyTimeRequest,
		Title:       "Screen time request",
		Body:        fmt.Sprintf("%s asks for %d more minutes", displayName(child), in.Minutes),
		Data: map[string]string{
			"requestId": request.ID,
			"childId":   child.FirebaseUID,
			"minutes":   strconv.Itoa(in.Minutes),
		},
	})

	return SubmitRequestResult{
		OK:            true,
		ID:            request.ID,
		RequestNumber: request.RequestNumber,
		Message:       "Request sent",
	}, nil
}

// DecideRequest одобряет или отклоняет pending запрос. Одобрение увеличивает
// сегодняшний бюджет, не выше MaxDailyBudget.
func (s *TimeRequestService) DecideRequest(ctx context.Context, session *models.Session, in DecideRequestInput) (DecideRequestResult, error) {
	if err := s.requireSession(session); err != nil {
		return DecideRequestResult{}, err
	}
	if err := in.Validate(); err != nil {
		return DecideRequestResult{}, err
	}

	existing, err := s.Store.FindTimeRequest(ctx, in.RequestID)
	if err != nil {
		return DecideRequestResult{}, asLedgerError(err, "Request not found")
	}
	child, err := s.loadChild(existing.ChildID)
	if err != nil {
		return DecideRequestResult{}, err
	}
	if err := requireParentOf(session, child); err != nil {
		return DecideRequestResult{}, err
	}

	now := s.now()
	today := s.dayOf(now, 0)
	var (
		decided models.TimeRequest
		record  models.ScreenTimeRecord
		capped  bool
	)
	err = s.Store.RunInTransaction(ctx, func(tx repositories.LedgerTx) error {
		request, err := tx.GetTimeRequest(in.RequestID)
		if err != nil {
			return err
		}
		if request.IsTerminal() {
			return ErrAlreadyDecided
		}
		if in.Approved {
			record, err = tx.LockScreenTimeRecord(request.ChildID, today, s.budgetFor(child))
			if err != nil {
				return err
			}
		}

		reviewer := session.UID
		request.DecidedAt = &now
		request.ReviewerID = &reviewer
		request.DecisionReason = in.Reason
		eventType := models.AuditTimeRequestDenied
		payload := map[string]interface{}{
			"requestId": request.ID,
			"minutes":   request.MinutesRequested,
			"reason":    in.Reason,
		}
		if in.Approved {
			request.Status = models.RequestStatusApproved
			eventType = models.AuditTimeRequestApproved
			before := record.BudgetMinutes
			capped = record.AddCapped(request.MinutesRequested, s.Limits.MaxDailyBudget)
			record.UpdatedAt = now
			if err := tx.SaveScreenTimeRecord(record); err != nil {
				return err
			}
			payload["previousBudgetMinutes"] = before
			payload["newBudgetMinutes"] = record.BudgetMinutes
			payload["capped"] = capped
		} else {
			request.Status = models.RequestStatusDenied
		}
		if err := tx.SaveTimeRequest(request); err != nil {
			return err
		}
		decided = request
		return tx.AppendAuditEvent(models.NewAuditEvent(s.NewID(), eventType, session.UID, request.ChildID, payload, now))
	})
	if err != nil {
		return DecideRequestResult{}, asLedgerError(err, "Request not found")
	}

	result := DecideRequestResult{OK: true, ChildID: decided.ChildID}
	notification := models.Notification{
		RecipientID: decided.ChildID,
		FamilyID:    child.ParentFirebaseUID,
		Kind:        models.NotifyDecision,
		Data: map[string]string{
			"requestId": decided.ID,
			"status":    decided.Status,
		},
	}
	if in.Approved {
		budget := record.BudgetMinutes
		result.MinutesApproved = decided.MinutesRequested
		result.NewBudgetMinutes = &budget
		result.Capped = capped
		result.Message = fmt.Sprintf("Approved %d minutes", decided.MinutesRequested)
		notification.Title = "Request approved"
		notification.Body = fmt.Sprintf("You got %d more minutes. Today's budget is %d minutes.", decided.MinutesRequested, budget)
		notification.Data["newBudgetMinutes"] = strconv.Itoa(budget)
	} else {
		result.MinutesDenied = decided.MinutesRequested
		result.Message = fmt.Sprintf("Denied %d minutes", decided.MinutesRequested)
		notification.Title = "Request denied"
		notification.Body = fmt.Sprintf("Your request for %d minutes was denied.", decided.MinutesRequested)
	}

	config.Log.WithFields(logrus.Fields{
		"request": decided.ID,
		"status":  decided.Status,
		"capped":  capped,
	}).Info("[LEDGER] Решение по запросу сохранено")

	s.notify(ctx, notification)
	return result, nil
}

// ListRequests история запросов ребенка; пустая date возвращает все дни
func (s *TimeRequestService) ListRequests(ctx context.Context, session *models.Session, childID, date string) ([]models.TimeRequest, error) {
	if err := s.requireSession(session); err != nil {
		return nil, err
	}
	if date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return nil, newLedgerError(CodeInvalidArgument, "date must be YYYY-MM-DD")
		}
	}
	child, err := s.loadChild(childID)
	if err != nil {
		return nil, err
	}
	if err := requireFamilyMember(session, child); err != nil {
		return nil, err
	}
	requests, err := s.Store.ListTimeRequests(ctx, childID, date)
	if err != nil {
		return nil, internalError("Failed to load requests", err)
	}
	return requests, nil
}

func displayName(child models.Child) string {
	if child.Name != "" {
		return child.Name
	}
	return "Your child"
}
