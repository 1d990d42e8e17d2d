package repositories

import (
	"FamilyTime/models"
	"context"
)

// LedgerTx операции внутри одной атомарной транзакции.
// Все чтения выполняются до записей (требование Firestore).
type LedgerTx interface {
	// LockRequestCounter возвращает счетчик за день (Count=0, если его еще нет)
	LockRequestCounter(childID, date string) (models.DailyRequestCounter, error)
	SaveRequestCounter(counter models.DailyRequestCounter) error

	GetTimeRequest(id string) (models.TimeRequest, error)
	SaveTimeRequest(request models.TimeRequest) error

	// LockScreenTimeRecord возвращает запись за день, создавая ее с defaultBudget при отсутствии
	LockScreenTimeRecord(childID, date string, defaultBudget int) (models.ScreenTimeRecord, error)
	SaveScreenTimeRecord(record models.ScreenTimeRecord) error

	GetSubmission(id string) (models.Submission, error)
	SaveSubmission(submission models.Submission) error

	AppendAuditEvent(event models.AuditEvent) error
}

// LedgerStore хранилище бюджета, запросов и журнала аудита.
// Если fn возвращает ошибку, ни одна запись транзакции не применяется.
type LedgerStore interface {
	RunInTransaction(ctx context.Context, fn func(tx LedgerTx) error) error

	FindTimeRequest(ctx context.Context, id string) (models.TimeRequest, error)
	ListTimeRequests(ctx context.Context, childID, date string) ([]models.TimeRequest, error)
	FindScreenTimeRecord(ctx context.Context, childID, date string) (models.ScreenTimeRecord, error)
	FindSubmission(ctx context.Context, id string) (models.Submission, error)
	ListAuditEvents(ctx context.Context, childID string, limit int) ([]models.AuditEvent, error)
}
