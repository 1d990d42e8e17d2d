package impl

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepositoryImpl хранит леджер в Postgres.
// Строки дня сначала создаются через INSERT ... ON CONFLICT DO NOTHING, затем
// блокируются SELECT ... FOR UPDATE, поэтому параллельные транзакции одного
// ребенка за один день выполняются строго по очереди.
type LedgerRepositoryImpl struct {
	DB *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) repositories.LedgerStore {
	return &LedgerRepositoryImpl{DB: db}
}

func (r *LedgerRepositoryImpl) RunInTransaction(ctx context.Context, fn func(tx repositories.LedgerTx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTx{tx: tx})
	})
}

func (r *LedgerRepositoryImpl) FindTimeRequest(ctx context.Context, id string) (models.TimeRequest, error) {
	var request models.TimeRequest
	if err := r.DB.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return models.TimeRequest{}, translate(err)
	}
	return request, nil
}

func (r *LedgerRepositoryImpl) ListTimeRequests(ctx context.Context, childID, date string) ([]models.TimeRequest, error) {
	var requests []models.TimeRequest
	query := r.DB.WithContext(ctx).Where("child_id = ?", childID)
	if date != "" {
		query = query.Where("date = ?", date)
	}
	err := query.Order("created_at ASC, id ASC").Find(&requests).Error
	return requests, err
}

func (r *LedgerRepositoryImpl) FindScreenTimeRecord(ctx context.Context, childID, date string) (models.ScreenTimeRecord, error) {
	var record models.ScreenTimeRecord
	err := r.DB.WithContext(ctx).Where("child_id = ? AND date = ?", childID, date).First(&record).Error
	if err != nil {
		return models.ScreenTimeRecord{}, translate(err)
	}
	return record, nil
}

func (r *LedgerRepositoryImpl) FindSubmission(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := r.DB.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, translate(err)
	}
	return submission, nil
}

func (r *LedgerRepositoryImpl) ListAuditEvents(ctx context.Context, childID string, limit int) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	query := r.DB.WithContext(ctx).Where("child_id = ?", childID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

type gormLedgerTx struct {
	tx *gorm.DB
}

func (t *gormLedgerTx) forUpdate() *gorm.DB {
	return t.tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormLedgerTx) LockRequestCounter(childID, date string) (models.DailyRequestCounter, error) {
	seed := models.DailyRequestCounter{ChildID: childID, Date: date, UpdatedAt: time.Now()}
	if err := t.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return models.DailyRequestCounter{}, err
	}

	var counter models.DailyRequestCounter
	if err := t.forUpdate().Where("child_id = ? AND date = ?", childID, date).First(&counter).Error; err != nil {
		return models.DailyRequestCounter{}, translate(err)
	}
	return counter, nil
}

func (t *gormLedgerTx) SaveRequestCounter(counter models.DailyRequestCounter) error {
	return t.tx.Save(&counter).Error
}

func (t *gormLedgerTx) GetTimeRequest(id string) (models.TimeRequest, error) {
	var request models.TimeRequest
	if err := t.forUpdate().First(&request, "id = ?", id).Error; err != nil {
		return models.TimeRequest{}, translate(err)
	}
	return request, nil
}

func (t *gormLedgerTx) SaveTimeRequest(request models.TimeRequest) error {
	return t.tx.Save(&request).Error
}

func (t *gormLedgerTx) LockScreenTimeRecord(childID, date string, defaultBudget int) (models.ScreenTimeRecord, error) {
	seed := models.ScreenTimeRecord{ChildID: childID, Date: date, BudgetMinutes: defaultBudget, UpdatedAt: time.Now()}
	if err := t.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return models.ScreenTimeRecord{}, err
	}

	var record models.ScreenTimeRecord
	if err := t.forUpdate().Where("child_id = ? AND date = ?", childID, date).First(&record).Error; err != nil {
		return models.ScreenTimeRecord{}, translate(err)
	}
	return record, nil
}

func (t *gormLedgerTx) SaveScreenTimeRecord(record models.ScreenTimeRecord) error {
	return t.tx.Save(&record).Error
}

func (t *gormLedgerTx) GetSubmission(id string) (models.Submission, error) {
	var submission models.Submission
	if err := t.forUpdate().First(&submission, "id = ?", id).Error; err != nil {
		return models.Submission{}, translate(err)
	}
	return submission, nil
}

func (t *gormLedgerTx) SaveSubmission(submission models.Submission) error {
	return t.tx.Save(&submission).Error
}

func (t *gormLedgerTx) AppendAuditEvent(event models.AuditEvent) error {
	return t.tx.Create(&event).Error
}
