// Package memory keeps the ledger and profiles in process for local runs and tests.
// Transactions are serialised by a store-wide mutex and their writes are
// staged, so a failed transaction leaves no trace.
package memory

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"sort"
	"sync"
	"time"
)

type dayKey struct {
	childID string
	date    string
}

type LedgerStore struct {
	mu          sync.Mutex
	counters    map[dayKey]models.DailyRequestCounter
	records     map[dayKey]models.ScreenTimeRecord
	requests    map[string]models.TimeRequest
	submissions map[string]models.Submission
	events      []models.AuditEvent
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		counters:    make(map[dayKey]models.DailyRequestCounter),
		records:     make(map[dayKey]models.ScreenTimeRecord),
		requests:    make(map[string]models.TimeRequest),
		submissions: make(map[string]models.Submission),
	}
}

func (s *LedgerStore) RunInTransaction(ctx context.Context, fn func(tx repositories.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

func (s *LedgerStore) FindTimeRequest(_ context.Context, id string) (models.TimeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return models.TimeRequest{}, repositories.ErrNotFound
	}
	return request, nil
}

func (s *LedgerStore) ListTimeRequests(_ context.Context, childID, date string) ([]models.TimeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TimeRequest
	for _, request := range s.requests {
		if request.ChildID != childID || (date != "" && request.Date != date) {
			continue
		}
		out = append(out, request)
	}
	// порядок (created_at, id), как в SQL и Firestore
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *LedgerStore) FindScreenTimeRecord(_ context.Context, childID, date string) (models.ScreenTimeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[dayKey{childID, date}]
	if !ok {
		return models.ScreenTimeRecord{}, repositories.ErrNotFound
	}
	return record, nil
}

func (s *LedgerStore) FindSubmission(_ context.Context, id string) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, repositories.ErrNotFound
	}
	return submission, nil
}

func (s *LedgerStore) ListAuditEvents(_ context.Context, childID string, limit int) ([]models.AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AuditEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ChildID != childID {
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// AllAuditEvents returns every event in append order.
func (s *LedgerStore) AllAuditEvents() []models.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEvent(nil), s.events...)
}

type memoryTx struct {
	store       *LedgerStore
	counters    map[dayKey]models.DailyRequestCounter
	records     map[dayKey]models.ScreenTimeRecord
	requests    map[string]models.TimeRequest
	submissions map[string]models.Submission
	events      []models.AuditEvent
}

func newTx(s *LedgerStore) *memoryTx {
	return &memoryTx{
		store:       s,
		counters:    make(map[dayKey]models.DailyRequestCounter),
		records:     make(map[dayKey]models.ScreenTimeRecord),
		requests:    make(map[string]models.TimeRequest),
		submissions: make(map[string]models.Submission),
	}
}

func (t *memoryTx) apply() {
	for k, v := range t.counters {
		t.store.counters[k] = v
	}
	for k, v := range t.records {
		t.store.records[k] = v
	}
	for k, v := range t.requests {
		t.store.requests[k] = v
	}
	for k, v := range t.submissions {
		t.store.submissions[k] = v
	}
	t.store.events = append(t.store.events, t.events...)
}

func (t *memoryTx) LockRequestCounter(childID, date string) (models.DailyRequestCounter, error) {
	key := dayKey{childID, date}
	if counter, ok := t.counters[key]; ok {
		return counter, nil
	}
	if counter, ok := t.store.counters[key]; ok {
		return counter, nil
	}
	return models.DailyRequestCounter{ChildID: childID, Date: date}, nil
}

func (t *memoryTx) SaveRequestCounter(counter models.DailyRequestCounter) error {
	t.counters[dayKey{counter.ChildID, counter.Date}] = counter
	return nil
}

func (t *memoryTx) GetTimeRequest(id string) (models.TimeRequest, error) {
	if request, ok := t.requests[id]; ok {
		return request, nil
	}
	if request, ok := t.store.requests[id]; ok {
		return request, nil
	}
	return models.TimeRequest{}, repositories.ErrNotFound
}

func (t *memoryTx) SaveTimeRequest(request models.TimeRequest) error {
	t.requests[request.ID] = request
	return nil
}

func (t *memoryTx) LockScreenTimeRecord(childID, date string, defaultBudget int) (models.ScreenTimeRecord, error) {
	key := dayKey{childID, date}
	if record, ok := t.records[key]; ok {
		return record, nil
	}
	if record, ok := t.store.records[key]; ok {
		return record, nil
	}
	return models.ScreenTimeRecord{ChildID: childID, Date: date, BudgetMinutes: defaultBudget, UpdatedAt: time.Now()}, nil
}

func (t *memoryTx) SaveScreenTimeRecord(record models.ScreenTimeRecord) error {
	t.records[dayKey{record.ChildID, record.Date}] = record
	return nil
}

func (t *memoryTx) GetSubmission(id string) (models.Submission, error) {
	if submission, ok := t.submissions[id]; ok {
		return submission, nil
	}
	if submission, ok := t.store.submissions[id]; ok {
		return submission, nil
	}
	return models.Submission{}, repositories.ErrNotFound
}

func (t *memoryTx) SaveSubmission(submission models.Submission) error {
	t.submissions[submission.ID] = submission
	return nil
}

func (t *memoryTx) AppendAuditEvent(event models.AuditEvent) error {
	t.events = append(t.events, event)
	return nil
}
