package services

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"FamilyTime/repositories/memory"
	"FamilyTime/repositories/mocks"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	parentUID      = "ZEXF4HEyySaGUVUFzUifUsF6rLi2"
	otherParentUID = "Qm2vH8dNn1TtPpYy3Kk0Aa9Bb7Cc"
	childUID       = "OeLYNPOdTkVhnKihw8Pqns1Q6Ml1"
)

var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.LedgerStore
	childRepo *mocks.ChildRepository
	sink      *mocks.NotificationSink
	deps      LedgerDeps
}

func newFixture(t *testing.T, budget int) *fixture {
	t.Helper()
	store := memory.NewLedgerStore()
	childRepo := new(mocks.ChildRepository)
	childRepo.On("FindByFirebaseUID", childUID).Return(models.Child{
		ID:                 2,
		Name:               "Alex",
		FirebaseUID:        childUID,
		ParentFirebaseUID:  parentUID,
		DailyBudgetMinutes: budget,
	}, nil)
	childRepo.On("FindByFirebaseUID", mock.Anything).Return(models.Child{}, repositories.ErrNotFound)

	sink := new(mocks.NotificationSink)
	sink.On("Notify", mock.Anything, mock.Anything).Return(nil)

	var seq int64
	deps := LedgerDeps{
		Store:    store,
		Children: childRepo,
		Notifier: sink,
		Limits:   DefaultLimits(),
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		NewID: func() string {
			return fmt.Sprintf("id-%03d", atomic.AddInt64(&seq, 1))
		},
	}
	return &fixture{store: store, childRepo: childRepo, sink: sink, deps: deps}
}

func parentSession() *models.Session {
	return &models.Session{UID: parentUID, Role: models.RoleParent}
}

func childSession() *models.Session {
	return &models.Session{UID: childUID, Role: models.RoleChild}
}

func (f *fixture) budget(t *testing.T, date string) int {
	t.Helper()
	record, err := f.store.FindScreenTimeRecord(context.Background(), childUID, date)
	require.NoError(t, err)
	return record.BudgetMinutes
}

func (f *fixture) eventsOfType(eventType string) []models.AuditEvent {
	var out []models.AuditEvent
	for _, e := range f.store.AllAuditEvents() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) notifications() []models.Notification {
	var out []models.Notification
	for _, call := range f.sink.Calls {
		out = append(out, call.Arguments.Get(1).(models.Notification))
	}
	return out
}

// seedSubmission кладет submission напрямую в хранилище
func (f *fixture) seedSubmission(t *testing.T, submission models.Submission) {
	t.Helper()
	require.NoError(t, f.store.RunInTransaction(context.Background(), func(tx repositories.LedgerTx) error {
		return tx.SaveSubmission(submission)
	}))
}
