// Package firestore хранит леджер в Cloud Firestore.
// Документ дня имеет id "<childId>_<date>", поэтому счетчик и бюджет
// читаются внутри транзакции напрямую, без запросов.
package firestore

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	timeRequestsCollection      = "timeRequests"
	requestCountersCollection   = "dailyRequestCounters"
	screenTimeRecordsCollection = "screenTimeRecords"
	submissionsCollection       = "submissions"
	auditEventsCollection       = "auditEvents"
)

type LedgerStore struct {
	client *firestore.Client
}

func NewLedgerStore(client *firestore.Client) *LedgerStore {
	return &LedgerStore{client: client}
}

func dayDocID(childID, date string) string {
	return childID + "_" + date
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// RunInTransaction может вызвать fn повторно при конфликте;
// fn не должен иметь побочных эффектов вне tx.
func (s *LedgerStore) RunInTransaction(ctx context.Context, fn func(tx repositories.LedgerTx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: tx})
	})
}

func (s *LedgerStore) FindTimeRequest(ctx context.Context, id string) (models.TimeRequest, error) {
	var request models.TimeRequest
	err := s.get(ctx, s.client.Collection(timeRequestsCollection).Doc(id), &request)
	return request, err
}

func (s *LedgerStore) ListTimeRequests(ctx context.Context, childID, date string) ([]models.TimeRequest, error) {
	query := s.client.Collection(timeRequestsCollection).Where("childId", "==", childID)
	if date != "" {
		query = query.Where("date", "==", date)
	}
	iter := query.OrderBy("createdAt", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var requests []models.TimeRequest
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var request models.TimeRequest
		if err := snap.DataTo(&request); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *LedgerStore) FindScreenTimeRecord(ctx context.Context, childID, date string) (models.ScreenTimeRecord, error) {
	var record models.ScreenTimeRecord
	err := s.get(ctx, s.client.Collection(screenTimeRecordsCollection).Doc(dayDocID(childID, date)), &record)
	return record, err
}

func (s *LedgerStore) FindSubmission(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	err := s.get(ctx, s.client.Collection(submissionsCollection).Doc(id), &submission)
	return submission, err
}

func (s *LedgerStore) ListAuditEvents(ctx context.Context, childID string, limit int) ([]models.AuditEvent, error) {
	query := s.client.Collection(auditEventsCollection).
		Where("childId", "==", childID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	var events []models.AuditEvent
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var event models.AuditEvent
		if err := snap.DataTo(&event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *LedgerStore) get(ctx context.Context, ref *firestore.DocumentRef, dst interface{}) error {
	return getDoc(ctx, ref, dst)
}

func getDoc(ctx context.Context, ref *firestore.DocumentRef, dst interface{}) error {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return repositories.ErrNotFound
		}
		return err
	}
	return snap.DataTo(dst)
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

// read возвращает found=false для отсутствующего документа
func (t *firestoreTx) read(ref *firestore.DocumentRef, dst interface{}) (bool, error) {
	snap, err := t.tx.Get(ref)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, snap.DataTo(dst)
}

func (t *firestoreTx) LockRequestCounter(childID, date string) (models.DailyRequestCounter, error) {
	counter := models.DailyRequestCounter{ChildID: childID, Date: date}
	ref := t.client.Collection(requestCountersCollection).Doc(dayDocID(childID, date))
	if _, err := t.read(ref, &counter); err != nil {
		return models.DailyRequestCounter{}, err
	}
	return counter, nil
}

func (t *firestoreTx) SaveRequestCounter(counter models.DailyRequestCounter) error {
	ref := t.client.Collection(requestCountersCollection).Doc(dayDocID(counter.ChildID, counter.Date))
	return t.tx.Set(ref, counter)
}

func (t *firestoreTx) GetTimeRequest(id string) (models.TimeRequest, error) {
	var request models.TimeRequest
	found, err := t.read(t.client.Collection(timeRequestsCollection).Doc(id), &request)
	if err != nil {
		return models.TimeRequest{}, err
	}
	if !found {
		return models.TimeRequest{}, repositories.ErrNotFound
	}
	return request, nil
}

func (t *firestoreTx) SaveTimeRequest(request models.TimeRequest) error {
	return t.tx.Set(t.client.Collection(timeRequestsCollection).Doc(request.ID), request)
}

func (t *firestoreTx) LockScreenTimeRecord(childID, date string, defaultBudget int) (models.ScreenTimeRecord, error) {
	record := models.ScreenTimeRecord{ChildID: childID, Date: date}
	ref := t.client.Collection(screenTimeRecordsCollection).Doc(dayDocID(childID, date))
	found, err := t.read(ref, &record)
	if err != nil {
		return models.ScreenTimeRecord{}, err
	}
	if !found {
		record.BudgetMinutes = defaultBudget
	}
	return record, nil
}

func (t *firestoreTx) SaveScreenTimeRecord(record models.ScreenTimeRecord) error {
	ref := t.client.Collection(screenTimeRecordsCollection).Doc(dayDocID(record.ChildID, record.Date))
	return t.tx.Set(ref, record)
}

func (t *firestoreTx) GetSubmission(id string) (models.Submission, error) {
	var submission models.Submission
	found, err := t.read(t.client.Collection(submissionsCollection).Doc(id), &submission)
	if err != nil {
		return models.Submission{}, err
	}
	if !found {
		return models.Submission{}, repositories.ErrNotFound
	}
	return submission, nil
}

func (t *firestoreTx) SaveSubmission(submission models.Submission) error {
	return t.tx.Set(t.client.Collection(submissionsCollection).Doc(submission.ID), submission)
}

func (t *firestoreTx) AppendAuditEvent(event models.AuditEvent) error {
	return t.tx.Create(t.client.Collection(auditEventsCollection).Doc(event.ID), event)
}
