package services

import (
	"FamilyTime/interfaces"
	"FamilyTime/models"
	"FamilyTime/repositories"
	"FamilyTime/repositories/mocks"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, message *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, message)
	return "projects/test/messages/1", nil
}

func TestFCMSinkSendsToChildDevice(t *testing.T) {
	childRepo := new(mocks.ChildRepository)
	parentRepo := new(mocks.ParentRepository)
	childRepo.On("FindByFirebaseUID", childUID).Return(models.Child{FirebaseUID: childUID, DeviceToken: "device-1"}, nil)
	sender := &fakeSender{}
	sink := &FCMSink{FCMClient: sender, ParentRepo: parentRepo, ChildRepo: childRepo}

	err := sink.Notify(context.Background(), models.Notification{
		RecipientID: childUID,
		Kind:        models.NotifyBonus,
		Title:       "Bonus time",
		Body:        "Today's budget is now 90 minutes.",
		Data:        map[string]string{"newBudgetMinutes": "90"},
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "device-1", sender.sent[0].Token)
	assert.Equal(t, models.NotifyBonus, sender.sent[0].Data["kind"])
	assert.Equal(t, "90", sender.sent[0].Data["newBudgetMinutes"])
	parentRepo.AssertNotCalled(t, "FindByFirebaseUID", mock.Anything)
}

func TestFCMSinkFallsBackToParentAndSkipsMissingToken(t *testing.T) {
	childRepo := new(mocks.ChildRepository)
	parentRepo := new(mocks.ParentRepository)
	childRepo.On("FindByFirebaseUID", parentUID).Return(models.Child{}, repositories.ErrNotFound)
	parentRepo.On("FindByFirebaseUID", parentUID).Return(models.Parent{FirebaseUID: parentUID}, nil)
	sender := &fakeSender{}
	sink := &FCMSink{FCMClient: sender, ParentRepo: parentRepo, ChildRepo: childRepo}

	err := sink.Notify(context.Background(), models.Notification{RecipientID: parentUID, Kind: models.NotifyTimeRequest})

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestWebhookSinkRetriesUntilSuccess(t *testing.T) {
	var attempts int32
	var received models.Notification
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL)
	sink.Client.RetryWaitMin = time.Millisecond
	sink.Client.RetryWaitMax = 5 * time.Millisecond

	err := sink.Notify(context.Background(), models.Notification{RecipientID: childUID, Kind: models.NotifyDecision, Title: "Request approved"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, "Request approved", received.Title)
}

func TestWebhookSinkReportsClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewWebhookSink(server.URL).Notify(context.Background(), models.Notification{RecipientID: childUID})
	assert.Error(t, err)
}

type recordingHub struct {
	families []string
	messages []interfaces.WebSocketMessage
}

func (h *recordingHub) BroadcastToFamily(familyID string, message interfaces.WebSocketMessage) {
	h.families = append(h.families, familyID)
	h.messages = append(h.messages, message)
}

func TestHubSinkBroadcastsToFamily(t *testing.T) {
	hub := &recordingHub{}
	sink := NewHubSink(hub)
	sink.Now = func() time.Time { return fixedNow }

	require.NoError(t, sink.Notify(context.Background(), models.Notification{
		RecipientID: childUID,
		FamilyID:    parentUID,
		Kind:        models.NotifyDecision,
		Body:        "approved",
	}))
	require.NoError(t, sink.Notify(context.Background(), models.Notification{RecipientID: childUID}))

	require.Equal(t, []string{parentUID}, hub.families)
	assert.Equal(t, models.NotifyDecision, hub.messages[0].Type)
	assert.Equal(t, fixedNow, hub.messages[0].Timestamp)
}

func TestMultiSinkDeliversToAllAndJoinsErrors(t *testing.T) {
	failing := new(mocks.NotificationSink)
	failing.On("Notify", mock.Anything, mock.Anything).Return(errors.New("boom"))
	ok := new(mocks.NotificationSink)
	ok.On("Notify", mock.Anything, mock.Anything).Return(nil)

	err := MultiSink{failing, nil, ok}.Notify(context.Background(), models.Notification{RecipientID: childUID})

	assert.EqualError(t, err, "boom")
	ok.AssertNumberOfCalls(t, "Notify", 1)
}
