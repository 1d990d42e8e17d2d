package services

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"FamilyTime/repositories/mocks"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseVoiceCommandAcceptsStringsAndNumbers(t *testing.T) {
	cmd, err := ParseVoiceCommand([]byte(`{"intent":"grant_bonus","entities":{"child":"Alex","minutes":30,"nested":{"x":1}}}`))

	require.NoError(t, err)
	assert.Equal(t, IntentGrantBonus, cmd.Intent)
	assert.Equal(t, "Alex", cmd.Entities["child"])
	assert.Equal(t, "30", cmd.Entities["minutes"])
	assert.NotContains(t, cmd.Entities, "nested")

	minutes, ok := cmd.minutes()
	assert.True(t, ok)
	assert.Equal(t, 30, minutes)
}

func TestParseVoiceCommandRejectsGarbage(t *testing.T) {
	_, err := ParseVoiceCommand([]byte(`not json`))
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))

	_, err = ParseVoiceCommand([]byte(`{"entities":{}}`))
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))
}

type voiceFixture struct {
	*fixture
	parentRepo *mocks.ParentRepository
	choreRepo  *mocks.ChoreRepository
	svc        *VoiceDispatchService
}

func newVoiceFixture(t *testing.T) *voiceFixture {
	f := newFixture(t, 60)
	f.childRepo.On("FindByParentAndName", parentUID, "Alex").Return(models.Child{
		Name:              "Alex",
		FirebaseUID:       childUID,
		ParentFirebaseUID: parentUID,
	}, nil)
	f.childRepo.On("FindByParentAndName", mock.Anything, mock.Anything).Return(models.Child{}, repositories.ErrNotFound)

	parentRepo := new(mocks.ParentRepository)
	choreRepo := new(mocks.ChoreRepository)
	pairing := NewPairingService(parentRepo)
	pairing.Now = func() time.Time { return fixedNow }
	pairing.Intn = func(int) (int, error) { return 234, nil }

	awards := NewAwardService(f.deps)
	svc := NewVoiceDispatchService(f.childRepo, pairing,
		NewChoreService(f.deps, choreRepo, awards), NewUsageService(f.deps), awards)
	return &voiceFixture{fixture: f, parentRepo: parentRepo, choreRepo: choreRepo, svc: svc}
}

func TestDispatchGrantBonus(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
		Intent:   IntentGrantBonus,
		Entities: map[string]string{"child": "Alex", "minutes": "30"},
	})

	assert.True(t, result.OK)
	assert.Equal(t, "Added 30 minutes for Alex. Today's budget is now 90 minutes.", result.Say)
	assert.Equal(t, 90, v.budget(t, "2026-03-14"))
}

func TestVoiceMinutesAcceptsWholeNumbersOnly(t *testing.T) {
	for raw, want := range map[string]int{"30": 30, "30.0": 30, " 15 ": 15, "-5": -5} {
		minutes, ok := VoiceCommand{Entities: map[string]string{"minutes": raw}}.minutes()
		assert.True(t, ok, raw)
		assert.Equal(t, want, minutes, raw)
	}
	for _, raw := range []string{"30.7", "0.5", "1e12", "NaN", "Inf", "-9999999999", "thirty"} {
		_, ok := VoiceCommand{Entities: map[string]string{"duration": raw}}.minutes()
		assert.False(t, ok, raw)
	}
}

func TestDispatchGrantBonusRejectsFractionalMinutes(t *testing.T) {
	v := newVoiceFixture(t)

	for _, raw := range []string{"30.7", "1e300"} {
		result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
			Intent:   IntentGrantBonus,
			Entities: map[string]string{"child": "Alex", "minutes": raw},
		})
		assert.False(t, result.OK, raw)
		assert.Equal(t, CodeInvalidArgument, result.Code, raw)
		assert.Equal(t, "How many minutes should I add?", result.Say, raw)
	}
	assert.Empty(t, v.store.AllAuditEvents())

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
		Intent:   IntentAssignChore,
		Entities: map[string]string{"child": "Alex", "chore": "feed the cat", "minutes": "12.5"},
	})
	assert.Equal(t, CodeInvalidArgument, result.Code)
	assert.Equal(t, "How many minutes is the chore worth?", result.Say)
}

func TestDispatchMutatingIntentRequiresParent(t *testing.T) {
	v := newVoiceFixture(t)

	for _, intent := range []string{IntentAddChild, IntentAssignChore, IntentGrantBonus} {
		result := v.svc.Dispatch(context.Background(), childSession(), VoiceCommand{
			Intent:   intent,
			Entities: map[string]string{"child": "Alex", "minutes": "30"},
		})
		assert.False(t, result.OK, intent)
		assert.Equal(t, CodePermissionDenied, result.Code, intent)
		assert.NotEmpty(t, result.Say, intent)
	}
	assert.Empty(t, v.store.AllAuditEvents())
}

func TestDispatchUnknownChildIsSpoken(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
		Intent:   IntentGrantBonus,
		Entities: map[string]string{"child": "Sam", "minutes": "10"},
	})

	assert.False(t, result.OK)
	assert.Equal(t, CodeNotFound, result.Code)
	assert.Equal(t, "Could not find child Sam", result.Say)
}

func TestDispatchShowUsageForChildCaller(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), childSession(), VoiceCommand{Intent: IntentShowUsage})

	assert.True(t, result.OK)
	assert.Equal(t, "You have used 0 of 60 minutes today, 60 minutes left.", result.Say)
}

func TestDispatchShowUsageForParent(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
		Intent:   IntentShowUsage,
		Entities: map[string]string{"childName": "Alex"},
	})

	assert.True(t, result.OK)
	assert.Equal(t, "Alex has used 0 of 60 minutes today, 60 minutes left.", result.Say)
}

func TestDispatchAddChildRefreshesPairingCode(t *testing.T) {
	v := newVoiceFixture(t)
	v.parentRepo.On("FindByFirebaseUID", parentUID).Return(models.Parent{FirebaseUID: parentUID}, nil)
	v.parentRepo.On("CountByCode", "1234", mock.AnythingOfType("*int64")).Return(nil)
	v.parentRepo.On("Save", mock.MatchedBy(func(p models.Parent) bool {
		return p.Code == "1234" && p.CodeExpiresAt != nil && p.CodeExpiresAt.Equal(fixedNow.Add(24*time.Hour))
	})).Return(nil)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{Intent: IntentAddChild})

	assert.True(t, result.OK)
	assert.Equal(t, "Your pairing code is 1 2 3 4. It is valid for 24 hours.", result.Say)
	v.parentRepo.AssertExpectations(t)
}

func TestDispatchAssignChore(t *testing.T) {
	v := newVoiceFixture(t)
	v.choreRepo.On("Save", mock.AnythingOfType("models.Chore")).Return(nil)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{
		Intent:   IntentAssignChore,
		Entities: map[string]string{"child": "Alex", "chore": "feed the cat", "minutes": "15"},
	})

	assert.True(t, result.OK)
	assert.Equal(t, "Assigned feed the cat to Alex for 15 minutes.", result.Say)
}

func TestDispatchUnknownIntentFallsBackPolitely(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), parentSession(), VoiceCommand{Intent: "order_pizza"})

	assert.False(t, result.OK)
	assert.Contains(t, result.Say, "Sorry")
}

func TestDispatchWithoutSession(t *testing.T) {
	v := newVoiceFixture(t)

	result := v.svc.Dispatch(context.Background(), nil, VoiceCommand{Intent: IntentShowUsage})

	assert.False(t, result.OK)
	assert.Equal(t, CodeUnauthenticated, result.Code)
}
