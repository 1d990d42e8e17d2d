package services

import (
	"FamilyTime/models"
	"FamilyTime/repositories"
	"FamilyTime/repositories/mocks"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestReportUsageNeverDecreases(t *testing.T) {
	f := newFixture(t, 60)
	svc := NewUsageService(f.deps)
	ctx := context.Background()

	state, err := svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, state.UsedMinutes)
	assert.Equal(t, 20, state.RemainingMinutes)
	assert.False(t, state.Locked)

	state, err = svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 25})
	require.NoError(t, err)
	assert.Equal(t, 40, state.UsedMinutes)

	state, err = svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 60})
	require.NoError(t, err)
	assert.True(t, state.Locked)
	assert.Equal(t, 0, state.RemainingMinutes)

	assert.Len(t, f.eventsOfType(models.AuditUsageReported), 3)
}

func TestReportUsageValidation(t *testing.T) {
	f := newFixture(t, 60)
	svc := NewUsageService(f.deps)

	_, err := svc.ReportUsage(context.Background(), childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: -1})
	assert.Equal(t, CodeInvalidArgument, CodeOf(err))

	_, err = svc.ReportUsage(context.Background(), &models.Session{UID: "intruder", Role: models.RoleChild},
		ReportUsageInput{ChildID: childUID, UsedMinutes: 5})
	assert.Equal(t, CodePermissionDenied, CodeOf(err))
}

func TestLockStateUsesDefaultBudgetWithoutRecord(t *testing.T) {
	f := newFixture(t, 0)
	svc := NewUsageService(f.deps)

	state, err := svc.LockState(context.Background(), parentSession(), childUID, time.Time{})

	require.NoError(t, err)
	assert.False(t, state.Locked)
	assert.Equal(t, 120, state.BudgetMinutes)
	assert.Equal(t, "2026-03-14", state.Date)
}

func TestLockStateHonoursQuietHours(t *testing.T) {
	f := newFixture(t, 120)
	raw, err := json.Marshal(models.Policy{QuietHours: []models.QuietHours{{Start: "22:00", End: "07:00"}}})
	require.NoError(t, err)

	childRepo := new(mocks.ChildRepository)
	childRepo.On("FindByFirebaseUID", childUID).Return(models.Child{
		FirebaseUID:        childUID,
		ParentFirebaseUID:  parentUID,
		DailyBudgetMinutes: 120,
		Policy:             datatypes.JSON(raw),
	}, nil)
	childRepo.On("FindByFirebaseUID", mock.Anything).Return(models.Child{}, repositories.ErrNotFound)
	f.deps.Children = childRepo
	svc := NewUsageService(f.deps)
	ctx := context.Background()

	_, err = svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 60})
	require.NoError(t, err)

	night, err := svc.LockState(ctx, childSession(), childUID, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, night.Locked)

	afternoon, err := svc.LockState(ctx, childSession(), childUID, time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, afternoon.Locked)
	assert.Equal(t, 60, afternoon.RemainingMinutes)
}

func TestLockStateEnforcesBudgetWithoutReadablePolicy(t *testing.T) {
	for name, raw := range map[string]datatypes.JSON{
		"no policy":      nil,
		"corrupt policy": datatypes.JSON(`{"quietHours":[`),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 60)
			childRepo := new(mocks.ChildRepository)
			childRepo.On("FindByFirebaseUID", childUID).Return(models.Child{
				FirebaseUID:        childUID,
				ParentFirebaseUID:  parentUID,
				DailyBudgetMinutes: 60,
				Policy:             raw,
			}, nil)
			f.deps.Children = childRepo
			svc := NewUsageService(f.deps)
			ctx := context.Background()

			state, err := svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 60})
			require.NoError(t, err)
			assert.True(t, state.Locked)

			state, err = svc.LockState(ctx, parentSession(), childUID, time.Time{})
			require.NoError(t, err)
			assert.True(t, state.Locked)
			assert.Equal(t, 0, state.RemainingMinutes)
		})
	}
}

func TestAuditTrailIsParentOnly(t *testing.T) {
	f := newFixture(t, 60)
	svc := NewUsageService(f.deps)
	ctx := context.Background()
	_, err := svc.ReportUsage(ctx, childSession(), ReportUsageInput{ChildID: childUID, UsedMinutes: 10})
	require.NoError(t, err)

	events, err := svc.AuditTrail(ctx, parentSession(), childUID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.AuditUsageReported, events[0].Type)

	_, err = svc.AuditTrail(ctx, childSession(), childUID, 10)
	assert.Equal(t, CodePermissionDenied, CodeOf(err))
}
