package guard

import (
	"FamilyTime/models"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testDelay = 20 * time.Millisecond

type countingEvaluator struct {
	calls atomic.Int32
	mu    sync.Mutex
	last  *models.UsageSnapshot
}

func (c *countingEvaluator) evaluate(p *models.Policy, usage *models.UsageSnapshot, now time.Time) bool {
	c.calls.Add(1)
	c.mu.Lock()
	c.last = usage
	c.mu.Unlock()
	return usage == nil || usage.UsedMinutes < usage.BudgetMinutes
}

func noon() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newTestGuard(ev *countingEvaluator, opts ...Option) *OverlayGuard {
	opts = append([]Option{WithDelay(testDelay), WithEvaluator(ev.evaluate)}, opts...)
	return NewOverlayGuard(opts...)
}

func TestOverlayGuardLocksWhenBudgetExhausted(t *testing.T) {
	g := NewOverlayGuard(WithDelay(testDelay))
	defer g.Close()

	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 60}, noon())

	assert.False(t, g.Locked(), "not committed before the debounce delay")
	assert.Eventually(t, g.Locked, time.Second, 5*time.Millisecond)
}

func TestOverlayGuardCoalescesRapidChanges(t *testing.T) {
	ev := &countingEvaluator{}
	g := newTestGuard(ev)
	defer g.Close()

	for used := 10; used <= 60; used += 10 {
		g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: used}, noon())
	}

	assert.Eventually(t, g.Locked, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testDelay)
	assert.Equal(t, int32(1), ev.calls.Load())
	ev.mu.Lock()
	assert.Equal(t, 60, ev.last.UsedMinutes)
	ev.mu.Unlock()
}

func TestOverlayGuardIgnoresSubMinuteChanges(t *testing.T) {
	ev := &countingEvaluator{}
	g := newTestGuard(ev)
	defer g.Close()

	usage := &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 10}
	g.Update(&models.Policy{}, usage, noon())
	assert.Eventually(t, func() bool { return ev.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	g.Update(&models.Policy{}, usage, noon().Add(20*time.Second))
	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 10}, noon().Add(59*time.Second))
	assert.False(t, g.Pending())

	time.Sleep(3 * testDelay)
	assert.Equal(t, int32(1), ev.calls.Load())

	g.Update(&models.Policy{}, usage, noon().Add(time.Minute))
	assert.True(t, g.Pending())
	assert.Eventually(t, func() bool { return ev.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestOverlayGuardDetectsPolicyChange(t *testing.T) {
	ev := &countingEvaluator{}
	g := newTestGuard(ev)
	defer g.Close()

	usage := &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 10}
	g.Update(&models.Policy{}, usage, noon())
	assert.Eventually(t, func() bool { return ev.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	changed := &models.Policy{QuietHours: []models.QuietHours{{Start: "11:00", End: "13:00"}}}
	g.Update(changed, usage, noon())
	assert.True(t, g.Pending())
	assert.Eventually(t, func() bool { return ev.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestOverlayGuardCacheHitSkipsEvaluator(t *testing.T) {
	ev := &countingEvaluator{}
	g := newTestGuard(ev)
	defer g.Close()

	a := &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 60}
	b := &models.UsageSnapshot{BudgetMinutes: 90, UsedMinutes: 60}

	g.Update(&models.Policy{}, a, noon())
	assert.Eventually(t, g.Locked, time.Second, 5*time.Millisecond)

	// b отменяется до срабатывания, затем возвращаемся к a
	g.Update(&models.Policy{}, b, noon())
	g.Update(&models.Policy{}, a, noon())
	time.Sleep(4 * testDelay)

	assert.Equal(t, int32(1), ev.calls.Load())
	assert.True(t, g.Locked())
}

func TestOverlayGuardCloseCancelsPending(t *testing.T) {
	ev := &countingEvaluator{}
	g := newTestGuard(ev)

	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 60}, noon())
	g.Close()
	g.Close()

	time.Sleep(4 * testDelay)
	assert.Equal(t, int32(0), ev.calls.Load())
	assert.False(t, g.Locked())

	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 60}, noon().Add(time.Hour))
	assert.False(t, g.Pending(), "updates after Close are ignored")
}

func TestOverlayGuardOnChange(t *testing.T) {
	var mu sync.Mutex
	var states []bool
	g := NewOverlayGuard(WithDelay(testDelay), WithOnChange(func(locked bool) {
		mu.Lock()
		states = append(states, locked)
		mu.Unlock()
	}))
	defer g.Close()

	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 10}, noon())
	time.Sleep(3 * testDelay)
	g.Update(&models.Policy{}, &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 60}, noon())
	assert.Eventually(t, g.Locked, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// первый коммит не меняет состояние (уже разблокировано)
	assert.Equal(t, []bool{true}, states)
}

func TestOverlayGuardZeroNowUsesClock(t *testing.T) {
	ev := &countingEvaluator{}
	fixed := noon()
	g := newTestGuard(ev, WithClock(func() time.Time { return fixed }))
	defer g.Close()

	usage := &models.UsageSnapshot{BudgetMinutes: 60, UsedMinutes: 10}
	g.Update(&models.Policy{}, usage, time.Time{})
	assert.Eventually(t, func() bool { return ev.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	g.Update(&models.Policy{}, usage, fixed)
	assert.False(t, g.Pending())
}

func TestOverlayGuardNilInputsUnlocked(t *testing.T) {
	g := NewOverlayGuard(WithDelay(testDelay))
	defer g.Close()

	g.Update(nil, nil, noon())
	time.Sleep(3 * testDelay)
	assert.False(t, g.Locked())
}
