// Package guard drives the lock-screen overlay from policy and usage updates.
//
// An OverlayGuard recomputes only when its inputs change at minute resolution,
// debounces bursts of changes into a single commit and remembers the last
// evaluated key so an exact repeat never reaches the evaluator.
package guard

import (
	"FamilyTime/models"
	"FamilyTime/policy"
	"encoding/json"
	"sync"
	"time"
)

// DefaultDelay is the debounce window between a detected change and the commit.
const DefaultDelay = 100 * time.Millisecond

// Evaluator matches policy.IsUsageAllowed.
type Evaluator func(p *models.Policy, usage *models.UsageSnapshot, now time.Time) bool

type inputKey struct {
	policy  string
	budget  int
	used    int
	hasUse  bool
	timeKey int64
}

type input struct {
	policy *models.Policy
	usage  *models.UsageSnapshot
	now    time.Time
}

type Option func(*OverlayGuard)

func WithDelay(d time.Duration) Option {
	return func(g *OverlayGuard) { g.delay = d }
}

func WithEvaluator(fn Evaluator) Option {
	return func(g *OverlayGuard) { g.evaluate = fn }
}

// WithOnChange registers a callback invoked after a commit flips the locked state.
func WithOnChange(fn func(locked bool)) Option {
	return func(g *OverlayGuard) { g.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(g *OverlayGuard) { g.clock = now }
}

type OverlayGuard struct {
	mu       sync.Mutex
	delay    time.Duration
	evaluate Evaluator
	onChange func(bool)
	clock    func() time.Time

	locked     bool
	lastKey    *inputKey
	cachedKey  *inputKey
	cached     bool
	timer      *time.Timer
	generation uint64
	closed     bool
}

func NewOverlayGuard(opts ...Option) *OverlayGuard {
	g := &OverlayGuard{
		delay:    DefaultDelay,
		evaluate: policy.IsUsageAllowed,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Update feeds new inputs. Zero now means the guard clock at call time.
func (g *OverlayGuard) Update(p *models.Policy, usage *models.UsageSnapshot, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	if now.IsZero() {
		now = g.clock()
	}

	key := makeKey(p, usage, now)
	if g.lastKey != nil && *g.lastKey == key {
		return
	}
	g.lastKey = &key

	g.cancelLocked()
	g.generation++
	gen := g.generation
	in := input{policy: p, usage: usage, now: now}
	g.timer = time.AfterFunc(g.delay, func() { g.commit(gen, key, in) })
}

// Locked returns the last committed state. The guard starts unlocked.
func (g *OverlayGuard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

// Pending reports whether a debounced commit is scheduled.
func (g *OverlayGuard) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

// Close cancels any pending commit. Safe to call more than once.
func (g *OverlayGuard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.closed = true
}

func (g *OverlayGuard) cancelLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	// таймер мог уже сработать и ждать мьютекс: смена поколения отбросит его
	g.generation++
}

func (g *OverlayGuard) commit(gen uint64, key inputKey, in input) {
	g.mu.Lock()
	if g.closed || gen != g.generation {
		g.mu.Unlock()
		return
	}
	g.timer = nil

	var allowed bool
	if g.cachedKey != nil && *g.cachedKey == key {
		allowed = g.cached
	} else {
		allowed = g.evaluate(in.policy, in.usage, in.now)
		g.cachedKey = &key
		g.cached = allowed
	}

	locked := !allowed
	changed := locked != g.locked
	g.locked = locked
	onChange := g.onChange
	g.mu.Unlock()

	if changed && onChange != nil {
		onChange(locked)
	}
}

func makeKey(p *models.Policy, usage *models.UsageSnapshot, now time.Time) inputKey {
	policyKey := "null"
	if p != nil {
		if raw, err := json.Marshal(p); err == nil {
			policyKey = string(raw)
		}
	}
	key := inputKey{
		policy:  policyKey,
		timeKey: now.Truncate(time.Minute).Unix(),
	}
	if usage != nil {
		key.hasUse = true
		key.budget = usage.BudgetMinutes
		key.used = usage.UsedMinutes
	}
	return key
}
