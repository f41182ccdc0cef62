package heist

import (
	"sync"
	"time"

	"github.com/citywide-rp/bankcore/internal/models"
)

// State is the in-memory record of one live heist attempt. It is owned by
// the Manager; callers only ever see copies.
type State struct {
	TargetID       string
	TargetName     string
	Kind           models.HeistTargetKind
	InitiatorID    string
	Method         models.HeistMethod
	Participants   []string
	StartedAt      time.Time
	Duration       time.Duration
	Stage          models.HeistStage
	Progress       int
	LootCents      int64
	AlarmTriggered bool
	PoliceNotified bool
}

// registry holds all live heists, per-target cooldown deadlines, and the
// remaining funds of each target. Everything here is rebuildable: cooldowns
// from heist_logs, funds from tuning minus logged loot.
type registry struct {
	mu            sync.Mutex
	live          map[string]*State
	cooldownUntil map[string]time.Time
	funds         map[string]int64
}

func newRegistry() *registry {
	return &registry{
		live:          make(map[string]*State),
		cooldownUntil: make(map[string]time.Time),
		funds:         make(map[string]int64),
	}
}

func (r *registry) snapshot(targetID string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.live[targetID]
	if !ok {
		return State{}, false
	}
	copied := *st
	copied.Participants = append([]string(nil), st.Participants...)
	return copied, true
}

func (r *registry) setCooldown(targetID string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cooldownUntil[targetID] = until
}

func (r *registry) onCooldown(targetID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return now.Before(r.cooldownUntil[targetID])
}

func (r *registry) availableFunds(targetID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.funds[targetID]
}

func (r *registry) drainFunds(targetID string, amountCents int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.funds[targetID] - amountCents
	if remaining < 0 {
		remaining = 0
	}
	r.funds[targetID] = remaining
}
