// Package events carries fire-and-forget notifications from the engine to
// game-world consumers (HUD, chat, map markers). Delivery is best effort,
// at most once; the engine never retries or blocks on a consumer.
package events

import "sync"

// Event is one outbound notification. Type discriminates the payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Payload types, one per notification in the outbound contract.
type (
	BalanceChanged struct {
		AccountID    string `json:"account_id"`
		BalanceCents int64  `json:"balance_cents"`
	}

	HeistProgress struct {
		TargetID string `json:"target_id"`
		Percent  int    `json:"percent"`
		Stage    string `json:"stage"`
	}

	PoliceAlert struct {
		TargetName       string `json:"target_name"`
		RemainingSeconds int    `json:"remaining_seconds"`
	}

	HeistCompleted struct {
		TargetID  string `json:"target_id"`
		Success   bool   `json:"success"`
		LootCents int64  `json:"loot_cents"`
	}

	AlarmState struct {
		TargetID string `json:"target_id"`
		Active   bool   `json:"active"`
	}
)

const (
	TypeBalanceChanged = "balance_changed"
	TypeHeistProgress  = "heist_progress"
	TypePoliceAlert    = "heist_police_alert"
	TypeHeistCompleted = "heist_completed"
	TypeAlarmState     = "alarm_state"
)

// Sink receives engine events. Implementations must not block the caller.
type Sink interface {
	Publish(ev Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// Recorder collects published events for inspection in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns published events matching the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
