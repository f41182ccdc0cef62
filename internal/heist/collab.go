// Package heist runs the timed bank and ATM robbery state machines.
//
// A live heist exists only in memory; its outcome is persisted as a
// heist_logs row, from which per-target cooldowns are rebuilt on restart.
package heist

import "context"

// Inventory is the game-world item collaborator. Heists gate on the tool a
// method requires, and loot is disbursed as a trackable loot-bag item rather
// than a direct balance credit.
type Inventory interface {
	HasItem(ctx context.Context, actorID, item string) (bool, error)
	GrantLoot(ctx context.Context, actorID string, amountCents int64) error
}

// Roster answers "how many actors with role X are online", used for the
// police-minimum gate.
type Roster interface {
	OnlineWithRole(ctx context.Context, role string) (int, error)
}

// Locator answers whether an actor is still within radius of a target.
type Locator interface {
	WithinRange(ctx context.Context, actorID, targetID string, radius float64) (bool, error)
}

// Directory resolves actor ids to display names for audit logging.
type Directory interface {
	DisplayName(ctx context.Context, actorID string) (string, error)
}

// PoliceRole is the roster role counted against the heist police minimum.
const PoliceRole = "police"
