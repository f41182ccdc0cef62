package models

import "time"

// HeistMethod identifies the tool-driven approach used to hit a target
type HeistMethod string

const (
	HeistMethodDrill      HeistMethod = "DRILL"
	HeistMethodExplosives HeistMethod = "EXPLOSIVES"
	HeistMethodHack       HeistMethod = "HACK"
	HeistMethodInsideJob  HeistMethod = "INSIDE_JOB"
)

// HeistStage enumerates progression inside a live bank heist
type HeistStage string

const (
	HeistStageWorking      HeistStage = "WORKING"
	HeistStageVaultOpening HeistStage = "VAULT_OPENING"
	HeistStageVaultOpen    HeistStage = "VAULT_OPEN"
)

// HeistTargetKind distinguishes the two target variants
type HeistTargetKind string

const (
	HeistTargetBank HeistTargetKind = "BANK"
	HeistTargetATM  HeistTargetKind = "ATM"
)

// HeistLog is the persisted outcome of one heist attempt, successful or not.
// Cooldowns are rebuilt from these rows on restart.
type HeistLog struct {
	StartedAt    time.Time       `db:"started_at"`
	EndedAt      time.Time       `db:"ended_at"`
	TargetID     string          `db:"target_id"`
	InitiatorID  string          `db:"initiator_id"`
	Participants string          `db:"participants"`
	FailReason   string          `db:"fail_reason"`
	TargetKind   HeistTargetKind `db:"target_kind"`
	Method       HeistMethod     `db:"method"`
	LootCents    int64           `db:"loot_cents"`
	Success      bool            `db:"success"`
	ID           int64           `db:"id"`
}
