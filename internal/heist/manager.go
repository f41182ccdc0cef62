package heist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/citywide-rp/bankcore/internal/events"
	"github.com/citywide-rp/bankcore/internal/models"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/service"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

// Heist error codes, reported through the service error taxonomy.
const (
	ErrCodeTargetNotFound        = "target_not_found"
	ErrCodeUnknownMethod         = "unknown_method"
	ErrCodeHeistActive           = "heist_active"
	ErrCodeCooldownActive        = "cooldown_active"
	ErrCodeAlreadyRobbedRecently = "already_robbed_recently"
	ErrCodeMissingTool           = "missing_tool"
	ErrCodeNotEnoughPolice       = "not_enough_police"
	ErrCodeSecurityTooHigh       = "security_too_high"
)

// Cancellation reasons recorded in the outcome log.
const (
	ReasonLeftArea     = "LeftArea"
	ReasonLootFailed   = "LootDisbursementFailed"
	ReasonDisconnected = "InitiatorDisconnected"
)

const (
	policeAlertPercent  = 50
	vaultOpeningPercent = 75
	finishTimeout       = 10 * time.Second
)

// Manager owns all live heist state. Progression is driven by one goroutine
// per live heist that re-checks the registry on every tick, so an external
// cancellation needs no signalling: the loop finds the state gone and stops.
type Manager struct {
	logs      repository.HeistLogRepository
	inv       Inventory
	roster    Roster
	locator   Locator
	directory Directory
	sink      events.Sink
	cfg       tuning.Heist
	tick      time.Duration
	logger    *slog.Logger

	reg   *registry
	now   func() time.Time
	banks map[string]tuning.Bank
	atms  map[string]tuning.ATM
}

// NewManager creates a Manager over the target catalog in cfg. Vault and ATM
// funds are seeded from the catalog.
func NewManager(
	logs repository.HeistLogRepository,
	inv Inventory,
	roster Roster,
	locator Locator,
	directory Directory,
	sink events.Sink,
	cfg tuning.Heist,
	tick time.Duration,
	logger *slog.Logger,
) *Manager {
	m := &Manager{
		logs:      logs,
		inv:       inv,
		roster:    roster,
		locator:   locator,
		directory: directory,
		sink:      sink,
		cfg:       cfg,
		tick:      tick,
		logger:    logger,
		reg:       newRegistry(),
		now:       time.Now,
		banks:     make(map[string]tuning.Bank),
		atms:      make(map[string]tuning.ATM),
	}

	for _, b := range cfg.Banks {
		m.banks[b.ID] = b
		m.reg.funds[b.ID] = b.VaultCents
	}
	for _, a := range cfg.ATMs {
		m.atms[a.ID] = a
		m.reg.funds[a.ID] = a.CashCents
	}

	return m
}

// Rebuild restores per-target cooldowns from the outcome log. Live heists are
// deliberately not restored; an attempt interrupted by a restart is lost.
func (m *Manager) Rebuild(ctx context.Context) error {
	latest, err := m.logs.LatestEndTimes(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild heist cooldowns: %w", err)
	}

	for targetID, endedAt := range latest {
		m.reg.setCooldown(targetID, endedAt.Add(m.cooldownWindow(targetID)))
	}

	return nil
}

// StartBank begins a bank heist after all gates pass: no live attempt on the
// target, cooldown elapsed, the method's tool in the initiator's inventory,
// enough police online, and target security within the method's reach.
func (m *Manager) StartBank(ctx context.Context, initiatorID, targetID string, method models.HeistMethod, participants []string) (State, error) {
	bank, ok := m.banks[targetID]
	if !ok {
		return State{}, &service.ServiceError{Kind: service.KindNotFound, Code: ErrCodeTargetNotFound, Message: "unknown bank target"}
	}

	mcfg, ok := m.cfg.Methods[string(method)]
	if !ok {
		return State{}, &service.ServiceError{Kind: service.KindValidation, Code: ErrCodeUnknownMethod, Message: fmt.Sprintf("unknown heist method %q", method)}
	}
	if bank.SecurityLevel > mcfg.MaxSecurity {
		return State{}, &service.ServiceError{Kind: service.KindPrecondition, Code: ErrCodeSecurityTooHigh, Message: "security too high"}
	}

	if err := m.checkTool(ctx, initiatorID, mcfg.RequiredItem); err != nil {
		return State{}, err
	}

	police, err := m.roster.OnlineWithRole(ctx, PoliceRole)
	if err != nil {
		return State{}, errCollaborator(err)
	}
	if police < m.cfg.MinPolice {
		return State{}, &service.ServiceError{
			Kind:    service.KindPrecondition,
			Code:    ErrCodeNotEnoughPolice,
			Message: fmt.Sprintf("at least %d police must be online", m.cfg.MinPolice),
		}
	}

	vault := m.reg.availableFunds(targetID)
	loot := vault * mcfg.LootBps / 10000
	if loot < m.cfg.LootFloorCents {
		loot = m.cfg.LootFloorCents
	}
	if loot > vault {
		loot = vault
	}

	st := &State{
		TargetID:       targetID,
		TargetName:     bank.Name,
		Kind:           models.HeistTargetBank,
		InitiatorID:    initiatorID,
		Method:         method,
		Participants:   participants,
		StartedAt:      m.now(),
		Duration:       m.cfg.BankDuration.Std(),
		Stage:          models.HeistStageWorking,
		LootCents:      loot,
		AlarmTriggered: true,
	}

	if err := m.admit(st, ErrCodeCooldownActive, "target was robbed too recently"); err != nil {
		return State{}, err
	}

	m.sink.Publish(events.Event{Type: events.TypeAlarmState, Payload: events.AlarmState{TargetID: targetID, Active: true}})
	m.logger.Info("bank heist started",
		"target_id", targetID,
		"initiator_id", initiatorID,
		"method", method,
		"loot_cents", loot,
	)

	go m.run(targetID)

	return *st, nil
}

// StartATM begins the single-stage ATM variant: fixed timer, cut of the
// machine's cash, per-ATM cooldown, no alarm.
func (m *Manager) StartATM(ctx context.Context, initiatorID, targetID string, method models.HeistMethod) (State, error) {
	atm, ok := m.atms[targetID]
	if !ok {
		return State{}, &service.ServiceError{Kind: service.KindNotFound, Code: ErrCodeTargetNotFound, Message: "unknown ATM target"}
	}

	mcfg, ok := m.cfg.Methods[string(method)]
	if !ok {
		return State{}, &service.ServiceError{Kind: service.KindValidation, Code: ErrCodeUnknownMethod, Message: fmt.Sprintf("unknown heist method %q", method)}
	}

	if err := m.checkTool(ctx, initiatorID, mcfg.RequiredItem); err != nil {
		return State{}, err
	}

	loot := m.reg.availableFunds(targetID) * atm.LootBps / 10000

	st := &State{
		TargetID:     targetID,
		TargetName:   atm.Name,
		Kind:         models.HeistTargetATM,
		InitiatorID:  initiatorID,
		Method:       method,
		StartedAt:    m.now(),
		Duration:     m.cfg.ATMDuration.Std(),
		Stage:        models.HeistStageWorking,
		LootCents:    loot,
	}

	if err := m.admit(st, ErrCodeAlreadyRobbedRecently, "ATM was robbed too recently"); err != nil {
		return State{}, err
	}

	m.logger.Info("atm heist started",
		"target_id", targetID,
		"initiator_id", initiatorID,
		"method", method,
		"loot_cents", loot,
	)

	go m.run(targetID)

	return *st, nil
}

// Cancel resolves a live heist as failed with the given reason. Cancelling a
// target with no live heist is a no-op, never an error.
func (m *Manager) Cancel(ctx context.Context, targetID, reason string) error {
	st, ok := m.claim(targetID)
	if !ok {
		return nil
	}

	m.resolve(ctx, st, false, reason, 0)
	return nil
}

// claim removes the live state for a target and arms its cooldown in one
// critical section. From the moment claim returns the target is neither
// live nor admit-able, even while the terminal bookkeeping is still talking
// to collaborators. Whoever claims the state owns its terminal transition;
// a second caller finds nothing and backs off, which is what makes
// cancellation idempotent.
func (m *Manager) claim(targetID string) (*State, bool) {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()

	st, ok := m.reg.live[targetID]
	if !ok {
		return nil, false
	}
	delete(m.reg.live, targetID)
	m.reg.cooldownUntil[targetID] = m.now().Add(m.cooldownWindow(targetID))
	return st, true
}

// Status returns a copy of the live heist state for a target, if any.
func (m *Manager) Status(targetID string) (State, bool) {
	return m.reg.snapshot(targetID)
}

// admit atomically re-checks the liveness and cooldown gates and registers
// the state. Gates involving collaborator I/O run before admit; this final
// check under the registry lock is what two racing initiators serialize on.
func (m *Manager) admit(st *State, cooldownCode, cooldownMessage string) error {
	m.reg.mu.Lock()
	defer m.reg.mu.Unlock()

	if _, live := m.reg.live[st.TargetID]; live {
		return &service.ServiceError{Kind: service.KindConflict, Code: ErrCodeHeistActive, Message: "a heist is already in progress on this target"}
	}
	if m.now().Before(m.reg.cooldownUntil[st.TargetID]) {
		return &service.ServiceError{Kind: service.KindPrecondition, Code: cooldownCode, Message: cooldownMessage}
	}

	m.reg.live[st.TargetID] = st
	return nil
}

func (m *Manager) checkTool(ctx context.Context, initiatorID, item string) error {
	has, err := m.inv.HasItem(ctx, initiatorID, item)
	if err != nil {
		return errCollaborator(err)
	}
	if !has {
		return &service.ServiceError{
			Kind:    service.KindPrecondition,
			Code:    ErrCodeMissingTool,
			Message: fmt.Sprintf("missing required item %q", item),
		}
	}
	return nil
}

// run drives one live heist to its end. Each tick re-checks that the state
// still exists, so the loop terminates on its own after an external cancel.
func (m *Manager) run(targetID string) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for range ticker.C {
		if !m.step(targetID, m.now()) {
			return
		}
	}
}

// step advances progress to the given time and returns false once the heist
// is gone or finished. Exposed to tests so progression can be driven with
// synthetic clocks instead of real tickers.
func (m *Manager) step(targetID string, now time.Time) bool {
	m.reg.mu.Lock()

	st, ok := m.reg.live[targetID]
	if !ok {
		m.reg.mu.Unlock()
		return false
	}

	elapsed := now.Sub(st.StartedAt)
	pct := int(elapsed * 100 / st.Duration)
	if pct > 100 {
		pct = 100
	}
	st.Progress = pct

	alertPolice := false
	if st.Kind == models.HeistTargetBank {
		if pct >= vaultOpeningPercent && st.Stage == models.HeistStageWorking {
			st.Stage = models.HeistStageVaultOpening
		}
		if pct >= policeAlertPercent && !st.PoliceNotified {
			st.PoliceNotified = true
			alertPolice = true
		}
	}

	done := pct >= 100
	if done {
		st.Stage = models.HeistStageVaultOpen
		// Claim the terminal transition and arm the cooldown before
		// releasing the lock: a racing cancel cannot resolve the same heist
		// twice, and a racing start must see the target cooling down while
		// finish is still talking to collaborators.
		delete(m.reg.live, targetID)
		m.reg.cooldownUntil[targetID] = now.Add(m.cooldownWindow(targetID))
	}

	snapshot := *st
	m.reg.mu.Unlock()

	if snapshot.Kind == models.HeistTargetBank {
		m.sink.Publish(events.Event{Type: events.TypeHeistProgress, Payload: events.HeistProgress{
			TargetID: targetID,
			Percent:  snapshot.Progress,
			Stage:    string(snapshot.Stage),
		}})
	}
	if alertPolice {
		remaining := snapshot.Duration - now.Sub(snapshot.StartedAt)
		if remaining < 0 {
			remaining = 0
		}
		m.sink.Publish(events.Event{Type: events.TypePoliceAlert, Payload: events.PoliceAlert{
			TargetName:       snapshot.TargetName,
			RemainingSeconds: int(remaining / time.Second),
		}})
	}

	if done {
		m.finish(&snapshot)
		return false
	}
	return true
}

// finish resolves a heist whose timer ran out: the initiator must still be
// near the target, and the loot bag must land in their inventory.
func (m *Manager) finish(st *State) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	within, err := m.locator.WithinRange(ctx, st.InitiatorID, st.TargetID, m.cfg.EscapeRadius)
	if err != nil {
		m.logger.Error("locator check failed, treating initiator as gone",
			"target_id", st.TargetID, "error", err)
		within = false
	}
	if !within {
		m.resolve(ctx, st, false, ReasonLeftArea, 0)
		return
	}

	if err := m.inv.GrantLoot(ctx, st.InitiatorID, st.LootCents); err != nil {
		m.logger.Error("loot disbursement failed",
			"target_id", st.TargetID, "initiator_id", st.InitiatorID, "error", err)
		m.resolve(ctx, st, false, ReasonLootFailed, 0)
		return
	}

	m.reg.drainFunds(st.TargetID, st.LootCents)
	m.resolve(ctx, st, true, "", st.LootCents)
}

// resolve performs the shared terminal bookkeeping: cooldown, outcome log,
// alarm clear and completion event. The caller must already own the state
// (claimed out of the registry).
func (m *Manager) resolve(ctx context.Context, st *State, success bool, reason string, lootCents int64) {
	endedAt := m.now()
	// The claim already armed the cooldown; refresh it from the actual end time.
	m.reg.setCooldown(st.TargetID, endedAt.Add(m.cooldownWindow(st.TargetID)))

	initiator, err := m.directory.DisplayName(ctx, st.InitiatorID)
	if err != nil {
		initiator = st.InitiatorID
	}

	entry := &models.HeistLog{
		TargetID:     st.TargetID,
		TargetKind:   st.Kind,
		InitiatorID:  st.InitiatorID,
		Participants: strings.Join(st.Participants, ","),
		Method:       st.Method,
		LootCents:    lootCents,
		Success:      success,
		FailReason:   reason,
		StartedAt:    st.StartedAt,
		EndedAt:      endedAt,
	}
	if err := m.logs.Create(ctx, entry); err != nil {
		m.logger.Error("failed to persist heist outcome",
			"target_id", st.TargetID, "success", success, "error", err)
	}

	if st.Kind == models.HeistTargetBank {
		m.sink.Publish(events.Event{Type: events.TypeAlarmState, Payload: events.AlarmState{TargetID: st.TargetID, Active: false}})
	}
	m.sink.Publish(events.Event{Type: events.TypeHeistCompleted, Payload: events.HeistCompleted{
		TargetID:  st.TargetID,
		Success:   success,
		LootCents: lootCents,
	}})

	m.logger.Info("heist resolved",
		"target_id", st.TargetID,
		"initiator", initiator,
		"success", success,
		"reason", reason,
		"loot_cents", lootCents,
		"duration", endedAt.Sub(st.StartedAt),
	)
}

func (m *Manager) cooldownWindow(targetID string) time.Duration {
	if _, ok := m.atms[targetID]; ok {
		return m.cfg.ATMCooldown.Std()
	}
	return m.cfg.BankCooldown.Std()
}

func errCollaborator(err error) *service.ServiceError {
	return &service.ServiceError{
		Kind:    service.KindIntegrity,
		Code:    service.ErrCodeInternalError,
		Message: "transaction failed",
		Err:     err,
	}
}
