package encounter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/game/progression"
	"github.com/udisondev/qiankun/internal/model"
)

// ManagerConfig wires a manager's collaborators and tunables.
type ManagerConfig struct {
	Heroes  HeroStore
	Reports ReportStore

	// DecisionTimeout bounds every prompt; zero means the engine default.
	DecisionTimeout time.Duration

	// Retention keeps finished sessions queryable before the reaper
	// removes them. Zero means an hour.
	Retention time.Duration

	// SettleTimeout bounds the persistence work after a battle. Zero
	// means ten seconds.
	SettleTimeout time.Duration
}

const (
	defaultRetention     = time.Hour
	defaultSettleTimeout = 10 * time.Second
)

// Manager owns every live session. Thread-safe for concurrent access.
type Manager struct {
	heroes  HeroStore
	reports ReportStore

	decisionTimeout time.Duration
	retention       time.Duration
	settleTimeout   time.Duration

	mu       sync.RWMutex
	sessions map[string]*liveSession
	byHero   map[string]string // hero name → session id
	nextID   atomic.Int64

	wg sync.WaitGroup
}

// NewManager builds an empty session registry.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		heroes:          cfg.Heroes,
		reports:         cfg.Reports,
		decisionTimeout: cfg.DecisionTimeout,
		retention:       cfg.Retention,
		settleTimeout:   cfg.SettleTimeout,
		sessions:        make(map[string]*liveSession, 16),
		byHero:          make(map[string]string, 32),
	}
	if m.retention <= 0 {
		m.retention = defaultRetention
	}
	if m.settleTimeout <= 0 {
		m.settleTimeout = defaultSettleTimeout
	}
	return m
}

// StartHunt validates and launches a group battle of the named heroes
// against the keyed beasts. Returns the session id. Every validation
// failure happens before any state is touched.
func (m *Manager) StartHunt(ctx context.Context, heroNames, beastKeys []string) (string, error) {
	heroes, err := m.loadHeroes(ctx, heroNames)
	if err != nil {
		return "", err
	}

	allies := make([]*model.Fighter, 0, len(heroes))
	participants := make([]participant, 0, len(heroes))
	for _, h := range heroes {
		f, err := buildAllyFighter(h)
		if err != nil {
			return "", err
		}
		allies = append(allies, f)
		participants = append(participants, participant{hero: h, fighter: f})
	}

	foeFighters := make([]*model.Fighter, 0, len(beastKeys))
	foes := make([]foeRef, 0, len(beastKeys))
	for i, key := range beastKeys {
		tpl := data.BeastByKey(key)
		if tpl == nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownBeast, key)
		}
		f, err := buildFoeFighter(tpl, i+1)
		if err != nil {
			return "", err
		}
		foeFighters = append(foeFighters, f)
		foes = append(foes, foeRef{fighterID: f.ID(), beast: tpl})
	}

	return m.launch(ctx, combat.ModeGroup, participants, allies, foeFighters, foes)
}

// StartDuel validates and launches a one-on-one battle between two
// heroes. The opponent fights with its real record but makes no
// decisions; both records are settled afterwards.
func (m *Manager) StartDuel(ctx context.Context, challengerName, opponentName string) (string, error) {
	if challengerName == opponentName {
		return "", ErrSelfDuel
	}

	heroes, err := m.loadHeroes(ctx, []string{challengerName, opponentName})
	if err != nil {
		return "", err
	}
	challenger, opponent := heroes[0], heroes[1]

	ally, err := buildAllyFighter(challenger)
	if err != nil {
		return "", err
	}
	foe, err := buildDuelOpponent(opponent)
	if err != nil {
		return "", err
	}

	participants := []participant{
		{hero: challenger, fighter: ally},
		{hero: opponent, fighter: foe},
	}
	foes := []foeRef{{fighterID: foe.ID()}}

	return m.launch(ctx, combat.ModeDuel,
		participants, []*model.Fighter{ally}, []*model.Fighter{foe}, foes)
}

// loadHeroes fetches the named records and applies the entry gates: a
// hero already fighting or with an exhausted pool cannot start a battle.
func (m *Manager) loadHeroes(ctx context.Context, names []string) ([]*model.Hero, error) {
	heroes := make([]*model.Hero, 0, len(names))
	for _, name := range names {
		h, err := m.heroes.HeroByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load hero %s: %w", name, err)
		}
		h.ClampPools()
		if h.InCombat || m.heroSession(h.Name) != "" {
			return nil, fmt.Errorf("%w: %s", ErrHeroInCombat, h.Name)
		}
		if h.NeedsRecovery() {
			return nil, fmt.Errorf("%w: %s", ErrHeroNeedsRecovery, h.Name)
		}
		heroes = append(heroes, h)
	}
	return heroes, nil
}

// launch assembles the engine session, flags the heroes, registers the
// live session and starts the battle goroutine.
func (m *Manager) launch(
	ctx context.Context,
	mode combat.Mode,
	participants []participant,
	allies, foeFighters []*model.Fighter,
	foes []foeRef,
) (string, error) {
	id := fmt.Sprintf("b-%d", m.nextID.Add(1))

	battleCtx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{
		id:           id,
		mode:         mode,
		cancel:       cancel,
		participants: participants,
		foes:         foes,
	}

	sess, err := combat.NewSession(combat.Config{
		ID:              id,
		Mode:            mode,
		Allies:          allies,
		Foes:            foeFighters,
		Provider:        ls,
		DecisionTimeout: m.decisionTimeout,
		ResolveSkill:    progression.ResolveSkillDamage,
		Resistance:      data.ResistanceReduction,
		OnSkillUse: func(_ *model.Fighter, sk *model.Skill) {
			progression.GainProficiency(sk, 1)
		},
		Sink: ls.sink,
	})
	if err != nil {
		cancel()
		return "", err
	}

	if err := m.flagInCombat(ctx, participants); err != nil {
		cancel()
		return "", err
	}

	m.mu.Lock()
	for _, p := range participants {
		// Two launches can pass the load-time gate concurrently; the
		// registry write is the authoritative check.
		if other, busy := m.byHero[p.hero.Name]; busy && other != id {
			m.mu.Unlock()
			cancel()
			m.unflagInCombat(ctx, participants)
			return "", fmt.Errorf("%w: %s", ErrHeroInCombat, p.hero.Name)
		}
	}
	m.sessions[id] = ls
	for _, p := range participants {
		m.byHero[p.hero.Name] = id
	}
	m.mu.Unlock()

	slog.Info("battle launched",
		"session", id,
		"mode", mode.String(),
		"heroes", len(participants),
		"foes", len(foeFighters))

	m.wg.Add(1)
	go m.runSession(battleCtx, ls, sess)

	return id, nil
}

// flagInCombat marks every participant as fighting, rolling back the ones
// already marked if any write fails. A failure here aborts the launch.
func (m *Manager) flagInCombat(ctx context.Context, participants []participant) error {
	for i, p := range participants {
		if err := m.heroes.SetInCombat(ctx, p.hero.ID, true); err != nil {
			m.unflagInCombat(ctx, participants[:i])
			return fmt.Errorf("flag hero %s: %w", p.hero.Name, err)
		}
		p.hero.InCombat = true
	}
	return nil
}

// unflagInCombat clears the combat flag after an aborted launch.
func (m *Manager) unflagInCombat(ctx context.Context, participants []participant) {
	for _, p := range participants {
		p.hero.InCombat = false
		if err := m.heroes.SetInCombat(ctx, p.hero.ID, false); err != nil {
			slog.Error("combat flag rollback failed", "hero", p.hero.Name, "err", err)
		}
	}
}

// runSession drives one battle to completion and settles the outcome.
func (m *Manager) runSession(ctx context.Context, ls *liveSession, sess *combat.Session) {
	defer m.wg.Done()
	defer m.releaseHeroes(ls)

	report, err := sess.Run(ctx)
	if err != nil {
		slog.Warn("battle stopped early", "session", ls.id, "err", err)
	}

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.settleTimeout)
	defer cancel()
	rewards := m.settle(settleCtx, ls, report)

	ls.finish(report, rewards)
}

// releaseHeroes frees the participants for new battles. The session stays
// queryable until the reaper removes it.
func (m *Manager) releaseHeroes(ls *liveSession) {
	m.mu.Lock()
	for _, p := range ls.participants {
		if m.byHero[p.hero.Name] == ls.id {
			delete(m.byHero, p.hero.Name)
		}
	}
	m.mu.Unlock()
}

// SessionState returns a snapshot of the identified session.
func (m *Manager) SessionState(id string) (*State, error) {
	m.mu.RLock()
	ls := m.sessions[id]
	m.mu.RUnlock()
	if ls == nil {
		return nil, ErrSessionNotFound
	}
	return ls.snapshot(), nil
}

// SubmitDecision answers the pending prompt of a session on behalf of the
// named hero.
func (m *Manager) SubmitDecision(id, heroName string, d combat.Decision) error {
	m.mu.RLock()
	ls := m.sessions[id]
	m.mu.RUnlock()
	if ls == nil {
		return ErrSessionNotFound
	}
	return ls.submit(heroName, d)
}

// heroSession returns the id of the session the named hero fights in,
// empty when idle.
func (m *Manager) heroSession(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byHero[name]
}

// SessionCount returns the number of registered sessions, finished ones
// included until the reaper collects them.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap removes finished sessions older than the retention window.
// Returns how many were removed.
func (m *Manager) Reap() int {
	cutoff := time.Now().Add(-m.retention)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, ls := range m.sessions {
		if ls.finishedBefore(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("sessions reaped", "count", removed, "left", len(m.sessions))
	}
	return removed
}

// RunReaper periodically collects expired sessions until ctx ends.
// Intended to run under an errgroup next to the HTTP server.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Close cancels every running battle and waits for their goroutines to
// settle and exit. Safe to call once during shutdown.
func (m *Manager) Close() {
	m.mu.RLock()
	for _, ls := range m.sessions {
		ls.cancel()
	}
	m.mu.RUnlock()
	m.wg.Wait()
}
