package combat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/qiankun/internal/model"
)

// Config assembles one session. The fighter slices transfer ownership:
// the session mutates them in place and nothing else may touch them until
// Run returns.
type Config struct {
	ID     string
	Mode   Mode
	Allies []*model.Fighter
	Foes   []*model.Fighter

	// Provider answers decision prompts. Nil means threatened allies
	// always keep fighting.
	Provider DecisionProvider

	// DecisionTimeout bounds each prompt; zero means DefaultDecisionTimeout.
	DecisionTimeout time.Duration

	// ResolveSkill rolls ally technique damage. Required when any ally
	// carries an active technique.
	ResolveSkill SkillResolver

	// Resistance blunts elemental foe techniques. Nil means no fighter
	// has a matching attunement.
	Resistance ResistFn

	// OnSkillUse fires after an ally lands a technique, before the next
	// action. Proficiency bookkeeping hangs off this hook.
	OnSkillUse func(attacker *model.Fighter, skill *model.Skill)

	// Sink receives every log event as it is recorded. A sink error is
	// logged and swallowed; the battle result never depends on it.
	Sink func(Event) error
}

// Session drives one battle to its terminal report. All state is owned by
// the running goroutine; the only suspension point is the decision prompt.
type Session struct {
	id     string
	mode   Mode
	allies []*model.Fighter
	foes   []*model.Fighter

	provider        DecisionProvider
	decisionTimeout time.Duration
	resolveSkill    SkillResolver
	resistance      ResistFn
	onSkillUse      func(*model.Fighter, *model.Skill)
	sink            func(Event) error

	round       int
	events      []Event
	escaped     bool
	surrendered bool
	canceled    bool

	duelPrompted  map[string]promptState
	groupPrompted map[string]promptState
}

// NewSession validates the setup and builds a ready-to-run session. A
// session that fails validation leaves no partial state behind.
func NewSession(cfg Config) (*Session, error) {
	if len(cfg.Allies) == 0 {
		return nil, ErrNoAllies
	}
	if len(cfg.Foes) == 0 {
		return nil, ErrNoFoes
	}
	if cfg.Mode == ModeDuel && (len(cfg.Allies) != 1 || len(cfg.Foes) != 1) {
		return nil, ErrDuelShape
	}

	seen := make(map[string]struct{}, len(cfg.Allies)+len(cfg.Foes))
	for _, f := range append(append([]*model.Fighter{}, cfg.Allies...), cfg.Foes...) {
		if _, dup := seen[f.ID()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFighter, f.ID())
		}
		seen[f.ID()] = struct{}{}
	}

	if cfg.ResolveSkill == nil {
		for _, f := range cfg.Allies {
			if len(f.Skills()) > 0 {
				return nil, fmt.Errorf("%w: %s", ErrNilResolver, f.ID())
			}
		}
	}

	s := &Session{
		id:              cfg.ID,
		mode:            cfg.Mode,
		allies:          cfg.Allies,
		foes:            cfg.Foes,
		provider:        cfg.Provider,
		decisionTimeout: cfg.DecisionTimeout,
		resolveSkill:    cfg.ResolveSkill,
		resistance:      cfg.Resistance,
		onSkillUse:      cfg.OnSkillUse,
		sink:            cfg.Sink,
		duelPrompted:    make(map[string]promptState),
		groupPrompted:   make(map[string]promptState),
	}
	if s.provider == nil {
		s.provider = keepFightingProvider{}
	}
	if s.decisionTimeout <= 0 {
		s.decisionTimeout = DefaultDecisionTimeout
	}
	return s, nil
}

// keepFightingProvider answers every prompt with "keep fighting".
type keepFightingProvider struct{}

func (keepFightingProvider) Request(context.Context, DecisionRequest) (Decision, error) {
	return DecisionKeepFighting, nil
}

// Run plays the battle round by round until one side falls, a decision
// ends it, or ctx is canceled. On cancellation it returns the best-effort
// report alongside the context error; the report covers everything that
// resolved before the stop.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	slog.Info("battle starts",
		"session", s.id,
		"mode", s.mode.String(),
		"allies", len(s.allies),
		"foes", len(s.foes))

	for s.anyActive(s.allies) && s.anyActive(s.foes) && !s.escaped && !s.surrendered {
		if ctx.Err() != nil {
			s.canceled = true
			break
		}

		s.round++
		s.record(Event{Round: s.round, Kind: EventRound})

		terminated := s.runRound(ctx)
		if terminated || s.canceled {
			break
		}

		s.applyPassiveHealing()
	}

	report := s.buildReport()
	slog.Info("battle ends",
		"session", s.id,
		"rounds", report.Rounds,
		"victory", report.Victory,
		"escaped", report.Escaped,
		"surrendered", report.Surrendered,
		"canceled", report.Canceled)

	if s.canceled {
		return report, ctx.Err()
	}
	return report, nil
}

// applyPassiveHealing ticks every recovery technique whose interval
// divides the current round, on both sides, skipping downed fighters.
// Heals clamp at the pool maximum; a heal into a full pool logs nothing.
func (s *Session) applyPassiveHealing() {
	for _, f := range append(append([]*model.Fighter{}, s.allies...), s.foes...) {
		if f.IsDown() {
			continue
		}
		for _, h := range f.Heals() {
			if !h.AppliesOnRound(s.round) {
				continue
			}
			healed := f.Restore(h.Pool, h.Amount)
			if healed <= 0 {
				continue
			}
			s.record(Event{
				Round:  s.round,
				Kind:   EventHeal,
				Actor:  f.Name(),
				Amount: healed,
				Pool:   h.Pool.String(),
			})
		}
	}
}

func (s *Session) anyActive(side []*model.Fighter) bool {
	for _, f := range side {
		if !f.IsDown() {
			return true
		}
	}
	return false
}

// record appends an event to the log and forwards it to the sink.
func (s *Session) record(e Event) {
	s.events = append(s.events, e)
	if s.sink == nil {
		return
	}
	if err := s.sink(e); err != nil {
		slog.Warn("battle log sink failed", "session", s.id, "err", err)
	}
}

func (s *Session) buildReport() *Report {
	r := &Report{
		SessionID:   s.id,
		Mode:        s.mode.String(),
		Rounds:      s.round,
		Victory:     s.anyActive(s.allies) && !s.anyActive(s.foes),
		Escaped:     s.escaped,
		Surrendered: s.surrendered,
		Canceled:    s.canceled,
		Events:      s.events,
		Allies:      make([]model.FighterView, 0, len(s.allies)),
		Foes:        make([]model.FighterView, 0, len(s.foes)),
	}
	for _, f := range s.allies {
		r.Allies = append(r.Allies, f.View())
	}
	for _, f := range s.foes {
		r.Foes = append(r.Foes, f.View())
	}
	return r
}
