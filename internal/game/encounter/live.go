package encounter

import (
	"context"
	"sync"
	"time"

	"github.com/udisondev/qiankun/internal/game/combat"
)

// liveSession is one running battle as seen from outside the engine
// goroutine. The engine never touches this struct directly: it reaches it
// through the provider and sink callbacks, which take the session lock for
// every crossing. Everything under mu is safe to read from HTTP handlers
// while the battle runs.
type liveSession struct {
	id     string
	mode   combat.Mode
	cancel context.CancelFunc

	participants []participant
	foes         []foeRef

	mu         sync.Mutex
	round      int
	events     []combat.Event
	pending    *PendingPrompt
	decision   chan combat.Decision
	report     *combat.Report
	rewards    []HeroReward
	finishedAt time.Time
}

// sink is the engine's log observer. It mirrors events under the lock so
// state snapshots can be served mid-battle. It never fails.
func (ls *liveSession) sink(e combat.Event) error {
	ls.mu.Lock()
	ls.events = append(ls.events, e)
	if e.Round > ls.round {
		ls.round = e.Round
	}
	ls.mu.Unlock()
	return nil
}

// Request implements combat.DecisionProvider. It publishes the prompt,
// then blocks the engine goroutine until a decision is submitted over
// HTTP or the engine's own deadline fires.
func (ls *liveSession) Request(ctx context.Context, req combat.DecisionRequest) (combat.Decision, error) {
	ch := make(chan combat.Decision, 1)

	ls.mu.Lock()
	ls.pending = &PendingPrompt{
		FighterID:    req.FighterID,
		FighterName:  req.FighterName,
		Mode:         req.Mode.String(),
		EscapeChance: req.EscapeChance,
	}
	ls.decision = ch
	ls.mu.Unlock()

	defer func() {
		ls.mu.Lock()
		ls.pending = nil
		ls.decision = nil
		ls.mu.Unlock()
	}()

	select {
	case d := <-ch:
		return d, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// submit resolves the pending prompt. The hero name must match the
// prompted fighter; a submission that loses the race against the engine's
// deadline reports ErrNoPendingPrompt.
func (ls *liveSession) submit(heroName string, d combat.Decision) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.pending == nil || ls.decision == nil {
		return ErrNoPendingPrompt
	}
	if ls.pending.FighterID != heroName {
		return ErrPromptOwnership
	}

	ls.decision <- d
	ls.pending = nil
	ls.decision = nil
	return nil
}

// finish records the terminal report and reward footer.
func (ls *liveSession) finish(report *combat.Report, rewards []HeroReward) {
	ls.mu.Lock()
	ls.report = report
	ls.rewards = rewards
	ls.finishedAt = time.Now()
	ls.mu.Unlock()
}

// snapshot builds a copy of the session state for the HTTP layer.
func (ls *liveSession) snapshot() *State {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	st := &State{
		ID:       ls.id,
		Mode:     ls.mode.String(),
		Round:    ls.round,
		Finished: ls.report != nil,
		Events:   append([]combat.Event(nil), ls.events...),
		Report:   ls.report,
		Rewards:  ls.rewards,
	}
	if ls.pending != nil {
		p := *ls.pending
		st.Pending = &p
	}
	return st
}

// finishedBefore reports whether the session ended and its retention
// window has passed.
func (ls *liveSession) finishedBefore(cutoff time.Time) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.report != nil && ls.finishedAt.Before(cutoff)
}
