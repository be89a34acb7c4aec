package match

import (
	"context"
	"sync/atomic"

	"skirmish/internal/app/effect"
	"skirmish/internal/app/ports"
	"skirmish/internal/app/turn"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

// Prompter is the participant-facing side a runner needs.
type Prompter interface {
	effect.Asker
	Notify(ctx context.Context, p *game.Player, kind protocol.QuestionKind) error
}

// SuspensionState applies the latest reachability of p and reports whether p is suspended.
type SuspensionState interface {
	Sync(p *game.Player) bool
}

type EndReason string

const (
	EndFrenzy     EndReason = "frenzy"
	EndTooFew     EndReason = "too_few_participants"
	EndTurnLimit  EndReason = "turn_limit"
	EndAborted    EndReason = "aborted"
	EndNoPlayable EndReason = "no_playable_participant"
)

type Result struct {
	MatchID string         `json:"match_id"`
	Winner  string         `json:"winner"`
	Reason  EndReason      `json:"reason"`
	Scores  map[string]int `json:"scores"`
	Turns   int            `json:"turns"`
}

type Options struct {
	// MinActive ends the match when fewer unsuspended participants remain.
	MinActive int
	// MaxTurns caps the number of played turns; zero means no cap.
	MaxTurns int
	Metrics  ports.MatchMetrics
	Logger   *zap.Logger
}

// Runner plays one match to completion on the calling goroutine.
// Snapshot and Finished are safe to call from other goroutines.
type Runner struct {
	match    *game.Match
	engine   *effect.Engine
	prompter Prompter
	tracker  SuspensionState
	opts     Options
	logger   *zap.Logger

	turns           int
	frenzyTurnsLeft int
	snapshot        atomic.Pointer[game.Snapshot]
	result          atomic.Pointer[Result]
}

func NewRunner(m *game.Match, engine *effect.Engine, prompter Prompter, tracker SuspensionState, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MinActive < 1 {
		opts.MinActive = 1
	}
	r := &Runner{
		match:           m,
		engine:          engine,
		prompter:        prompter,
		tracker:         tracker,
		opts:            opts,
		logger:          logger.With(zap.String("match_id", m.ID)),
		frenzyTurnsLeft: -1,
	}
	r.storeSnapshot()
	return r
}

func (r *Runner) Match() *game.Match { return r.match }

// Snapshot returns the state as of the end of the last completed turn.
func (r *Runner) Snapshot() game.Snapshot { return *r.snapshot.Load() }

// Finished returns the result once the match is over.
func (r *Runner) Finished() (Result, bool) {
	res := r.result.Load()
	if res == nil {
		return Result{}, false
	}
	return *res, true
}

func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordMatchStarted()
	}
	r.logger.Info("match started", zap.Int("participants", len(r.match.Players)))

	for _, p := range r.match.Players {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, EndAborted), err
		}
		r.sync(p)
		if _, err := turn.NewRespawnTurn(r.prompter, r.match, p, turn.InitialSpawnDraw, r.logger).Run(ctx); err != nil {
			r.logger.Error("initial spawn failed", zap.String("player", p.Name), zap.Error(err))
			return r.finish(ctx, EndNoPlayable), err
		}
	}
	r.storeSnapshot()

	for {
		for _, p := range r.match.Players {
			if err := ctx.Err(); err != nil {
				return r.finish(ctx, EndAborted), err
			}
			if reason, over := r.over(); over {
				return r.finish(ctx, reason), nil
			}
			if err := r.playTurn(ctx, p); err != nil {
				return r.finish(ctx, EndNoPlayable), err
			}
		}
	}
}

// over is checked before every seat.
func (r *Runner) over() (EndReason, bool) {
	if r.frenzyTurnsLeft == 0 {
		return EndFrenzy, true
	}
	if r.opts.MaxTurns > 0 && r.turns >= r.opts.MaxTurns {
		return EndTurnLimit, true
	}
	if r.active() < r.opts.MinActive {
		return EndTooFew, true
	}
	return "", false
}

func (r *Runner) active() int {
	n := 0
	for _, p := range r.match.Players {
		if !r.sync(p) {
			n++
		}
	}
	return n
}

func (r *Runner) sync(p *game.Player) bool {
	if r.tracker == nil {
		return p.Suspended
	}
	return r.tracker.Sync(p)
}

func (r *Runner) playTurn(ctx context.Context, p *game.Player) error {
	if r.frenzyTurnsLeft > 0 {
		r.frenzyTurnsLeft--
	}
	if r.sync(p) {
		r.logger.Debug("turn skipped", zap.String("player", p.Name))
		if r.opts.Metrics != nil {
			r.opts.Metrics.RecordTurnSkipped()
		}
		return nil
	}
	if p.Position == nil {
		if _, err := turn.NewRespawnTurn(r.prompter, r.match, p, turn.RespawnDraw, r.logger).Run(ctx); err != nil {
			return err
		}
	}

	r.match.Publish(game.Update{Kind: game.UpdateTurn, Player: p.Name})
	r.logger.Debug("turn started", zap.String("player", p.Name))
	if err := turn.NewNormalTurn(r.engine, r.prompter, r.match, p, r.logger).Run(ctx); err != nil {
		return err
	}
	r.turns++
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordTurnCompleted()
	}

	r.match.Board.Refill()
	r.match.Publish(game.Update{Kind: game.UpdateBoard})

	if err := r.resolveEliminations(ctx); err != nil {
		return err
	}
	r.storeSnapshot()
	return nil
}

func (r *Runner) resolveEliminations(ctx context.Context) error {
	for _, victim := range r.match.Players {
		if !victim.Dead() {
			continue
		}
		triggered := r.match.ScoreElimination(victim)
		r.logger.Info("participant eliminated", zap.String("player", victim.Name), zap.Int("deaths", victim.Deaths))
		if triggered {
			r.frenzyTurnsLeft = len(r.match.Players)
			r.logger.Info("final frenzy triggered")
		}
		r.sync(victim)
		if _, err := turn.NewRespawnTurn(r.prompter, r.match, victim, turn.RespawnDraw, r.logger).Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, reason EndReason) Result {
	if res, done := r.Finished(); done {
		return res
	}
	winner := r.match.ScoreFinal()
	res := Result{
		MatchID: r.match.ID,
		Winner:  winner,
		Reason:  reason,
		Scores:  make(map[string]int, len(r.match.Players)),
		Turns:   r.turns,
	}
	for _, p := range r.match.Players {
		res.Scores[p.Name] = p.Score
	}
	r.match.Publish(game.Update{Kind: game.UpdateMatchEnd, Player: winner, Detail: string(reason)})

	for _, p := range r.match.Players {
		if r.sync(p) {
			continue
		}
		if err := r.prompter.Notify(ctx, p, protocol.KindQuit); err != nil {
			r.logger.Debug("quit not delivered", zap.String("player", p.Name), zap.Error(err))
		}
	}
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordMatchFinished()
	}
	r.logger.Info("match finished", zap.String("winner", winner), zap.String("reason", string(reason)), zap.Int("turns", r.turns))

	r.storeSnapshot()
	r.result.Store(&res)
	return res
}

func (r *Runner) storeSnapshot() {
	s := r.match.Snapshot()
	r.snapshot.Store(&s)
}
