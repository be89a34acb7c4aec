package turn

import (
	"context"

	"skirmish/internal/app/effect"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

// ActionsPerTurn is the number of ordinary action selections before the reload phase.
const ActionsPerTurn = 2

type Phase string

const (
	PhaseAction Phase = "action"
	PhaseReload Phase = "reload"
	PhaseDone   Phase = "done"
)

// NormalTurn drives one participant through ActionPhase(2) -> ReloadPhase -> Done.
// A new value is built for every turn.
type NormalTurn struct {
	engine *effect.Engine
	asker  effect.Asker
	logger *zap.Logger

	match  *game.Match
	player *game.Player

	phase     Phase
	remaining int
	targeted  *effect.Targets
}

func NewNormalTurn(engine *effect.Engine, asker effect.Asker, m *game.Match, p *game.Player, logger *zap.Logger) *NormalTurn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NormalTurn{
		engine:    engine,
		asker:     asker,
		logger:    logger.With(zap.String("player", p.Name)),
		match:     m,
		player:    p,
		phase:     PhaseAction,
		remaining: ActionsPerTurn,
		targeted:  effect.NewTargets(),
	}
}

func (t *NormalTurn) Phase() Phase { return t.phase }

func (t *NormalTurn) Remaining() int { return t.remaining }

func (t *NormalTurn) Targeted() *effect.Targets { return t.targeted }

// Run steps the machine until Done.
func (t *NormalTurn) Run(ctx context.Context) error {
	for t.phase != PhaseDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.Step(ctx)
	}
	return nil
}

// Step executes the current phase once and returns the phase that follows.
func (t *NormalTurn) Step(ctx context.Context) Phase {
	switch t.phase {
	case PhaseAction:
		t.actionPhase(ctx)
	case PhaseReload:
		t.reloadPhase(ctx)
	}
	return t.phase
}

func (t *NormalTurn) actionPhase(ctx context.Context) {
	p := t.player
	if p.Suspended {
		t.logger.Info("turn abandoned, participant suspended", zap.Int("remaining_actions", t.remaining))
		t.phase = PhaseDone
		return
	}

	t.askAndRunPowerup(ctx)

	actions := effect.Actions()
	idx, err := t.asker.Ask(ctx, p, protocol.KindAction, effect.ActionOptions())
	t.remaining--
	if err == nil && idx >= 0 && idx < len(actions) {
		chosen := actions[idx]
		if err := t.engine.RunEffect(ctx, string(chosen.Type), p, t.match, t.targeted); err != nil {
			t.logger.Warn("action failed", zap.String("action", string(chosen.Type)), zap.Error(err))
		}
	} else if err != nil {
		t.logger.Debug("no action chosen", zap.Error(err))
	}

	if t.remaining > 0 {
		return
	}
	t.askAndRunPowerup(ctx)
	t.phase = PhaseReload
}

func (t *NormalTurn) reloadPhase(ctx context.Context) {
	t.phase = PhaseDone
	p := t.player
	if p.Suspended {
		return
	}
	var reloadable []game.WeaponCard
	for _, w := range p.UnloadedWeapons() {
		if p.CanAfford(w.Cost, false) {
			reloadable = append(reloadable, w)
		}
	}
	if len(reloadable) == 0 {
		return
	}
	options := append(game.WeaponOptions(reloadable), []string{protocol.DeclineLabel})
	idx, err := t.asker.Ask(ctx, p, protocol.KindWeaponToReload, options)
	if err != nil || idx < 0 || idx >= len(reloadable) {
		return
	}
	w := reloadable[idx]
	if _, err := p.Pay(w.Cost, false, ""); err != nil {
		t.logger.Warn("reload payment rejected", zap.String("weapon", w.ID), zap.Error(err))
		return
	}
	p.SetLoaded(w.ID, true)
	t.match.Publish(game.Update{Kind: game.UpdateWeapons, Player: p.Name, Detail: w.ID})
}

// askAndRunPowerup offers the reactive cards usable right now. Holding none skips the question.
func (t *NormalTurn) askAndRunPowerup(ctx context.Context) {
	p := t.player
	if p.Suspended {
		return
	}
	cards := effect.UsablePowerups(p, t.targeted)
	if len(cards) == 0 {
		return
	}
	options := append(game.PowerupOptions(cards), []string{protocol.DeclineLabel})
	idx, err := t.asker.Ask(ctx, p, protocol.KindPowerup, options)
	if err != nil || idx < 0 || idx >= len(cards) {
		return
	}
	if err := t.engine.RunPowerup(ctx, cards[idx], p, t.match, t.targeted); err != nil {
		t.logger.Warn("reactive card failed", zap.String("powerup", cards[idx].ID), zap.Error(err))
	}
}
