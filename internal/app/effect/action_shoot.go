package effect

import (
	"context"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

type shootHandler struct{}

// Run fires one loaded weapon. The first step of the chosen chain runs right away;
// every later step is offered as its own EFFECTS_SEQUENCE decision.
func (shootHandler) Run(ctx context.Context, e *Engine, rc *RunContext) error {
	p := rc.Subject
	loaded := p.LoadedWeapons()
	wi, ok := e.ask(ctx, p, protocol.KindWeapon, game.WeaponOptions(loaded))
	if !ok {
		return nil
	}
	weapon := loaded[wi]

	chains := e.affordableChains(ctx, p, weapon)
	if len(chains) == 0 {
		e.logger.Debug("no affordable sequence", zap.String("player", p.Name), zap.String("weapon", weapon.ID))
		return nil
	}
	chain := chains[0]
	if len(chains) > 1 {
		options := make([][]string, 0, len(chains))
		for _, c := range chains {
			options = append(options, e.labels(ctx, c.Steps()))
		}
		ci, ok := e.ask(ctx, p, protocol.KindEffectsSequence, options)
		if !ok {
			return nil
		}
		chain = chains[ci]
	}

	p.SetLoaded(weapon.ID, false)
	rc.publish(game.UpdateWeapons, p.Name, weapon.ID)
	for {
		step, _ := chain.Current()
		if err := e.RunEffect(ctx, step, p, rc.Match, rc.Targeted); err != nil {
			return err
		}
		next, ok := chain.Next()
		if !ok {
			return nil
		}
		options := [][]string{e.labels(ctx, next.Remaining()), {protocol.StopLabel}}
		choice, ok := e.ask(ctx, p, protocol.KindEffectsSequence, options)
		if !ok || choice == 1 {
			return nil
		}
		chain = next
	}
}

// affordableChains keeps the chains whose summed step costs the shooter can pay with cubes.
func (e *Engine) affordableChains(ctx context.Context, p *game.Player, w game.WeaponCard) []Chain {
	var out []Chain
	for _, c := range PossibleSequences(w) {
		var total []game.Cube
		usable := true
		for _, id := range c.Steps() {
			spec, err := e.effectSpec(ctx, id)
			if err != nil {
				e.logger.Warn("weapon step unresolved", zap.String("weapon", w.ID), zap.String("effect", id), zap.Error(err))
				usable = false
				break
			}
			total = append(total, spec.Cost...)
		}
		if usable && p.CanAfford(total, false) {
			out = append(out, c)
		}
	}
	return out
}
