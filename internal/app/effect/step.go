package effect

import (
	"context"
	"strconv"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

func (e *Engine) runStep(ctx context.Context, spec game.EffectSpec, rc *RunContext) error {
	if rc.Subject.Position == nil {
		return nil
	}
	switch spec.Kind {
	case game.EffectDamage, game.EffectMark:
		e.hit(ctx, spec, rc)
	case game.EffectMoveSelf:
		e.moveSelf(ctx, spec, rc)
	case game.EffectMoveTarget:
		e.moveTarget(ctx, spec, rc)
	case game.EffectScript:
		return e.runScript(ctx, spec, rc)
	default:
		e.logger.Warn("unknown effect kind", zap.String("effect", spec.Name), zap.String("kind", string(spec.Kind)))
	}
	return nil
}

// pay charges a step's own cost. A failed payment turns the step into a no-op.
func (e *Engine) pay(spec game.EffectSpec, p *game.Player) bool {
	if len(spec.Cost) == 0 {
		return true
	}
	if _, err := p.Pay(spec.Cost, false, ""); err != nil {
		e.logger.Debug("step cost not paid", zap.String("player", p.Name), zap.String("effect", spec.Name), zap.Error(err))
		return false
	}
	return true
}

func (e *Engine) candidates(spec game.EffectSpec, rc *RunContext, needSight bool) []*game.Player {
	p, board := rc.Subject, rc.Match.Board
	var out []*game.Player
	for _, o := range rc.Match.Others(p) {
		if o.Position == nil {
			continue
		}
		if needSight && !board.CanSee(p.Position, o.Position) {
			continue
		}
		already := rc.Targeted.Has(o.Name)
		if spec.OnlyTargeted && !already {
			continue
		}
		if !spec.OnlyTargeted && !spec.Retarget && already {
			continue
		}
		out = append(out, o)
	}
	return out
}

// combinations lists every group of 1..k candidates, smaller groups first.
func combinations(players []*game.Player, k int) [][]*game.Player {
	if k < 1 {
		k = 1
	}
	if k > len(players) {
		k = len(players)
	}
	var out [][]*game.Player
	var pick func(start int, cur []*game.Player, size int)
	pick = func(start int, cur []*game.Player, size int) {
		if len(cur) == size {
			out = append(out, append([]*game.Player(nil), cur...))
			return
		}
		for i := start; i < len(players); i++ {
			pick(i+1, append(cur, players[i]), size)
		}
	}
	for size := 1; size <= k; size++ {
		pick(0, nil, size)
	}
	return out
}

func groupOptions(groups [][]*game.Player) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		labels := make([]string, 0, len(g))
		for _, p := range g {
			labels = append(labels, p.Name)
		}
		out = append(out, labels)
	}
	return out
}

func (e *Engine) hit(ctx context.Context, spec game.EffectSpec, rc *RunContext) {
	p := rc.Subject
	groups := combinations(e.candidates(spec, rc, true), spec.MaxTargets)
	gi, ok := e.ask(ctx, p, protocol.KindTarget, groupOptions(groups))
	if !ok || !e.pay(spec, p) {
		return
	}
	for _, victim := range groups[gi] {
		rc.Targeted.Add(victim.Name)
		if spec.Kind == game.EffectMark {
			victim.TakeMarks(p.Name, spec.Amount)
			rc.publish(game.UpdateDamage, victim.Name, "marked by "+p.Name)
			continue
		}
		victim.TakeDamage(p.Name, spec.Amount)
		if spec.Marks > 0 {
			victim.TakeMarks(p.Name, spec.Marks)
		}
		rc.publish(game.UpdateDamage, victim.Name, strconv.Itoa(len(victim.Damage)))
		e.offerTagback(ctx, rc, victim)
	}
}

func (e *Engine) moveSelf(ctx context.Context, spec game.EffectSpec, rc *RunContext) {
	p, board := rc.Subject, rc.Match.Board
	var dests []*game.Square
	if spec.AnySquare {
		for _, sq := range board.Squares() {
			if sq != p.Position {
				dests = append(dests, sq)
			}
		}
	} else {
		dests = board.Reachable(p.Position, spec.Range)
	}
	di, ok := e.ask(ctx, p, protocol.KindDestination, squareOptions(dests))
	if !ok || !e.pay(spec, p) {
		return
	}
	p.Position = dests[di]
	rc.publish(game.UpdateMoved, p.Name, p.Position.ID)
}

func (e *Engine) moveTarget(ctx context.Context, spec game.EffectSpec, rc *RunContext) {
	p, board := rc.Subject, rc.Match.Board
	cands := e.candidates(spec, rc, false)
	ti, ok := e.ask(ctx, p, protocol.KindTarget, groupOptions(combinations(cands, 1)))
	if !ok {
		return
	}
	target := cands[ti]
	dests := board.Reachable(target.Position, spec.Range)
	di, ok := e.ask(ctx, p, protocol.KindDestination, squareOptions(dests))
	if !ok || !e.pay(spec, p) {
		return
	}
	target.Position = dests[di]
	rc.Targeted.Add(target.Name)
	rc.publish(game.UpdateMoved, target.Name, target.Position.ID)
}

// offerTagback lets a damaged participant who sees the shooter answer with an on-receiving card.
func (e *Engine) offerTagback(ctx context.Context, rc *RunContext, victim *game.Player) {
	shooter, board := rc.Subject, rc.Match.Board
	cards := victim.PowerupsWithTiming(game.TimingReceiving)
	if len(cards) == 0 || victim.Suspended || !board.CanSee(victim.Position, shooter.Position) {
		return
	}
	options := append(game.PowerupOptions(cards), []string{protocol.DeclineLabel})
	ci, ok := e.ask(ctx, victim, protocol.KindUseTagback, options)
	if !ok || ci == len(cards) {
		return
	}
	card := cards[ci]
	marks := 1
	if spec, err := e.effectSpec(ctx, card.Effect); err == nil && spec.Kind == game.EffectMark && spec.Amount > 0 {
		marks = spec.Amount
	}
	victim.RemovePowerup(card.ID)
	board.PowerupDeck.Discard(card)
	shooter.TakeMarks(victim.Name, marks)
	rc.publish(game.UpdatePowerups, victim.Name, card.ID)
	rc.publish(game.UpdateDamage, shooter.Name, "marked by "+victim.Name)
}

// UsablePowerups lists the reactive cards subject may play on its own turn.
// On-dealing cards only count once something was targeted this turn.
func UsablePowerups(p *game.Player, targeted *Targets) []game.PowerupCard {
	var out []game.PowerupCard
	for _, pw := range p.Powerups {
		switch pw.Timing {
		case game.TimingAction:
			out = append(out, pw)
		case game.TimingDealing:
			if targeted != nil && targeted.Len() > 0 {
				out = append(out, pw)
			}
		}
	}
	return out
}

// RunPowerup discards card from subject's hand and runs its effect.
func (e *Engine) RunPowerup(ctx context.Context, card game.PowerupCard, subject *game.Player, m *game.Match, targeted *Targets) error {
	if _, ok := subject.RemovePowerup(card.ID); !ok {
		return game.ErrCardNotHeld
	}
	m.Board.PowerupDeck.Discard(card)
	m.Publish(game.Update{Kind: game.UpdatePowerups, Player: subject.Name, Detail: card.ID})
	return e.RunEffect(ctx, card.Effect, subject, m, targeted)
}
