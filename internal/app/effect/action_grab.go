package effect

import (
	"context"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

type grabHandler struct{}

func (grabHandler) Run(ctx context.Context, e *Engine, rc *RunContext) error {
	sq := rc.Subject.Position
	if sq == nil {
		return nil
	}
	switch sq.Kind {
	case game.SquareAmmo:
		grabTile(rc, sq)
	case game.SquareSpawn:
		e.buyWeapon(ctx, rc, sq)
	}
	return nil
}

// grabTile never asks anything.
func grabTile(rc *RunContext, sq *game.Square) {
	if sq.Tile == nil {
		return
	}
	p, board := rc.Subject, rc.Match.Board
	tile := *sq.Tile
	sq.Tile = nil

	p.Ammo.Add(tile.Cubes)
	if tile.Powerup && len(p.Powerups) < game.MaxPowerups {
		if pw, ok := board.PowerupDeck.Draw(); ok {
			p.Powerups = append(p.Powerups, pw)
		}
	}
	board.RecycleTile(tile)
	rc.publish(game.UpdateAmmo, p.Name, tile.ID)
}

// buyWeapon collects every choice first and only then touches state,
// so a failure while asking leaves the market and the buyer as they were.
func (e *Engine) buyWeapon(ctx context.Context, rc *RunContext, sq *game.Square) {
	p, board := rc.Subject, rc.Match.Board

	var offer []game.WeaponCard
	for _, w := range sq.Market.Cards {
		if p.CanAffordWithPowerups(w.Cost, true) {
			offer = append(offer, w)
		}
	}
	if len(offer) == 0 {
		e.logger.Debug("nothing affordable in market", zap.String("player", p.Name), zap.String("square", sq.ID))
		return
	}

	idx, ok := e.ask(ctx, p, protocol.KindWeaponToBuy, game.WeaponOptions(offer))
	if !ok {
		return
	}
	choice := offer[idx]

	var discardID string
	if len(p.Weapons) >= game.MaxWeapons {
		di, ok := e.ask(ctx, p, protocol.KindWeaponToDiscard, game.WeaponOptions(p.Weapons))
		if !ok {
			return
		}
		discardID = p.Weapons[di].ID
	}

	var powerupID string
	if !p.CanAfford(choice.Cost, true) {
		payable := p.PayablePowerups(choice.Cost, true)
		pi, ok := e.ask(ctx, p, protocol.KindPowerupForPay, game.PowerupOptions(payable))
		if !ok {
			return
		}
		powerupID = payable[pi].ID
	}

	if _, found := sq.Market.Find(choice.ID); !found {
		e.logger.Warn("weapon missing from market", zap.String("weapon", choice.ID), zap.String("square", sq.ID))
		return
	}
	spent, err := p.Pay(choice.Cost, true, powerupID)
	if err != nil {
		e.logger.Warn("weapon payment rejected", zap.String("player", p.Name), zap.String("weapon", choice.ID), zap.Error(err))
		return
	}
	bought, _ := sq.Market.Take(choice.ID)
	if discardID != "" {
		if old, ok := p.RemoveWeapon(discardID); ok {
			sq.Market.Put(old)
		}
	}
	bought.Loaded = true
	p.Weapons = append(p.Weapons, bought)
	if spent != nil {
		board.PowerupDeck.Discard(*spent)
	}
	rc.publish(game.UpdateWeapons, p.Name, bought.ID)
}
