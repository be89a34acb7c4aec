package turn

import (
	"context"
	"errors"

	"skirmish/internal/app/effect"
	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"

	"go.uber.org/zap"
)

var ErrNoSpawn = errors.New("no spawn square available")

type RespawnOutcome int

const (
	RespawnContinue RespawnOutcome = iota
	// RespawnFrenzy means the board is in its final frenzy.
	RespawnFrenzy
)

func (o RespawnOutcome) String() string {
	if o == RespawnFrenzy {
		return "frenzy"
	}
	return "continue"
}

const (
	InitialSpawnDraw = 2
	RespawnDraw      = 1
)

// RespawnTurn runs Draw -> Choose -> Discard -> Place for a participant with no position.
// A participant that cannot answer Choose re-enters with its first held card.
type RespawnTurn struct {
	asker  effect.Asker
	logger *zap.Logger
	match  *game.Match
	player *game.Player
	draw   int
}

func NewRespawnTurn(asker effect.Asker, m *game.Match, p *game.Player, draw int, logger *zap.Logger) *RespawnTurn {
	if logger == nil {
		logger = zap.NewNop()
	}
	if draw < 0 {
		draw = 0
	}
	return &RespawnTurn{asker: asker, logger: logger.With(zap.String("player", p.Name)), match: m, player: p, draw: draw}
}

func (t *RespawnTurn) Run(ctx context.Context) (RespawnOutcome, error) {
	p, board := t.player, t.match.Board

	for i := 0; i < t.draw; i++ {
		card, ok := board.PowerupDeck.Draw()
		if !ok {
			break
		}
		p.Powerups = append(p.Powerups, card)
	}

	var spawn *game.Square
	if len(p.Powerups) > 0 {
		card := p.Powerups[t.choose(ctx)]
		p.RemovePowerup(card.ID)
		board.PowerupDeck.Discard(card)
		spawn, _ = board.SpawnFor(card.Color)
		t.logger.Debug("re-entry card chosen", zap.String("powerup", card.ID), zap.String("color", string(card.Color)))
	}
	if spawn == nil {
		spawn = firstSpawn(board)
	}
	if spawn == nil {
		return RespawnContinue, ErrNoSpawn
	}
	p.Position = spawn
	t.match.Publish(game.Update{Kind: game.UpdateSpawned, Player: p.Name, Detail: spawn.ID})

	if board.Frenzy {
		return RespawnFrenzy, nil
	}
	return RespawnContinue, nil
}

func (t *RespawnTurn) choose(ctx context.Context) int {
	p := t.player
	if p.Suspended {
		return 0
	}
	idx, err := t.asker.Ask(ctx, p, protocol.KindSpawn, game.PowerupOptions(p.Powerups))
	if err != nil || idx < 0 || idx >= len(p.Powerups) {
		t.logger.Info("re-entry choice unavailable, using first card", zap.Error(err))
		return 0
	}
	return idx
}

func firstSpawn(board *game.Board) *game.Square {
	for _, sq := range board.Squares() {
		if sq.Kind == game.SquareSpawn {
			return sq
		}
	}
	return nil
}
