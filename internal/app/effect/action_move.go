package effect

import (
	"context"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

const moveSteps = 3

type moveHandler struct{}

func (moveHandler) Run(ctx context.Context, e *Engine, rc *RunContext) error {
	p := rc.Subject
	dests := rc.Match.Board.Reachable(p.Position, moveSteps)
	idx, ok := e.ask(ctx, p, protocol.KindDestination, squareOptions(dests))
	if !ok {
		return nil
	}
	p.Position = dests[idx]
	rc.publish(game.UpdateMoved, p.Name, p.Position.ID)
	return nil
}
