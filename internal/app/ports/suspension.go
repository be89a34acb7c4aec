package ports

import "skirmish/internal/domain/game"

type SuspensionListener interface {
	OnSuspended(p *game.Player)
	OnResumed(p *game.Player)
}
