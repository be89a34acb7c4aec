package game

import (
	"errors"
	"fmt"
)

var ErrInvalidMatch = errors.New("invalid match")

type UpdateKind string

const (
	UpdateMoved      UpdateKind = "moved"
	UpdateAmmo       UpdateKind = "ammo"
	UpdateWeapons    UpdateKind = "weapons"
	UpdatePowerups   UpdateKind = "powerups"
	UpdateDamage     UpdateKind = "damage"
	UpdateScore      UpdateKind = "score"
	UpdateSpawned    UpdateKind = "spawned"
	UpdateBoard      UpdateKind = "board"
	UpdateSuspension UpdateKind = "suspension"
	UpdateTurn       UpdateKind = "turn"
	UpdateMatchEnd   UpdateKind = "match_end"
)

// Update describes one applied state change.
type Update struct {
	Kind   UpdateKind `json:"kind"`
	Player string     `json:"player,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

type Match struct {
	ID      string
	Players []*Player
	Board   *Board

	subscribers []func(Update)
}

func NewMatch(id string, names []string, board *Board) (*Match, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: nil board", ErrInvalidMatch)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidMatch)
	}
	m := &Match{ID: id, Board: board}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrInvalidMatch)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate player %s", ErrInvalidMatch, n)
		}
		seen[n] = struct{}{}
		m.Players = append(m.Players, NewPlayer(n))
	}
	m.Players[0].FirstPlayer = true
	return m, nil
}

func (m *Match) Player(name string) (*Player, bool) {
	for _, p := range m.Players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Others returns every player except p, in seat order.
func (m *Match) Others(p *Player) []*Player {
	out := make([]*Player, 0, len(m.Players)-1)
	for _, o := range m.Players {
		if o != p {
			out = append(out, o)
		}
	}
	return out
}

// Subscribe registers fn for every published update. Call it before the match starts running.
func (m *Match) Subscribe(fn func(Update)) {
	if fn != nil {
		m.subscribers = append(m.subscribers, fn)
	}
}

func (m *Match) Publish(u Update) {
	for _, fn := range m.subscribers {
		fn(u)
	}
}
