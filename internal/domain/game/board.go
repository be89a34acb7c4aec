package game

import (
	"errors"
	"fmt"
)

var ErrInvalidLayout = errors.New("invalid board layout")

type Decks struct {
	Ammo     *Deck[AmmoTile]
	Powerups *Deck[PowerupCard]
	Weapons  *Deck[WeaponCard]
}

// Board is the shared world state: squares, decks and the skull track.
type Board struct {
	squares map[string]*Square
	order   []*Square

	AmmoDeck    *Deck[AmmoTile]
	PowerupDeck *Deck[PowerupCard]
	WeaponDeck  *Deck[WeaponCard]

	Skulls    int
	Killshots []string
	// Frenzy is set once the last skull is taken.
	Frenzy bool
}

func NewBoard(layout Layout, decks Decks, skulls int) (*Board, error) {
	if len(layout.Squares) == 0 {
		return nil, fmt.Errorf("%w: no squares", ErrInvalidLayout)
	}
	b := &Board{
		squares:     make(map[string]*Square, len(layout.Squares)),
		AmmoDeck:    decks.Ammo,
		PowerupDeck: decks.Powerups,
		WeaponDeck:  decks.Weapons,
		Skulls:      skulls,
	}
	if b.AmmoDeck == nil {
		b.AmmoDeck = NewDeck[AmmoTile](nil, true, nil)
	}
	if b.PowerupDeck == nil {
		b.PowerupDeck = NewDeck[PowerupCard](nil, true, nil)
	}
	if b.WeaponDeck == nil {
		b.WeaponDeck = NewDeck[WeaponCard](nil, false, nil)
	}

	for _, sl := range layout.Squares {
		if _, dup := b.squares[sl.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate square %s", ErrInvalidLayout, sl.ID)
		}
		sq := &Square{ID: sl.ID, Room: sl.Room, X: sl.X, Y: sl.Y, Kind: SquareAmmo}
		if sl.Spawn != "" {
			if sl.Spawn == CubeAny || !sl.Spawn.Valid() {
				return nil, fmt.Errorf("%w: square %s spawn color %q", ErrInvalidLayout, sl.ID, sl.Spawn)
			}
			sq.Kind = SquareSpawn
			sq.SpawnColor = sl.Spawn
			sq.Market = &Market{}
		}
		b.squares[sq.ID] = sq
		b.order = append(b.order, sq)
	}
	for _, sl := range layout.Squares {
		for _, to := range sl.Links {
			other, ok := b.squares[to]
			if !ok {
				return nil, fmt.Errorf("%w: square %s links to unknown %s", ErrInvalidLayout, sl.ID, to)
			}
			link(b.squares[sl.ID], other)
		}
	}
	return b, nil
}

func link(a, b *Square) {
	if a == b || hasLink(a, b.ID) {
		return
	}
	a.Links = append(a.Links, b.ID)
	b.Links = append(b.Links, a.ID)
}

func hasLink(sq *Square, id string) bool {
	for _, l := range sq.Links {
		if l == id {
			return true
		}
	}
	return false
}

func (b *Board) Square(id string) (*Square, bool) {
	sq, ok := b.squares[id]
	return sq, ok
}

func (b *Board) Squares() []*Square {
	return append([]*Square(nil), b.order...)
}

// Reachable lists the squares at 1..maxSteps moves from, in board order.
func (b *Board) Reachable(from *Square, maxSteps int) []*Square {
	if from == nil || maxSteps <= 0 {
		return nil
	}
	dist := map[string]int{from.ID: 0}
	queue := []*Square{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur.ID] == maxSteps {
			continue
		}
		for _, id := range cur.Links {
			if _, seen := dist[id]; seen {
				continue
			}
			dist[id] = dist[cur.ID] + 1
			queue = append(queue, b.squares[id])
		}
	}
	out := make([]*Square, 0, len(dist))
	for _, sq := range b.order {
		if _, ok := dist[sq.ID]; ok && sq.ID != from.ID {
			out = append(out, sq)
		}
	}
	return out
}

// CanSee reports whether to is in the same room as from or in a room reached through one of from's links.
func (b *Board) CanSee(from, to *Square) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Room == to.Room {
		return true
	}
	for _, id := range from.Links {
		if b.squares[id].Room == to.Room {
			return true
		}
	}
	return false
}

func (b *Board) SpawnFor(color Cube) (*Square, bool) {
	for _, sq := range b.order {
		if sq.Kind == SquareSpawn && sq.SpawnColor == color {
			return sq, true
		}
	}
	return nil, false
}

// Refill lays a tile on every empty ammo square and restocks markets.
func (b *Board) Refill() {
	for _, sq := range b.order {
		switch sq.Kind {
		case SquareAmmo:
			if sq.Tile != nil {
				continue
			}
			if tile, ok := b.AmmoDeck.Draw(); ok {
				sq.Tile = &tile
			}
		case SquareSpawn:
			for len(sq.Market.Cards) < MarketSize {
				w, ok := b.WeaponDeck.Draw()
				if !ok {
					break
				}
				w.Loaded = true
				sq.Market.Put(w)
			}
		}
	}
}

func (b *Board) RecycleTile(t AmmoTile) {
	b.AmmoDeck.Discard(t)
}

// TakeSkull records a killshot. It reports true only on the call that triggers the final frenzy.
func (b *Board) TakeSkull(killer string) bool {
	b.Killshots = append(b.Killshots, killer)
	if b.Skulls > 0 {
		b.Skulls--
	}
	if b.Skulls == 0 && !b.Frenzy {
		b.Frenzy = true
		return true
	}
	return false
}
