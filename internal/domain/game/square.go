package game

import "errors"

var ErrNotInMarket = errors.New("weapon not in market")

const MarketSize = 3

type SquareKind int

const (
	SquareAmmo SquareKind = iota
	SquareSpawn
)

func (k SquareKind) String() string {
	switch k {
	case SquareAmmo:
		return "ammo"
	case SquareSpawn:
		return "spawn"
	default:
		return "unknown"
	}
}

// Square is one board location. Tile is only used on ammo squares;
// Market and SpawnColor only on spawn squares.
type Square struct {
	ID    string
	Room  string
	X, Y  int
	Kind  SquareKind
	Links []string

	Tile *AmmoTile

	Market     *Market
	SpawnColor Cube
}

type Market struct {
	Cards []WeaponCard
}

func (m *Market) Find(id string) (WeaponCard, bool) {
	for _, c := range m.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return WeaponCard{}, false
}

func (m *Market) Take(id string) (WeaponCard, error) {
	for i, c := range m.Cards {
		if c.ID == id {
			m.Cards = append(m.Cards[:i:i], m.Cards[i+1:]...)
			return c, nil
		}
	}
	return WeaponCard{}, ErrNotInMarket
}

func (m *Market) Put(c WeaponCard) {
	m.Cards = append(m.Cards, c)
}
