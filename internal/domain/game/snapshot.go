package game

// Snapshot is a read-only copy of match state safe to hand to other goroutines.
type Snapshot struct {
	MatchID   string       `json:"match_id"`
	Skulls    int          `json:"skulls"`
	Frenzy    bool         `json:"frenzy"`
	Killshots []string     `json:"killshots"`
	Players   []PlayerView `json:"players"`
	Squares   []SquareView `json:"squares"`
}

type PlayerView struct {
	Name      string         `json:"name"`
	Score     int            `json:"score"`
	Square    string         `json:"square,omitempty"`
	Ammo      map[Cube]int   `json:"ammo"`
	Weapons   []WeaponView   `json:"weapons"`
	Powerups  int            `json:"powerups"`
	Damage    []string       `json:"damage"`
	Marks     map[string]int `json:"marks"`
	Deaths    int            `json:"deaths"`
	Suspended bool           `json:"suspended"`
}

type WeaponView struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
}

type SquareView struct {
	ID     string   `json:"id"`
	Room   string   `json:"room"`
	Kind   string   `json:"kind"`
	Tile   []Cube   `json:"tile,omitempty"`
	Market []string `json:"market,omitempty"`
}

func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		MatchID:   m.ID,
		Skulls:    m.Board.Skulls,
		Frenzy:    m.Board.Frenzy,
		Killshots: append([]string(nil), m.Board.Killshots...),
	}
	for _, p := range m.Players {
		v := PlayerView{
			Name:      p.Name,
			Score:     p.Score,
			Ammo:      p.Ammo.Clone(),
			Powerups:  len(p.Powerups),
			Damage:    append([]string(nil), p.Damage...),
			Marks:     make(map[string]int, len(p.Marks)),
			Deaths:    p.Deaths,
			Suspended: p.Suspended,
		}
		if p.Position != nil {
			v.Square = p.Position.ID
		}
		for _, w := range p.Weapons {
			v.Weapons = append(v.Weapons, WeaponView{Name: w.Name, Loaded: w.Loaded})
		}
		for k, n := range p.Marks {
			v.Marks[k] = n
		}
		s.Players = append(s.Players, v)
	}
	for _, sq := range m.Board.order {
		v := SquareView{ID: sq.ID, Room: sq.Room, Kind: sq.Kind.String()}
		switch sq.Kind {
		case SquareAmmo:
			if sq.Tile != nil {
				v.Tile = append([]Cube(nil), sq.Tile.Cubes...)
			}
		case SquareSpawn:
			for _, w := range sq.Market.Cards {
				v.Market = append(v.Market, w.Name)
			}
		}
		s.Squares = append(s.Squares, v)
	}
	return s
}
