package game

type WeaponCard struct {
	ID         string
	Name       string
	Cost       []Cube
	FixedOrder bool
	// Sequences holds effect ids. With FixedOrder unset only the first id of each entry counts.
	Sequences [][]string
	Loaded    bool
}

type PowerupTiming string

const (
	TimingAction    PowerupTiming = "action"
	TimingDealing   PowerupTiming = "dealing"
	TimingReceiving PowerupTiming = "receiving"
)

type PowerupCard struct {
	ID     string
	Name   string
	Color  Cube
	Effect string
	Timing PowerupTiming
}

type AmmoTile struct {
	ID    string
	Cubes []Cube
	// Powerup grants a reactive card draw on pickup.
	Powerup bool
}

// WeaponOptions renders weapon cards as option groups, one group per card.
func WeaponOptions(cards []WeaponCard) [][]string {
	out := make([][]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, []string{c.Name})
	}
	return out
}

// PowerupOptions renders reactive cards as option groups of name and color.
func PowerupOptions(cards []PowerupCard) [][]string {
	out := make([][]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, []string{c.Name, string(c.Color)})
	}
	return out
}
