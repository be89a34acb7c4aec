package game

type Cube string

const (
	CubeRed    Cube = "RED"
	CubeBlue   Cube = "BLUE"
	CubeYellow Cube = "YELLOW"
	// CubeAny only appears in costs; any held color pays for it.
	CubeAny Cube = "ANY"
)

const MaxCubesPerColor = 3

var cubeColors = []Cube{CubeRed, CubeBlue, CubeYellow}

func (c Cube) Valid() bool {
	switch c {
	case CubeRed, CubeBlue, CubeYellow, CubeAny:
		return true
	default:
		return false
	}
}

// Ammo is a held cube pool keyed by color.
type Ammo map[Cube]int

func NewAmmo(red, blue, yellow int) Ammo {
	return Ammo{CubeRed: red, CubeBlue: blue, CubeYellow: yellow}
}

func (a Ammo) Clone() Ammo {
	out := make(Ammo, len(cubeColors))
	for _, c := range cubeColors {
		out[c] = a[c]
	}
	return out
}

// Add puts cubes into the pool. ANY entries and cubes above the per-color cap are dropped.
func (a Ammo) Add(cubes []Cube) {
	for _, c := range cubes {
		if c == CubeAny || !c.Valid() {
			continue
		}
		if a[c] < MaxCubesPerColor {
			a[c]++
		}
	}
}

func (a Ammo) Total() int {
	n := 0
	for _, c := range cubeColors {
		n += a[c]
	}
	return n
}

// Debit returns the pool left after paying cost. Specific colors are charged first,
// then each ANY entry takes from the color with the most cubes left.
// The receiver is never modified.
func (a Ammo) Debit(cost []Cube) (Ammo, bool) {
	out := a.Clone()
	anyCount := 0
	for _, c := range cost {
		if c == CubeAny {
			anyCount++
			continue
		}
		if out[c] == 0 {
			return a, false
		}
		out[c]--
	}
	for ; anyCount > 0; anyCount-- {
		var best Cube
		for _, c := range cubeColors {
			if out[c] > 0 && (best == "" || out[c] > out[best]) {
				best = c
			}
		}
		if best == "" {
			return a, false
		}
		out[best]--
	}
	return out, true
}

func (a Ammo) Covers(cost []Cube) bool {
	_, ok := a.Debit(cost)
	return ok
}

// BuyCost is what acquiring a weapon charges: its first cube comes pre-paid.
func BuyCost(cost []Cube) []Cube {
	if len(cost) <= 1 {
		return nil
	}
	return append([]Cube(nil), cost[1:]...)
}

// substitute removes one cube of color (or, failing that, one ANY entry) from cost.
func substitute(cost []Cube, color Cube) ([]Cube, bool) {
	idx := -1
	for i, c := range cost {
		if c == color {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, c := range cost {
			if c == CubeAny {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return cost, false
	}
	out := make([]Cube, 0, len(cost)-1)
	out = append(out, cost[:idx]...)
	return append(out, cost[idx+1:]...), true
}
