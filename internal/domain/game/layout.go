package game

type SquareLayout struct {
	ID   string
	Room string
	X, Y int
	// Spawn is the spawn color; empty means an ammo square.
	Spawn Cube
	Links []string
}

type Layout struct {
	Name    string
	Squares []SquareLayout
}

// StandardLayout is the built-in three-row board with one spawn square per color.
func StandardLayout() Layout {
	return Layout{
		Name: "standard",
		Squares: []SquareLayout{
			{ID: "0-0", Room: "blue", X: 0, Y: 0, Links: []string{"0-1", "1-0"}},
			{ID: "0-1", Room: "blue", X: 1, Y: 0, Links: []string{"0-2"}},
			{ID: "0-2", Room: "blue", X: 2, Y: 0, Spawn: CubeBlue, Links: []string{"0-3", "1-2"}},
			{ID: "0-3", Room: "green", X: 3, Y: 0, Links: []string{"1-3"}},
			{ID: "1-0", Room: "red", X: 0, Y: 1, Spawn: CubeRed, Links: []string{"1-1"}},
			{ID: "1-1", Room: "red", X: 1, Y: 1, Links: []string{"1-2", "2-1"}},
			{ID: "1-2", Room: "red", X: 2, Y: 1},
			{ID: "1-3", Room: "yellow", X: 3, Y: 1, Links: []string{"2-3"}},
			{ID: "2-1", Room: "white", X: 1, Y: 2, Links: []string{"2-2"}},
			{ID: "2-2", Room: "white", X: 2, Y: 2, Links: []string{"2-3"}},
			{ID: "2-3", Room: "yellow", X: 3, Y: 2, Spawn: CubeYellow},
		},
	}
}
