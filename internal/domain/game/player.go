package game

import "errors"

var (
	ErrUnaffordable    = errors.New("cost not affordable")
	ErrCardNotHeld     = errors.New("card not held")
	ErrPowerupUnusable = errors.New("powerup cannot pay this cost")
)

const (
	MaxWeapons         = 3
	MaxPowerups        = 3
	KillshotDamage     = 11
	OverkillDamage     = 12
	MaxMarksPerShooter = 3
)

// Player is one participant's figure. Position points into the board and is nil while awaiting a spawn.
type Player struct {
	Name        string
	Score       int
	Position    *Square
	Ammo        Ammo
	Powerups    []PowerupCard
	Weapons     []WeaponCard
	Damage      []string
	Marks       map[string]int
	Deaths      int
	Suspended   bool
	FirstPlayer bool
}

func NewPlayer(name string) *Player {
	return &Player{
		Name:  name,
		Ammo:  NewAmmo(1, 1, 1),
		Marks: map[string]int{},
	}
}

func effectiveCost(cost []Cube, buying bool) []Cube {
	if buying {
		return BuyCost(cost)
	}
	return cost
}

// CanAfford reports whether held cubes alone pay cost. Buying skips the pre-paid first cube.
func (p *Player) CanAfford(cost []Cube, buying bool) bool {
	return p.Ammo.Covers(effectiveCost(cost, buying))
}

// PayablePowerups lists held reactive cards that, spent as a cube of their color, make cost payable.
func (p *Player) PayablePowerups(cost []Cube, buying bool) []PowerupCard {
	c := effectiveCost(cost, buying)
	var out []PowerupCard
	for _, pw := range p.Powerups {
		rest, ok := substitute(c, pw.Color)
		if ok && p.Ammo.Covers(rest) {
			out = append(out, pw)
		}
	}
	return out
}

// CanAffordWithPowerups is CanAfford extended with a single reactive card substitution.
func (p *Player) CanAffordWithPowerups(cost []Cube, buying bool) bool {
	return p.CanAfford(cost, buying) || len(p.PayablePowerups(cost, buying)) > 0
}

// Pay debits cost. When powerupID is set that card is removed from hand and returned
// after covering one cube of its color. Nothing changes on error.
func (p *Player) Pay(cost []Cube, buying bool, powerupID string) (*PowerupCard, error) {
	c := effectiveCost(cost, buying)
	var spent *PowerupCard
	if powerupID != "" {
		idx := p.powerupIndex(powerupID)
		if idx < 0 {
			return nil, ErrCardNotHeld
		}
		pw := p.Powerups[idx]
		rest, ok := substitute(c, pw.Color)
		if !ok {
			return nil, ErrPowerupUnusable
		}
		c = rest
		spent = &pw
	}
	left, ok := p.Ammo.Debit(c)
	if !ok {
		return nil, ErrUnaffordable
	}
	p.Ammo = left
	if spent != nil {
		p.RemovePowerup(spent.ID)
	}
	return spent, nil
}

func (p *Player) powerupIndex(id string) int {
	for i, pw := range p.Powerups {
		if pw.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) RemovePowerup(id string) (PowerupCard, bool) {
	idx := p.powerupIndex(id)
	if idx < 0 {
		return PowerupCard{}, false
	}
	pw := p.Powerups[idx]
	p.Powerups = append(p.Powerups[:idx:idx], p.Powerups[idx+1:]...)
	return pw, true
}

func (p *Player) PowerupsWithTiming(t PowerupTiming) []PowerupCard {
	var out []PowerupCard
	for _, pw := range p.Powerups {
		if pw.Timing == t {
			out = append(out, pw)
		}
	}
	return out
}

func (p *Player) weaponIndex(id string) int {
	for i, w := range p.Weapons {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (p *Player) RemoveWeapon(id string) (WeaponCard, bool) {
	idx := p.weaponIndex(id)
	if idx < 0 {
		return WeaponCard{}, false
	}
	w := p.Weapons[idx]
	p.Weapons = append(p.Weapons[:idx:idx], p.Weapons[idx+1:]...)
	return w, true
}

func (p *Player) SetLoaded(id string, loaded bool) bool {
	idx := p.weaponIndex(id)
	if idx < 0 {
		return false
	}
	p.Weapons[idx].Loaded = loaded
	return true
}

func (p *Player) LoadedWeapons() []WeaponCard {
	var out []WeaponCard
	for _, w := range p.Weapons {
		if w.Loaded {
			out = append(out, w)
		}
	}
	return out
}

func (p *Player) UnloadedWeapons() []WeaponCard {
	var out []WeaponCard
	for _, w := range p.Weapons {
		if !w.Loaded {
			out = append(out, w)
		}
	}
	return out
}

// TakeDamage applies n damage from shooter plus any marks shooter left earlier.
// The track stops at the overkill slot.
func (p *Player) TakeDamage(shooter string, n int) {
	if n <= 0 {
		return
	}
	total := n + p.Marks[shooter]
	delete(p.Marks, shooter)
	for i := 0; i < total && len(p.Damage) < OverkillDamage; i++ {
		p.Damage = append(p.Damage, shooter)
	}
}

func (p *Player) TakeMarks(shooter string, n int) {
	if p.Marks == nil {
		p.Marks = map[string]int{}
	}
	p.Marks[shooter] += n
	if p.Marks[shooter] > MaxMarksPerShooter {
		p.Marks[shooter] = MaxMarksPerShooter
	}
}

func (p *Player) Dead() bool { return len(p.Damage) >= KillshotDamage }

func (p *Player) Overkilled() bool { return len(p.Damage) >= OverkillDamage }
