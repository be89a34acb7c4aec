package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidDefinition = errors.New("invalid definition")

type DefinitionKind string

const (
	DefinitionWeapon  DefinitionKind = "weapon"
	DefinitionPowerup DefinitionKind = "powerup"
	DefinitionAmmo    DefinitionKind = "ammo"
	DefinitionEffect  DefinitionKind = "effect"
)

type EffectKind string

const (
	EffectDamage     EffectKind = "damage"
	EffectMark       EffectKind = "mark"
	EffectMoveSelf   EffectKind = "move_self"
	EffectMoveTarget EffectKind = "move_target"
	EffectScript     EffectKind = "script"
)

type WeaponSpec struct {
	Name       string     `json:"name"`
	Cost       []Cube     `json:"cost"`
	FixedOrder bool       `json:"fixed_order"`
	Sequences  [][]string `json:"sequences"`
}

type PowerupSpec struct {
	Name   string        `json:"name"`
	Color  Cube          `json:"color"`
	Effect string        `json:"effect"`
	Timing PowerupTiming `json:"timing"`
}

type AmmoSpec struct {
	Cubes   []Cube `json:"cubes"`
	Powerup bool   `json:"powerup"`
}

// EffectSpec describes one effect step. Which fields matter depends on Kind.
type EffectSpec struct {
	Kind   EffectKind `json:"kind"`
	Name   string     `json:"name"`
	Amount int        `json:"amount,omitempty"`
	// Marks are added on top of damage for EffectDamage.
	Marks      int  `json:"marks,omitempty"`
	MaxTargets int  `json:"max_targets,omitempty"`
	Range      int  `json:"range,omitempty"`
	AnySquare  bool `json:"any_square,omitempty"`
	// Retarget allows picking participants already targeted this turn.
	Retarget bool `json:"retarget,omitempty"`
	// OnlyTargeted restricts candidates to participants already targeted this turn.
	OnlyTargeted bool   `json:"only_targeted,omitempty"`
	Cost         []Cube `json:"cost,omitempty"`
	Script       string `json:"script,omitempty"`
}

// Definition is a static catalog entry. Exactly one payload matches Kind.
type Definition struct {
	ID      string
	Kind    DefinitionKind
	Weapon  *WeaponSpec
	Powerup *PowerupSpec
	Ammo    *AmmoSpec
	Effect  *EffectSpec
}

func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	switch d.Kind {
	case DefinitionWeapon:
		if d.Weapon == nil || len(d.Weapon.Sequences) == 0 {
			return fmt.Errorf("%w: weapon %s has no sequences", ErrInvalidDefinition, d.ID)
		}
		if err := validateCubes(d.Weapon.Cost); err != nil {
			return fmt.Errorf("%w: weapon %s: %v", ErrInvalidDefinition, d.ID, err)
		}
		for _, seq := range d.Weapon.Sequences {
			if len(seq) == 0 {
				return fmt.Errorf("%w: weapon %s has an empty sequence", ErrInvalidDefinition, d.ID)
			}
		}
	case DefinitionPowerup:
		if d.Powerup == nil || d.Powerup.Effect == "" {
			return fmt.Errorf("%w: powerup %s has no effect", ErrInvalidDefinition, d.ID)
		}
		if d.Powerup.Color == CubeAny || !d.Powerup.Color.Valid() {
			return fmt.Errorf("%w: powerup %s color %q", ErrInvalidDefinition, d.ID, d.Powerup.Color)
		}
	case DefinitionAmmo:
		if d.Ammo == nil || len(d.Ammo.Cubes) == 0 {
			return fmt.Errorf("%w: ammo tile %s has no cubes", ErrInvalidDefinition, d.ID)
		}
		if err := validateCubes(d.Ammo.Cubes); err != nil {
			return fmt.Errorf("%w: ammo tile %s: %v", ErrInvalidDefinition, d.ID, err)
		}
	case DefinitionEffect:
		if d.Effect == nil {
			return fmt.Errorf("%w: effect %s has no payload", ErrInvalidDefinition, d.ID)
		}
		switch d.Effect.Kind {
		case EffectDamage, EffectMark, EffectMoveSelf, EffectMoveTarget:
		case EffectScript:
			if d.Effect.Script == "" {
				return fmt.Errorf("%w: script effect %s has no source", ErrInvalidDefinition, d.ID)
			}
		default:
			return fmt.Errorf("%w: effect %s kind %q", ErrInvalidDefinition, d.ID, d.Effect.Kind)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidDefinition, d.Kind)
	}
	return nil
}

func validateCubes(cubes []Cube) error {
	for _, c := range cubes {
		if !c.Valid() {
			return fmt.Errorf("unknown cube %q", c)
		}
	}
	return nil
}

func (d Definition) WeaponCard() (WeaponCard, error) {
	if d.Kind != DefinitionWeapon || d.Weapon == nil {
		return WeaponCard{}, fmt.Errorf("%w: %s is not a weapon", ErrInvalidDefinition, d.ID)
	}
	seqs := make([][]string, 0, len(d.Weapon.Sequences))
	for _, s := range d.Weapon.Sequences {
		seqs = append(seqs, append([]string(nil), s...))
	}
	return WeaponCard{
		ID:         d.ID,
		Name:       d.Weapon.Name,
		Cost:       append([]Cube(nil), d.Weapon.Cost...),
		FixedOrder: d.Weapon.FixedOrder,
		Sequences:  seqs,
		Loaded:     true,
	}, nil
}

func (d Definition) PowerupCard() (PowerupCard, error) {
	if d.Kind != DefinitionPowerup || d.Powerup == nil {
		return PowerupCard{}, fmt.Errorf("%w: %s is not a powerup", ErrInvalidDefinition, d.ID)
	}
	return PowerupCard{
		ID:     d.ID,
		Name:   d.Powerup.Name,
		Color:  d.Powerup.Color,
		Effect: d.Powerup.Effect,
		Timing: d.Powerup.Timing,
	}, nil
}

func (d Definition) AmmoTile() (AmmoTile, error) {
	if d.Kind != DefinitionAmmo || d.Ammo == nil {
		return AmmoTile{}, fmt.Errorf("%w: %s is not an ammo tile", ErrInvalidDefinition, d.ID)
	}
	return AmmoTile{
		ID:      d.ID,
		Cubes:   append([]Cube(nil), d.Ammo.Cubes...),
		Powerup: d.Ammo.Powerup,
	}, nil
}

// Payload encodes the variant matching Kind as JSON.
func (d Definition) Payload() ([]byte, error) {
	var v any
	switch d.Kind {
	case DefinitionWeapon:
		v = d.Weapon
	case DefinitionPowerup:
		v = d.Powerup
	case DefinitionAmmo:
		v = d.Ammo
	case DefinitionEffect:
		v = d.Effect
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidDefinition, d.Kind)
	}
	return json.Marshal(v)
}

// DecodeDefinition rebuilds a definition from its Payload encoding and validates it.
func DecodeDefinition(id string, kind DefinitionKind, payload []byte) (Definition, error) {
	d := Definition{ID: id, Kind: kind}
	var target any
	switch kind {
	case DefinitionWeapon:
		d.Weapon = &WeaponSpec{}
		target = d.Weapon
	case DefinitionPowerup:
		d.Powerup = &PowerupSpec{}
		target = d.Powerup
	case DefinitionAmmo:
		d.Ammo = &AmmoSpec{}
		target = d.Ammo
	case DefinitionEffect:
		d.Effect = &EffectSpec{}
		target = d.Effect
	default:
		return Definition{}, fmt.Errorf("%w: kind %q", ErrInvalidDefinition, kind)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return Definition{}, fmt.Errorf("%w: %s payload: %v", ErrInvalidDefinition, id, err)
	}
	if err := d.Validate(); err != nil {
		return Definition{}, err
	}
	return d, nil
}
