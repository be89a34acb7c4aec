// Package static holds the built-in card set used to seed a catalog store.
package static

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
)

//go:embed cards.json
var cardsJSON []byte

type entry struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type cardSet struct {
	Effects  []entry `json:"effects"`
	Weapons  []entry `json:"weapons"`
	Powerups []entry `json:"powerups"`
	Ammo     []entry `json:"ammo"`
}

// Definitions decodes the built-in set. Effects come first so a store can be seeded in order.
func Definitions() ([]game.Definition, error) {
	var set cardSet
	if err := json.Unmarshal(cardsJSON, &set); err != nil {
		return nil, fmt.Errorf("decode built-in cards: %w", err)
	}
	var out []game.Definition
	for _, group := range []struct {
		kind    game.DefinitionKind
		entries []entry
	}{
		{game.DefinitionEffect, set.Effects},
		{game.DefinitionWeapon, set.Weapons},
		{game.DefinitionPowerup, set.Powerups},
		{game.DefinitionAmmo, set.Ammo},
	} {
		for _, e := range group.entries {
			d, err := game.DecodeDefinition(e.ID, group.kind, e.Payload)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Seed writes the built-in set into w.
func Seed(ctx context.Context, w ports.CatalogWriter) (int, error) {
	defs, err := Definitions()
	if err != nil {
		return 0, err
	}
	if err := w.Upsert(ctx, defs); err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(defs), nil
}
