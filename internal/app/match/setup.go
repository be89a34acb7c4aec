package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"

	"github.com/google/uuid"
)

var ErrEmptyCatalog = errors.New("catalog has no playable cards")

// Setup builds a fresh match from the catalog.
type Setup struct {
	Catalog ports.Catalog
	Layout  game.Layout
	Skulls  int
	// Rand shuffles the decks; nil keeps catalog order.
	Rand  *rand.Rand
	NewID func() string
}

func (s Setup) NewMatch(ctx context.Context, names []string) (*game.Match, error) {
	decks, err := s.decks(ctx)
	if err != nil {
		return nil, err
	}
	layout := s.Layout
	if len(layout.Squares) == 0 {
		layout = game.StandardLayout()
	}
	board, err := game.NewBoard(layout, decks, s.Skulls)
	if err != nil {
		return nil, err
	}
	board.Refill()

	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return game.NewMatch(newID(), names, board)
}

func (s Setup) decks(ctx context.Context) (game.Decks, error) {
	weaponDefs, err := s.list(ctx, game.DefinitionWeapon)
	if err != nil {
		return game.Decks{}, err
	}
	powerupDefs, err := s.list(ctx, game.DefinitionPowerup)
	if err != nil {
		return game.Decks{}, err
	}
	ammoDefs, err := s.list(ctx, game.DefinitionAmmo)
	if err != nil {
		return game.Decks{}, err
	}
	if len(weaponDefs) == 0 || len(powerupDefs) == 0 || len(ammoDefs) == 0 {
		return game.Decks{}, ErrEmptyCatalog
	}

	weapons := make([]game.WeaponCard, 0, len(weaponDefs))
	for _, d := range weaponDefs {
		w, err := d.WeaponCard()
		if err != nil {
			return game.Decks{}, err
		}
		weapons = append(weapons, w)
	}
	powerups := make([]game.PowerupCard, 0, len(powerupDefs))
	for _, d := range powerupDefs {
		p, err := d.PowerupCard()
		if err != nil {
			return game.Decks{}, err
		}
		powerups = append(powerups, p)
	}
	tiles := make([]game.AmmoTile, 0, len(ammoDefs))
	for _, d := range ammoDefs {
		t, err := d.AmmoTile()
		if err != nil {
			return game.Decks{}, err
		}
		tiles = append(tiles, t)
	}

	return game.Decks{
		Ammo:     game.NewDeck(tiles, true, s.Rand),
		Powerups: game.NewDeck(powerups, true, s.Rand),
		Weapons:  game.NewDeck(weapons, false, s.Rand),
	}, nil
}

// list returns definitions sorted by id so a seeded shuffle is reproducible.
func (s Setup) list(ctx context.Context, kind game.DefinitionKind) ([]game.Definition, error) {
	defs, err := s.Catalog.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s definitions: %w", kind, err)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}
