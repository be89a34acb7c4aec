package memory

import (
	"context"
	"fmt"
	"sort"

	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"
)

type CatalogRepo struct {
	store *Store
}

func NewCatalogRepo(store *Store) CatalogRepo {
	return CatalogRepo{store: store}
}

func (r CatalogRepo) Resolve(_ context.Context, id string) (game.Definition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	d, ok := r.store.catalog[id]
	if !ok {
		return game.Definition{}, fmt.Errorf("definition %s: %w", id, ports.ErrNotFound)
	}
	return d, nil
}

func (r CatalogRepo) List(_ context.Context, kind game.DefinitionKind) ([]game.Definition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Definition, 0)
	for _, d := range r.store.catalog {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Upsert stores validated copies of defs. Nothing is written when any definition is invalid.
func (r CatalogRepo) Upsert(_ context.Context, defs []game.Definition) error {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range defs {
		r.store.catalog[d.ID] = d
	}
	return nil
}
