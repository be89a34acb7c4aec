package ports

import (
	"context"

	"skirmish/internal/domain/game"
)

// Catalog resolves static card and effect definitions. Resolve returns ErrNotFound for unknown ids.
type Catalog interface {
	Resolve(ctx context.Context, id string) (game.Definition, error)
	List(ctx context.Context, kind game.DefinitionKind) ([]game.Definition, error)
}

// CatalogWriter seeds definitions into a store.
type CatalogWriter interface {
	Upsert(ctx context.Context, defs []game.Definition) error
}
