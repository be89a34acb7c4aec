package gormrepo

import (
	"context"
	"fmt"
	"time"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepo stores card and effect definitions as JSON payloads keyed by id.
type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepo {
	return CatalogRepo{db: db}
}

func (r CatalogRepo) Resolve(ctx context.Context, id string) (game.Definition, error) {
	var rows []model.CatalogDefinition
	if err := dbFor(ctx, r.db).Where(&model.CatalogDefinition{ID: id}).Limit(1).Find(&rows).Error; err != nil {
		return game.Definition{}, err
	}
	if len(rows) == 0 {
		return game.Definition{}, fmt.Errorf("definition %s: %w", id, ports.ErrNotFound)
	}
	return toDefinition(rows[0])
}

func (r CatalogRepo) List(ctx context.Context, kind game.DefinitionKind) ([]game.Definition, error) {
	var rows []model.CatalogDefinition
	err := dbFor(ctx, r.db).
		Where(&model.CatalogDefinition{Kind: string(kind)}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Definition, 0, len(rows))
	for _, row := range rows {
		d, err := toDefinition(row)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Upsert validates defs and writes them, replacing stored payloads with the same id.
func (r CatalogRepo) Upsert(ctx context.Context, defs []game.Definition) error {
	if len(defs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]model.CatalogDefinition, 0, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
		payload, err := d.Payload()
		if err != nil {
			return err
		}
		rows = append(rows, model.CatalogDefinition{ID: d.ID, Kind: string(d.Kind), Payload: payload, UpdatedAt: now})
	}
	return dbFor(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "payload", "updated_at"}),
	}).Create(&rows).Error
}

func toDefinition(row model.CatalogDefinition) (game.Definition, error) {
	return game.DecodeDefinition(row.ID, game.DefinitionKind(row.Kind), row.Payload)
}
