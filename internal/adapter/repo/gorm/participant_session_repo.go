package gormrepo

import (
	"context"
	"time"

	"skirmish/internal/adapter/repo/gorm/model"
	"skirmish/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantSessionRepo struct {
	db *gorm.DB
}

func NewParticipantSessionRepo(db *gorm.DB) ParticipantSessionRepo {
	return ParticipantSessionRepo{db: db}
}

func (r ParticipantSessionRepo) EnsureActive(ctx context.Context, matchID, nickname string, at time.Time) error {
	m := model.ParticipantSession{
		MatchID:   matchID,
		Nickname:  nickname,
		Status:    string(ports.SessionActive),
		StartedAt: at,
		UpdatedAt: at,
	}
	return dbFor(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

func (r ParticipantSessionRepo) MarkSuspended(ctx context.Context, matchID, nickname string, at time.Time) error {
	return r.open(ctx, matchID).
		Where("nickname = ?", nickname).
		Updates(map[string]any{
			"status":      string(ports.SessionSuspended),
			"suspensions": gorm.Expr("suspensions + 1"),
			"updated_at":  at,
		}).Error
}

func (r ParticipantSessionRepo) MarkResumed(ctx context.Context, matchID, nickname string, at time.Time) error {
	return r.open(ctx, matchID).
		Where("nickname = ? AND status = ?", nickname, string(ports.SessionSuspended)).
		Updates(map[string]any{
			"status":     string(ports.SessionActive),
			"updated_at": at,
		}).Error
}

func (r ParticipantSessionRepo) Close(ctx context.Context, matchID string, at time.Time) error {
	return r.open(ctx, matchID).
		Updates(map[string]any{
			"status":     string(ports.SessionClosed),
			"ended_at":   at,
			"updated_at": at,
		}).Error
}

func (r ParticipantSessionRepo) ListByMatch(ctx context.Context, matchID string) ([]ports.ParticipantSession, error) {
	var rows []model.ParticipantSession
	err := dbFor(ctx, r.db).
		Where(&model.ParticipantSession{MatchID: matchID}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "nickname"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ports.ParticipantSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.ParticipantSession{
			MatchID:     row.MatchID,
			Nickname:    row.Nickname,
			Status:      ports.SessionStatus(row.Status),
			Suspensions: int(row.Suspensions),
			StartedAt:   row.StartedAt,
			UpdatedAt:   row.UpdatedAt,
			EndedAt:     row.EndedAt,
		})
	}
	return out, nil
}

// open scopes a query to the sessions of matchID that are not closed yet.
func (r ParticipantSessionRepo) open(ctx context.Context, matchID string) *gorm.DB {
	return dbFor(ctx, r.db).
		Model(&model.ParticipantSession{}).
		Where("match_id = ? AND status <> ?", matchID, string(ports.SessionClosed))
}
