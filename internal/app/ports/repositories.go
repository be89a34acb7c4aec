package ports

import (
	"context"
	"time"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSuspended SessionStatus = "suspended"
	SessionClosed    SessionStatus = "closed"
)

type ParticipantSession struct {
	MatchID     string
	Nickname    string
	Status      SessionStatus
	Suspensions int
	StartedAt   time.Time
	UpdatedAt   time.Time
	EndedAt     *time.Time
}

// ParticipantSessionRepository records the connection lifecycle of every seat.
// EnsureActive is idempotent; the Mark calls and Close leave closed sessions untouched.
type ParticipantSessionRepository interface {
	EnsureActive(ctx context.Context, matchID, nickname string, at time.Time) error
	MarkSuspended(ctx context.Context, matchID, nickname string, at time.Time) error
	MarkResumed(ctx context.Context, matchID, nickname string, at time.Time) error
	Close(ctx context.Context, matchID string, at time.Time) error
	ListByMatch(ctx context.Context, matchID string) ([]ParticipantSession, error)
}
