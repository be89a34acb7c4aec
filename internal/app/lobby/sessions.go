package lobby

import (
	"context"
	"time"

	"skirmish/internal/app/match"
	"skirmish/internal/app/ports"
	"skirmish/internal/domain/game"

	"go.uber.org/zap"
)

const sessionWriteTimeout = 5 * time.Second

// sessionListener mirrors a match's suspensions into the participant session store.
type sessionListener struct {
	matchID string
	repo    ports.ParticipantSessionRepository
	tx      ports.TxManager
	now     func() time.Time
	logger  *zap.Logger
}

func (s sessionListener) OnSuspended(p *game.Player) {
	s.write("mark suspended", func(ctx context.Context) error {
		return s.repo.MarkSuspended(ctx, s.matchID, p.Name, s.now())
	})
}

func (s sessionListener) OnResumed(p *game.Player) {
	s.write("mark resumed", func(ctx context.Context) error {
		return s.repo.MarkResumed(ctx, s.matchID, p.Name, s.now())
	})
}

func (s sessionListener) open(names []string) {
	s.write("ensure active", func(txCtx context.Context) error {
		for _, name := range names {
			if err := s.repo.EnsureActive(txCtx, s.matchID, name, s.now()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s sessionListener) close(res match.Result) {
	s.write("close", func(ctx context.Context) error {
		return s.repo.Close(ctx, s.matchID, s.now())
	})
	s.logger.Info("sessions closed", zap.String("winner", res.Winner), zap.String("reason", string(res.Reason)))
}

// write runs fn in a transaction on its own bounded context. Failures are only logged.
func (s sessionListener) write(op string, fn func(ctx context.Context) error) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionWriteTimeout)
	defer cancel()

	var err error
	if s.tx != nil {
		err = s.tx.RunInTx(ctx, fn)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		s.logger.Warn("session write failed", zap.String("op", op), zap.Error(err))
	}
}
