package memory

import (
	"context"
	"sort"
	"time"

	"skirmish/internal/app/ports"
)

type ParticipantSessionRepo struct {
	store *Store
}

func NewParticipantSessionRepo(store *Store) ParticipantSessionRepo {
	return ParticipantSessionRepo{store: store}
}

func (r ParticipantSessionRepo) EnsureActive(_ context.Context, matchID, nickname string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := sessionKey{matchID: matchID, nickname: nickname}
	if _, ok := r.store.sessions[key]; ok {
		return nil
	}
	r.store.sessions[key] = ports.ParticipantSession{
		MatchID:   matchID,
		Nickname:  nickname,
		Status:    ports.SessionActive,
		StartedAt: at,
		UpdatedAt: at,
	}
	return nil
}

func (r ParticipantSessionRepo) MarkSuspended(_ context.Context, matchID, nickname string, at time.Time) error {
	r.update(sessionKey{matchID: matchID, nickname: nickname}, func(s *ports.ParticipantSession) {
		s.Status = ports.SessionSuspended
		s.Suspensions++
		s.UpdatedAt = at
	})
	return nil
}

func (r ParticipantSessionRepo) MarkResumed(_ context.Context, matchID, nickname string, at time.Time) error {
	r.update(sessionKey{matchID: matchID, nickname: nickname}, func(s *ports.ParticipantSession) {
		if s.Status != ports.SessionSuspended {
			return
		}
		s.Status = ports.SessionActive
		s.UpdatedAt = at
	})
	return nil
}

func (r ParticipantSessionRepo) Close(_ context.Context, matchID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, s := range r.store.sessions {
		if key.matchID != matchID || s.Status == ports.SessionClosed {
			continue
		}
		ended := at
		s.Status = ports.SessionClosed
		s.EndedAt = &ended
		s.UpdatedAt = at
		r.store.sessions[key] = s
	}
	return nil
}

func (r ParticipantSessionRepo) ListByMatch(_ context.Context, matchID string) ([]ports.ParticipantSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.ParticipantSession, 0)
	for key, s := range r.store.sessions {
		if key.matchID == matchID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nickname < out[j].Nickname })
	return out, nil
}

// update applies fn to an existing session that is not closed.
func (r ParticipantSessionRepo) update(key sessionKey, fn func(s *ports.ParticipantSession)) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[key]
	if !ok || s.Status == ports.SessionClosed {
		return
	}
	fn(&s)
	r.store.sessions[key] = s
}
