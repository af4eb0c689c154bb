package usecase

import (
	"context"
	"errors"
	"log/slog"
)

// SweepExpired removes expired challenges and sessions from the store.
func (s *Usecase) SweepExpired(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	now := s.clock.Now()

	challenges, errC := s.repoStore.SweepChallenges(ctx, now)
	if errC != nil {
		slog.ErrorContext(ctx, "failed to sweep expired challenges", "error", errC)
	}

	sessions, errS := s.repoStore.SweepSessions(ctx, now)
	if errS != nil {
		slog.ErrorContext(ctx, "failed to sweep expired sessions", "error", errS)
	}

	if challenges > 0 || sessions > 0 {
		slog.DebugContext(ctx, "expired entries swept", "challenges", challenges, "sessions", sessions)
	}

	return errors.Join(errC, errS)
}
