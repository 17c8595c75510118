package impl

import (
	"context"
	"log/slog"
	"time"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
)

// sessionLoader reads sessions and enforces the idle TTL.
type sessionLoader struct {
	repo   repository.SessionRepository
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// load returns the user's session, or an idle one when none exists. An
// expired session is removed and reported as ErrSessionExpired.
func (l *sessionLoader) load(ctx context.Context, userID int64) (entity.Session, error) {
	sess, err := l.repo.GetSession(ctx, userID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return entity.Session{UserID: userID}, nil
	}
	if err != nil {
		return entity.Session{}, domainerrors.NewStorageError(err, "get session")
	}

	if sess.IsExpired(l.ttl, l.now()) {
		l.drop(ctx, userID)

		return entity.Session{UserID: userID}, domainerrors.ErrSessionExpired
	}

	return *sess, nil
}

func (l *sessionLoader) save(ctx context.Context, sess entity.Session) error {
	sess.UpdatedAt = l.now()
	if err := l.repo.SaveSession(ctx, &sess); err != nil {
		return domainerrors.NewStorageError(err, "save session")
	}

	return nil
}

// drop deletes the session; failures are only logged since a stale
// session is overwritten by the next flow.
func (l *sessionLoader) drop(ctx context.Context, userID int64) {
	if err := l.repo.DeleteSession(ctx, userID); err != nil {
		l.logger.Warn("Failed to delete session", slog.Int64("userID", userID), slog.Any("error", err))
	}
}
