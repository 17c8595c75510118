package memory

import (
	"context"
	"sync"
	"time"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
)

// SessionStore keeps sessions and baskets keyed by user id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*entity.Session
	baskets  map[int64]*entity.Basket
}

var (
	_ repository.SessionRepository = (*SessionStore)(nil)
	_ repository.BasketRepository  = (*SessionStore)(nil)
)

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*entity.Session),
		baskets:  make(map[int64]*entity.Basket),
	}
}

func (s *SessionStore) GetSession(_ context.Context, userID int64) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	return sess.Clone(), nil
}

func (s *SessionStore) SaveSession(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}
	s.sessions[session.UserID] = session.Clone()

	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)

	return nil
}

func (s *SessionStore) GetBasket(_ context.Context, userID int64) (*entity.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.baskets[userID]
	if !ok {
		return entity.NewBasket(userID), nil
	}

	return b.Clone(), nil
}

func (s *SessionStore) SaveBasket(_ context.Context, basket *entity.Basket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	basket.UpdatedAt = time.Now().UTC()
	s.baskets[basket.UserID] = basket.Clone()

	return nil
}

func (s *SessionStore) DeleteBasket(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.baskets, userID)

	return nil
}
