package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"TimerBot/internal/lib/sl"
)

var ErrDetachedStep = errors.New("step is not the tail of a chain")

// SessionStore keeps at most one step chain per user.
type SessionStore struct {
	storage ChainStorage
	log     *slog.Logger
}

func NewSessionStore(storage ChainStorage, log *slog.Logger) *SessionStore {
	return &SessionStore{
		storage: storage,
		log:     log.With(sl.Module("chat.sessions")),
	}
}

// CreateStep starts a chain for the user, or advances the existing one by a
// step whose parent is the current tail, and stores it as current.
func (s *SessionStore) CreateStep(ctx context.Context, userID string, options Options, action Action) (*Step, error) {
	chain, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		chain = NewChain(userID)
	}

	step, err := chain.push(options, action)
	if err != nil {
		return nil, err
	}

	if err = s.storage.Save(ctx, chain); err != nil {
		return nil, fmt.Errorf("saving chain: %w", err)
	}

	s.log.Debug("step created",
		slog.String("user_id", userID),
		slog.String("action", string(action)),
		slog.Int("ordinal", step.Ordinal),
	)
	return step, nil
}

// Current returns the tail step of the user's chain, or nil.
func (s *SessionStore) Current(ctx context.Context, userID string) (*Step, error) {
	chain, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return chain.Tail(), nil
}

// Commit persists the chain owning step, including params added after creation.
func (s *SessionStore) Commit(ctx context.Context, step *Step) error {
	if step == nil || step.chain == nil || step.chain.Tail() != step {
		return ErrDetachedStep
	}
	if err := s.storage.Save(ctx, step.chain); err != nil {
		return fmt.Errorf("saving chain: %w", err)
	}
	return nil
}

// Clear removes any chain of the user. Clearing twice is harmless.
func (s *SessionStore) Clear(ctx context.Context, userID string) error {
	if err := s.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting chain: %w", err)
	}
	s.log.Debug("session cleared", slog.String("user_id", userID))
	return nil
}

func (s *SessionStore) load(ctx context.Context, userID string) (*Chain, error) {
	chain, err := s.storage.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}
	if chain == nil {
		return nil, nil
	}

	if err = chain.Bind(); err != nil {
		// a broken chain cannot be resumed; the user starts over
		s.log.With(
			slog.String("user_id", userID),
			sl.Err(err),
		).Warn("dropping session")
		if err = s.storage.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("deleting chain: %w", err)
		}
		return nil, nil
	}
	return chain, nil
}

// MemoryStorage keeps chains in process memory. A positive ttl expires
// chains that were not saved for that long.
type MemoryStorage struct {
	mu     sync.Mutex
	chains map[string]*Chain
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		chains: make(map[string]*Chain),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *MemoryStorage) Save(_ context.Context, chain *Chain) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain.UpdatedAt = m.now()
	m.chains[chain.UserID] = chain
	return nil
}

func (m *MemoryStorage) Load(_ context.Context, userID string) (*Chain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain, ok := m.chains[userID]
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().Sub(chain.UpdatedAt) > m.ttl {
		delete(m.chains, userID)
		return nil, nil
	}
	return chain, nil
}

func (m *MemoryStorage) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.chains, userID)
	return nil
}

// ChainRepository is implemented by the database backends.
type ChainRepository interface {
	SaveChain(ctx context.Context, chain *Chain) error
	LoadChain(ctx context.Context, userID string) (*Chain, error)
	DeleteChain(ctx context.Context, userID string) error
}

// RepositoryStorage adapts a ChainRepository to ChainStorage.
type RepositoryStorage struct {
	repo ChainRepository
}

func NewRepositoryStorage(repo ChainRepository) *RepositoryStorage {
	return &RepositoryStorage{repo: repo}
}

func (s *RepositoryStorage) Save(ctx context.Context, chain *Chain) error {
	return s.repo.SaveChain(ctx, chain)
}

func (s *RepositoryStorage) Load(ctx context.Context, userID string) (*Chain, error) {
	return s.repo.LoadChain(ctx, userID)
}

func (s *RepositoryStorage) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteChain(ctx, userID)
}
