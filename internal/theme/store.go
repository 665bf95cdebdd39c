package theme

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/repository"
)

// Applier receives the effective theme whenever it changes or is restored.
// The UI shell hooks its visual mode here.
type Applier interface {
	Apply(theme domain.Theme)
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(theme domain.Theme)

func (f ApplierFunc) Apply(theme domain.Theme) { f(theme) }

type snapshot struct {
	Theme domain.Theme `json:"theme"`
}

// Store holds the persisted UI theme preference.
type Store struct {
	mu      sync.RWMutex
	current domain.Theme
	repo    repository.SnapshotRepository
	applier Applier
	logger  *zap.Logger
}

// NewStore builds a theme store defaulting to light.
func NewStore(repo repository.SnapshotRepository, applier Applier, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		current: domain.ThemeLight,
		repo:    repo,
		applier: applier,
		logger:  log,
	}
}

// Rehydrate loads the persisted preference and re-applies it. Called once
// at startup so the apply side effect runs at a deterministic point, not
// inside a constructor.
func (s *Store) Rehydrate(ctx context.Context) error {
	payload, err := s.repo.Load(ctx, repository.KeyTheme)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			s.apply(s.Theme())
			return nil
		}
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return err
	}
	if !snap.Theme.Valid() {
		snap.Theme = domain.ThemeLight
	}

	s.mu.Lock()
	s.current = snap.Theme
	s.mu.Unlock()

	s.apply(snap.Theme)
	return nil
}

// SetTheme applies and persists the preference.
func (s *Store) SetTheme(t domain.Theme) {
	if !t.Valid() {
		return
	}
	s.mu.Lock()
	s.current = t
	s.persistLocked()
	s.mu.Unlock()
	s.apply(t)
}

// Toggle switches between light and dark.
func (s *Store) Toggle() {
	s.SetTheme(s.Theme().Opposite())
}

// Theme returns the current preference.
func (s *Store) Theme() domain.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) apply(t domain.Theme) {
	if s.applier != nil {
		s.applier.Apply(t)
	}
}

func (s *Store) persistLocked() {
	payload, err := json.Marshal(snapshot{Theme: s.current})
	if err != nil {
		s.logger.Error("failed to encode theme snapshot", zap.Error(err))
		return
	}
	if err := s.repo.Save(context.Background(), repository.KeyTheme, payload); err != nil {
		s.logger.Error("failed to persist theme snapshot", zap.Error(err))
	}
}
