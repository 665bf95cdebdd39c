package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/repository"
)

// Validator checks the bearer credential against the backend. The auth
// usecase implements it; wiring happens after construction because the
// gateway itself reads the credential from this store.
type Validator interface {
	ValidateSession(ctx context.Context) (bool, error)
}

// snapshot is the persisted whole-object form of the session state.
type snapshot struct {
	IsAuthenticated          bool             `json:"isAuthenticated"`
	SessionID                string           `json:"sessionId"`
	Customer                 *domain.Customer `json:"customer"`
	IsEmailConfirmed         bool             `json:"isEmailConfirmed"`
	PendingVerificationEmail string           `json:"pendingVerificationEmail,omitempty"`
}

// Store holds the process-wide session singleton. All writes go through the
// documented mutators and every mutation is persisted before returning, so
// a restart preserves authentication without re-login.
type Store struct {
	mu        sync.RWMutex
	state     domain.Session
	repo      repository.SnapshotRepository
	validator Validator
	logger    *zap.Logger
}

// NewStore builds an unauthenticated session store backed by repo.
func NewStore(repo repository.SnapshotRepository, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:  domain.EmptySession(),
		repo:   repo,
		logger: log,
	}
}

// SetValidator wires the backend session check used by CheckSession.
func (s *Store) SetValidator(v Validator) {
	s.mu.Lock()
	s.validator = v
	s.mu.Unlock()
}

// Rehydrate loads the persisted snapshot. Called exactly once at startup,
// before any component reads the store. A missing snapshot leaves the
// unauthenticated defaults in place.
func (s *Store) Rehydrate(ctx context.Context) error {
	payload, err := s.repo.Load(ctx, repository.KeySession)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = domain.Session{
		SessionID:                snap.SessionID,
		Customer:                 snap.Customer,
		IsEmailConfirmed:         snap.IsEmailConfirmed,
		PendingVerificationEmail: snap.PendingVerificationEmail,
	}
	s.mu.Unlock()
	return nil
}

// SetSession replaces the entire session atomically after a successful
// authenticate call and clears any pending-verification marker.
func (s *Store) SetSession(sessionID string, customer domain.Customer, isEmailConfirmed bool) {
	s.mu.Lock()
	s.state = domain.Session{
		SessionID:        sessionID,
		Customer:         &customer,
		IsEmailConfirmed: isEmailConfirmed,
	}
	s.persistLocked()
	s.mu.Unlock()
}

// ClearSession resets all fields to the unauthenticated defaults and
// expunges the persisted bearer credential. Idempotent.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.state = domain.EmptySession()
	s.persistLocked()
	if err := s.repo.Delete(context.Background(), repository.KeyCredential); err != nil {
		s.logger.Warn("failed to expunge stored credential", zap.Error(err))
	}
	s.mu.Unlock()
}

// UpdateCustomer shallow-merges fields into the current customer. A store
// without a session is left untouched; a customer record is never created
// as a side effect.
func (s *Store) UpdateCustomer(update domain.CustomerUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Customer == nil {
		return
	}
	merged := update.Apply(*s.state.Customer)
	s.state.Customer = &merged
	s.persistLocked()
}

// SetEmailConfirmed flips the confirmation flag.
func (s *Store) SetEmailConfirmed(confirmed bool) {
	s.mu.Lock()
	s.state.IsEmailConfirmed = confirmed
	s.persistLocked()
	s.mu.Unlock()
}

// SetPendingVerificationEmail records the email awaiting confirmation.
// An empty value clears the marker.
func (s *Store) SetPendingVerificationEmail(email string) {
	s.mu.Lock()
	s.state.PendingVerificationEmail = email
	s.persistLocked()
	s.mu.Unlock()
}

// CheckSession validates the stored credential against the backend. Any
// failed validation clears the session as a side effect and returns false.
// Without a wired validator, a present credential is taken at face value.
func (s *Store) CheckSession(ctx context.Context) bool {
	s.mu.RLock()
	token := s.state.SessionID
	validator := s.validator
	s.mu.RUnlock()

	if token == "" {
		return false
	}
	if validator == nil {
		return true
	}

	ok, err := validator.ValidateSession(ctx)
	if err != nil {
		s.logger.Warn("session validation failed", zap.Error(err))
		s.ClearSession()
		return false
	}
	if !ok {
		s.ClearSession()
		return false
	}
	return true
}

// Session returns a copy of the current state.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if state.Customer != nil {
		customer := *state.Customer
		state.Customer = &customer
	}
	return state
}

// IsAuthenticated reports whether a bearer credential is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated()
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SessionID
}

// persistLocked writes the whole-object snapshot plus the bare credential.
// Mutators have no error path; persistence failures are logged and the
// in-memory state stays authoritative for the current process.
func (s *Store) persistLocked() {
	snap := snapshot{
		IsAuthenticated:          s.state.IsAuthenticated(),
		SessionID:                s.state.SessionID,
		Customer:                 s.state.Customer,
		IsEmailConfirmed:         s.state.IsEmailConfirmed,
		PendingVerificationEmail: s.state.PendingVerificationEmail,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to encode session snapshot", zap.Error(err))
		return
	}
	ctx := context.Background()
	if err := s.repo.Save(ctx, repository.KeySession, payload); err != nil {
		s.logger.Error("failed to persist session snapshot", zap.Error(err))
	}
	if s.state.SessionID != "" {
		if err := s.repo.Save(ctx, repository.KeyCredential, []byte(s.state.SessionID)); err != nil {
			s.logger.Error("failed to persist credential", zap.Error(err))
		}
	}
}
