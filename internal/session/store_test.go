package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/repository"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string][]byte)}
}

func (m *memRepo) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *memRepo) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), payload...)
	return nil
}

func (m *memRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type validatorFunc func(ctx context.Context) (bool, error)

func (f validatorFunc) ValidateSession(ctx context.Context) (bool, error) { return f(ctx) }

func testCustomer() domain.Customer {
	return domain.Customer{
		ID:            "c-1",
		Email:         "anna@example.com",
		FullName:      "Anna Kovac",
		Phone:         "+3612345678",
		LoyaltyPoints: 120,
	}
}

func TestStore_SetThenClearReturnsToDefaults(t *testing.T) {
	store := NewStore(newMemRepo(), nil)

	store.SetSession("tok-123", testCustomer(), true)
	require.True(t, store.IsAuthenticated())

	store.ClearSession()
	assert.Equal(t, domain.EmptySession(), store.Session())

	// clearing an already-cleared store is a no-op with identical state
	store.ClearSession()
	assert.Equal(t, domain.EmptySession(), store.Session())
}

func TestStore_AuthenticatedIffTokenPresent(t *testing.T) {
	store := NewStore(newMemRepo(), nil)

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())

	store.SetSession("tok-123", testCustomer(), false)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-123", store.Token())
	assert.NotNil(t, store.Session().Customer)

	store.ClearSession()
	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())
}

func TestStore_SetSessionClearsPendingEmail(t *testing.T) {
	store := NewStore(newMemRepo(), nil)

	store.SetPendingVerificationEmail("anna@example.com")
	store.SetSession("tok-123", testCustomer(), true)

	assert.Empty(t, store.Session().PendingVerificationEmail)
}

func TestStore_UpdateCustomerWithoutSessionIsNoOp(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, nil)

	before := store.Session()
	persistedBefore := append([]byte(nil), repo.data[repository.KeySession]...)

	name := "Someone Else"
	store.UpdateCustomer(domain.CustomerUpdate{FullName: &name})

	assert.Equal(t, before, store.Session())
	assert.Equal(t, persistedBefore, repo.data[repository.KeySession])
}

func TestStore_UpdateCustomerMergesFields(t *testing.T) {
	store := NewStore(newMemRepo(), nil)
	store.SetSession("tok-123", testCustomer(), true)

	name := "Anna Szabo"
	points := 200
	store.UpdateCustomer(domain.CustomerUpdate{FullName: &name, LoyaltyPoints: &points})

	got := store.Session().Customer
	require.NotNil(t, got)
	assert.Equal(t, "Anna Szabo", got.FullName)
	assert.Equal(t, 200, got.LoyaltyPoints)
	// untouched fields survive the merge
	assert.Equal(t, "anna@example.com", got.Email)
	assert.Equal(t, "+3612345678", got.Phone)
}

func TestStore_RehydratePreservesAuthenticationAcrossRestart(t *testing.T) {
	repo := newMemRepo()

	first := NewStore(repo, nil)
	first.SetSession("tok-123", testCustomer(), true)
	first.SetPendingVerificationEmail("")

	second := NewStore(repo, nil)
	require.NoError(t, second.Rehydrate(context.Background()))

	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, "tok-123", second.Token())
	require.NotNil(t, second.Session().Customer)
	assert.Equal(t, "Anna Kovac", second.Session().Customer.FullName)
	assert.True(t, second.Session().IsEmailConfirmed)
}

func TestStore_RehydrateWithoutSnapshotKeepsDefaults(t *testing.T) {
	store := NewStore(newMemRepo(), nil)
	require.NoError(t, store.Rehydrate(context.Background()))
	assert.Equal(t, domain.EmptySession(), store.Session())
}

func TestStore_ClearExpungesStoredCredential(t *testing.T) {
	repo := newMemRepo()
	store := NewStore(repo, nil)

	store.SetSession("tok-123", testCustomer(), true)
	_, ok := repo.data[repository.KeyCredential]
	require.True(t, ok)

	store.ClearSession()
	_, ok = repo.data[repository.KeyCredential]
	assert.False(t, ok)
}

func TestStore_CheckSession(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		validator   Validator
		want        bool
		wantCleared bool
	}{
		{
			name: "no token",
			want: false,
		},
		{
			name:  "no validator trusts stored token",
			token: "tok-123",
			want:  true,
		},
		{
			name:  "backend confirms",
			token: "tok-123",
			validator: validatorFunc(func(context.Context) (bool, error) {
				return true, nil
			}),
			want: true,
		},
		{
			name:  "backend rejects",
			token: "tok-123",
			validator: validatorFunc(func(context.Context) (bool, error) {
				return false, nil
			}),
			want:        false,
			wantCleared: true,
		},
		{
			name:  "backend unreachable",
			token: "tok-123",
			validator: validatorFunc(func(context.Context) (bool, error) {
				return false, errors.New("connection refused")
			}),
			want:        false,
			wantCleared: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(newMemRepo(), nil)
			if tt.token != "" {
				store.SetSession(tt.token, testCustomer(), true)
			}
			store.SetValidator(tt.validator)

			got := store.CheckSession(context.Background())

			assert.Equal(t, tt.want, got)
			if tt.wantCleared {
				assert.Equal(t, domain.EmptySession(), store.Session())
			}
		})
	}
}
