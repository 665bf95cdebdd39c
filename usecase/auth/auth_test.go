package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puredelivery/client/api/transport"
	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/internal/gateway"
	"github.com/puredelivery/client/internal/session"
)

type memRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{data: make(map[string][]byte)} }

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

// newTestUseCase wires a real gateway and session store against a fake
// backend, mirroring the production composition.
func newTestUseCase(t *testing.T, handler http.HandlerFunc) (*UseCase, *session.Store, *gateway.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(newMemRepo(), nil)
	api := gateway.New(gateway.Config{BaseURL: srv.URL}, sessions, nil, nil)
	return New(api, sessions, nil), sessions, api
}

func TestAuthenticate_SuccessReplacesSession(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{
			"isSuccess": true,
			"data": {
				"customerId": "c-1",
				"email": "anna@example.com",
				"fullName": "Anna Kovac",
				"sessionId": "tok-123",
				"isEmailConfirmed": true,
				"profile": {"phone": "+3612345678", "loyaltyPoints": 120}
			}
		}`))
	})

	env, result := uc.Authenticate(context.Background(), transport.AuthenticateRequest{
		Email:    "anna@example.com",
		Password: "secret-password",
	})

	require.True(t, env.IsSuccess)
	require.NotNil(t, result)
	assert.Equal(t, "tok-123", result.SessionID)

	state := sessions.Session()
	assert.True(t, state.IsAuthenticated())
	assert.Equal(t, "tok-123", state.SessionID)
	require.NotNil(t, state.Customer)
	assert.Equal(t, "Anna Kovac", state.Customer.FullName)
	assert.Equal(t, 120, state.Customer.LoyaltyPoints)
	assert.True(t, state.IsEmailConfirmed)
}

func TestAuthenticate_BackendFailureLeavesSessionAlone(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":false,"message":"Invalid credentials"}`))
	})

	env, result := uc.Authenticate(context.Background(), transport.AuthenticateRequest{
		Email:    "anna@example.com",
		Password: "wrong",
	})

	assert.False(t, env.IsSuccess)
	assert.Equal(t, "Invalid credentials", env.FailureReason())
	assert.Nil(t, result)
	assert.False(t, sessions.IsAuthenticated())
}

func TestAuthenticate_TransportFailureSynthesizesNetworkEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sessions := session.NewStore(newMemRepo(), nil)
	api := gateway.New(gateway.Config{BaseURL: srv.URL}, sessions, nil, nil)
	uc := New(api, sessions, nil)
	srv.Close()

	env, result := uc.Authenticate(context.Background(), transport.AuthenticateRequest{
		Email:    "anna@example.com",
		Password: "secret-password",
	})

	assert.False(t, env.IsSuccess)
	assert.Equal(t, transport.NetworkErrorMessage, env.Error)
	assert.Nil(t, result)
}

func TestRegister_RecordsPendingVerificationEmail(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.Write([]byte(`{"isSuccess":true,"data":{"customerId":"c-1","email":"anna@example.com"}}`))
	})

	env, result := uc.Register(context.Background(), transport.CreateCustomerRequest{
		Email:    "anna@example.com",
		Password: "secret-password",
	})

	require.True(t, env.IsSuccess)
	require.NotNil(t, result)
	assert.Equal(t, "anna@example.com", sessions.Session().PendingVerificationEmail)
}

func TestVerifyOtp_SuccessConfirmsEmail(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/confirm-email", r.URL.Path)
		w.Write([]byte(`{"isSuccess":true}`))
	})
	sessions.SetSession("tok-123", domain.Customer{ID: "c-1"}, false)
	sessions.SetPendingVerificationEmail("anna@example.com")

	env := uc.VerifyOtp(context.Background(), "anna@example.com", "123456")

	require.True(t, env.IsSuccess)
	assert.True(t, sessions.Session().IsEmailConfirmed)
	assert.Empty(t, sessions.Session().PendingVerificationEmail)
}

func TestVerifyOtp_RejectionSurfacesMessage(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":false,"message":"Invalid or expired code"}`))
	})
	sessions.SetSession("tok-123", domain.Customer{ID: "c-1"}, false)

	env := uc.VerifyOtp(context.Background(), "anna@example.com", "000000")

	assert.False(t, env.IsSuccess)
	assert.Equal(t, "Invalid or expired code", env.FailureReason())
	assert.False(t, sessions.Session().IsEmailConfirmed)
}

func TestLogout_ClearsSessionEvenWhenBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sessions := session.NewStore(newMemRepo(), nil)
	api := gateway.New(gateway.Config{BaseURL: srv.URL}, sessions, nil, nil)
	uc := New(api, sessions, nil)
	sessions.SetSession("tok-123", domain.Customer{ID: "c-1"}, true)
	srv.Close()

	env := uc.Logout(context.Background())

	assert.False(t, env.IsSuccess)
	assert.False(t, sessions.IsAuthenticated())
}

func TestUnauthorizedResponseNotifiesInterceptorAndCaller(t *testing.T) {
	uc, sessions, api := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"isSuccess":false,"error":"Session expired"}`))
	})
	sessions.SetSession("stale-token", domain.Customer{ID: "c-1"}, true)

	var fired int32
	api.SetUnauthorizedHandler(func() { atomic.AddInt32(&fired, 1) })

	env := uc.ChangePassword(context.Background(), transport.ChangePasswordRequest{
		CustomerID:      "c-1",
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
		ConfirmPassword: "new-password",
	})

	// both observers see the same response independently
	assert.False(t, env.IsSuccess)
	assert.Equal(t, "Session expired", env.FailureReason())
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "valid", body: `{"isSuccess":true}`, want: true},
		{name: "invalid", body: `{"isSuccess":false}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/session/validate", r.URL.Path)
				w.Write([]byte(tt.body))
			})

			ok, err := uc.ValidateSession(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDeleteAccount_ClearsSessionOnSuccess(t *testing.T) {
	uc, sessions, _ := newTestUseCase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/auth/c-1", r.URL.Path)
		w.Write([]byte(`{"isSuccess":true}`))
	})
	sessions.SetSession("tok-123", domain.Customer{ID: "c-1"}, true)

	env := uc.DeleteAccount(context.Background(), "c-1")

	require.True(t, env.IsSuccess)
	assert.False(t, sessions.IsAuthenticated())
}
