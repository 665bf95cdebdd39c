package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, tokens, nil, nil)
}

func TestClient_AttachesBearerAndJSONContentType(t *testing.T) {
	var gotAuth, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"isSuccess":true}`))
	}, staticToken("tok-123"))

	resp, err := client.Request(context.Background(), http.MethodGet, "/profile", Options{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClient_NoBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, staticToken(""))

	_, err := client.Request(context.Background(), http.MethodGet, "/auth/login", Options{})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedHandlerFiresOncePerResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"isSuccess":false,"error":"session expired"}`))
	}, staticToken("stale"))

	var fired int32
	client.SetUnauthorizedHandler(func() { atomic.AddInt32(&fired, 1) })

	// the caller still receives the raw response for its own error handling
	resp, err := client.Request(context.Background(), http.MethodGet, "/profile", Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "session expired")
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	// each qualifying response notifies again
	_, err = client.Request(context.Background(), http.MethodGet, "/profile", Options{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fired))
}

func TestClient_NonUnauthorizedStatusDoesNotNotify(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, staticToken("tok"))

	var fired int32
	client.SetUnauthorizedHandler(func() { atomic.AddInt32(&fired, 1) })

	_, err := client.Request(context.Background(), http.MethodGet, "/profile", Options{})

	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestClient_LastHandlerRegistrationWins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, staticToken("tok"))

	var first, second int32
	client.SetUnauthorizedHandler(func() { atomic.AddInt32(&first, 1) })
	client.SetUnauthorizedHandler(func() { atomic.AddInt32(&second, 1) })

	_, err := client.Request(context.Background(), http.MethodGet, "/x", Options{})

	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestClient_NoHandlerRegisteredIsFine(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, staticToken("tok"))

	resp, err := client.Request(context.Background(), http.MethodGet, "/x", Options{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClient_TransportFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(Config{BaseURL: srv.URL}, nil, nil, nil)
	srv.Close()

	_, err := client.Request(context.Background(), http.MethodGet, "/x", Options{})

	assert.Error(t, err)
}

func TestClient_RequestJSONSendsBody(t *testing.T) {
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{"isSuccess":true}`))
	}, nil)

	_, err := client.RequestJSON(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "anna@example.com"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"anna@example.com"}`, string(gotBody))
}
