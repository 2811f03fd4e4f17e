package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/session"
)

func newTestClient(t *testing.T, serverURL string, store session.Store) *Client {
	t.Helper()
	return NewClient(ClientParams{
		Config: &config.APIConfig{BaseURL: serverURL, Timeout: 5 * time.Second},
		Store:  store,
	})
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "success",
		"message": "ok",
		"data":    data,
	})
}

func TestLoginStoresTokenPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "jane@example.com", body["email"])

		writeEnvelope(w, map[string]any{
			"accessToken":  "A1",
			"refreshToken": "R1",
			"user":         map[string]string{"id": "u1", "name": "Jane", "email": "jane@example.com"},
		})
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	auth := NewAuthService(newTestClient(t, server.URL, store), store)

	user, err := auth.Login(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Jane", user.Name)

	creds, ok := store.Credentials()
	require.True(t, ok)
	assert.Equal(t, session.Credentials{AccessToken: "A1", RefreshToken: "R1"}, creds)
}

func TestExpiredTokenRecovery(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/provider/profile":
			switch r.Header.Get("Authorization") {
			case "Bearer A2":
				writeEnvelope(w, map[string]any{"id": "p1", "businessName": "Moments Studio"})
			default:
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message": "token expired"}`))
			}
		case "/auth/refresh-token":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "R1", body["refreshToken"])
			writeEnvelope(w, map[string]string{"accessToken": "A2", "refreshToken": "R2"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetCredentials(session.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	provider := NewProviderService(newTestClient(t, server.URL, store))
	profile, err := provider.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Moments Studio", profile.BusinessName)

	creds, ok := store.Credentials()
	require.True(t, ok)
	assert.Equal(t, session.Credentials{AccessToken: "A2", RefreshToken: "R2"}, creds)

	// original request + refresh exchange + retried request
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeadSessionClearsAndNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetCredentials(session.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	client := newTestClient(t, server.URL, store)
	var expired atomic.Bool
	client.OnSessionExpired(func() { expired.Store(true) })

	_, err := NewProviderService(client).Profile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Message, "session has expired")

	_, ok := store.Credentials()
	assert.False(t, ok, "token pair should be cleared")
	assert.True(t, expired.Load(), "session-expired callback should fire")
}

func TestAtMostOneRefreshAttempt(t *testing.T) {
	var profileCalls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			refreshCalls.Add(1)
			writeEnvelope(w, map[string]string{"accessToken": "A2", "refreshToken": "R2"})
			return
		}
		profileCalls.Add(1)
		// Keep rejecting even the refreshed token.
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "nope"}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetCredentials(session.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	client := newTestClient(t, server.URL, store)
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/provider/profile"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one refresh exchange")
	assert.Equal(t, int32(2), profileCalls.Load(), "original request retried exactly once")
}

func TestRejectedRefreshIsTerminal(t *testing.T) {
	var profileCalls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			refreshCalls.Add(1)
		} else {
			profileCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "refresh token expired"}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetCredentials(session.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	_, err := newTestClient(t, server.URL, store).Do(context.Background(),
		Request{Method: http.MethodGet, Path: "/provider/profile"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(1), profileCalls.Load(), "a rejected refresh never retries the original request")
}

func TestNon401SkipsRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			refreshCalls.Add(1)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": {"eventDate": ["date is in the past"]}}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetCredentials(session.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	_, err := newTestClient(t, server.URL, store).Do(context.Background(),
		Request{Method: http.MethodPost, Path: "/bookings", Body: map[string]string{}})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "date is in the past", apiErr.Message)
	assert.Equal(t, int32(0), refreshCalls.Load())

	// Token pair untouched by domain errors.
	creds, ok := store.Credentials()
	require.True(t, ok)
	assert.Equal(t, "A1", creds.AccessToken)
}

func TestTransportErrorNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(ClientParams{
		Config: &config.APIConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond},
		Store:  session.NewMemoryStore(),
	})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/services"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr, "transport failures must surface as normalized errors")
	assert.Equal(t, 0, apiErr.Status)
	assert.Contains(t, apiErr.Message, "could not reach the server")
}

func TestMissingUploadFileKeepsOwnMessage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	dir := t.TempDir()
	face := filepath.Join(dir, "face.jpg")
	rdb := filepath.Join(dir, "rdb.pdf")
	for _, path := range []string{face, rdb} {
		require.NoError(t, os.WriteFile(path, []byte("fixture"), 0o600))
	}

	provider := NewProviderService(newTestClient(t, server.URL, session.NewMemoryStore()))
	_, err := provider.VerifyIdentity(context.Background(), filepath.Join(dir, "missing.jpg"), face, rdb)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.Contains(t, apiErr.Message, "nid_file")
	assert.NotContains(t, apiErr.Message, "could not reach the server",
		"a local file error is not a connectivity problem")
	assert.Equal(t, int32(0), calls.Load(), "no request should leave the process")
}

func TestVerifyIdentityMultipartParts(t *testing.T) {
	dir := t.TempDir()
	nid := filepath.Join(dir, "nid.jpg")
	face := filepath.Join(dir, "face.jpg")
	rdb := filepath.Join(dir, "rdb.pdf")
	for _, path := range []string{nid, face, rdb} {
		require.NoError(t, os.WriteFile(path, []byte("fixture"), 0o600))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/provider/verify-identity", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for _, part := range []string{"nid_file", "face_file", "rdb_file"} {
			_, _, err := r.FormFile(part)
			assert.NoError(t, err, "missing part %s", part)
		}
		writeEnvelope(w, map[string]any{"face_match": true})
	}))
	defer server.Close()

	provider := NewProviderService(newTestClient(t, server.URL, session.NewMemoryStore()))
	result, err := provider.VerifyIdentity(context.Background(), nid, face, rdb)
	require.NoError(t, err)
	assert.True(t, result.FaceMatch)
}
