package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
)

func writeTokenCache(t *testing.T, path string, token oauth2.Token) {
	t.Helper()

	data, err := json.Marshal(token)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestNewAuthenticator(t *testing.T) {
	auth := NewAuthenticator("client-1", "https://login.example.com/tenant/", "cache.json", nil, nil)

	assert.Equal(t, "client-1", auth.config.ClientID)
	assert.Equal(t, "https://login.example.com/tenant/oauth2/v2.0/devicecode", auth.config.Endpoint.DeviceAuthURL)
	assert.Equal(t, "https://login.example.com/tenant/oauth2/v2.0/token", auth.config.Endpoint.TokenURL)
	assert.Contains(t, auth.config.Scopes, "Mail.Read")
	assert.Contains(t, auth.config.Scopes, "offline_access")
}

func TestNewAuthenticator_DefaultAuthority(t *testing.T) {
	auth := NewAuthenticator("client-1", "", "cache.json", nil, nil)

	assert.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/devicecode", auth.config.Endpoint.DeviceAuthURL)
}

func TestAuthenticator_TokenSource_MissingClientID(t *testing.T) {
	auth := NewAuthenticator("", "", "cache.json", nil, nil)

	source, err := auth.TokenSource(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	assert.Nil(t, source)
}

func TestAuthenticator_TokenSource_DeviceFlow(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/oauth2/v2.0/devicecode", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.Form.Get("client_id"))
		assert.Contains(t, r.Form.Get("scope"), "offline_access")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"device_code": "dev-123",
			"user_code": "ABC-123",
			"verification_uri": "https://microsoft.com/devicelogin",
			"interval": 1
		}`)
	})
	mux.HandleFunc("/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:device_code", r.Form.Get("grant_type"))
		assert.Equal(t, "dev-123", r.Form.Get("device_code"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "first-token",
			"token_type": "Bearer",
			"refresh_token": "refresh-1",
			"expires_in": 3600
		}`)
	})

	cachePath := filepath.Join(t.TempDir(), "token_cache.json")
	out := &bytes.Buffer{}
	auth := NewAuthenticator("client-1", server.URL, cachePath, out, nil)

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "first-token", token.AccessToken)

	banner := out.String()
	assert.Contains(t, banner, "MICROSOFT SIGN-IN REQUIRED")
	assert.Contains(t, banner, "https://microsoft.com/devicelogin")
	assert.Contains(t, banner, "ABC-123")

	info, err := os.Stat(cachePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cached, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(cached), "first-token")
}

func TestAuthenticator_TokenSource_CachedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request with a valid cached token: %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	cachePath := filepath.Join(t.TempDir(), "token_cache.json")
	writeTokenCache(t, cachePath, oauth2.Token{
		AccessToken: "cached-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})

	out := &bytes.Buffer{}
	auth := NewAuthenticator("client-1", server.URL, cachePath, out, nil)

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token.AccessToken)
	assert.Empty(t, out.String())
}

func TestAuthenticator_TokenSource_RefreshesExpiredToken(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "fresh-token",
			"token_type": "Bearer",
			"refresh_token": "refresh-2",
			"expires_in": 3600
		}`)
	})

	cachePath := filepath.Join(t.TempDir(), "token_cache.json")
	writeTokenCache(t, cachePath, oauth2.Token{
		AccessToken:  "stale-token",
		TokenType:    "Bearer",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	auth := NewAuthenticator("client-1", server.URL, cachePath, nil, nil)

	source, err := auth.TokenSource(context.Background())
	require.NoError(t, err)

	token, err := source.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token.AccessToken)

	// The refreshed token replaces the stale one on disk.
	cached, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(cached), "fresh-token")
}

func TestAuthenticator_TokenSource_DeviceFlowDenied(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/oauth2/v2.0/devicecode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"device_code": "dev-123",
			"user_code": "ABC-123",
			"verification_uri": "https://microsoft.com/devicelogin",
			"interval": 1
		}`)
	})
	mux.HandleFunc("/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "access_denied"}`)
	})

	cachePath := filepath.Join(t.TempDir(), "token_cache.json")
	auth := NewAuthenticator("client-1", server.URL, cachePath, &bytes.Buffer{}, nil)

	source, err := auth.TokenSource(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	assert.Nil(t, source)
}

func TestUsable(t *testing.T) {
	assert.False(t, usable(nil))
	assert.False(t, usable(&oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Hour)}))
	assert.True(t, usable(&oauth2.Token{AccessToken: "live", Expiry: time.Now().Add(time.Hour)}))
	assert.True(t, usable(&oauth2.Token{AccessToken: "stale", RefreshToken: "refresh", Expiry: time.Now().Add(-time.Hour)}))
}
