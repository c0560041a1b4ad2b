package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
)

// defaultAuthority is the multi-tenant Microsoft identity platform endpoint.
const defaultAuthority = "https://login.microsoftonline.com/common"

// scopes the transport needs. offline_access yields a refresh token so the
// device code flow only runs on the first start.
var scopes = []string{"Mail.Read", "Mail.Send", "Mail.ReadWrite", "User.Read", "offline_access"}

// Authenticator runs the device code flow against the Microsoft identity
// platform and keeps the resulting token cached on disk, so later runs sign
// in silently.
type Authenticator struct {
	config    *oauth2.Config
	cachePath string
	out       io.Writer
	logger    *slog.Logger
}

// NewAuthenticator builds an authenticator for the given application id.
// authority is the identity platform base URL; empty selects the common
// multi-tenant endpoint. The verification URL and user code are printed to
// out when interactive sign-in is needed.
func NewAuthenticator(clientID, authority, cachePath string, out io.Writer, logger *slog.Logger) *Authenticator {
	if authority == "" {
		authority = defaultAuthority
	}
	authority = strings.TrimRight(authority, "/")

	if out == nil {
		out = io.Discard
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:       authority + "/oauth2/v2.0/authorize",
				TokenURL:      authority + "/oauth2/v2.0/token",
				DeviceAuthURL: authority + "/oauth2/v2.0/devicecode",
			},
			Scopes: scopes,
		},
		cachePath: cachePath,
		out:       out,
		logger:    logger,
	}
}

// TokenSource returns a self-refreshing token source. A cached token is
// reused when possible; otherwise the device code flow runs and the operator
// has to sign in. Refreshed tokens are written back to the cache. ctx must
// outlive the returned source because refreshes use it.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.config.ClientID == "" {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, "MS_CLIENT_ID is not set")
	}

	token, err := a.loadCachedToken()
	if err != nil || !usable(token) {
		token, err = a.deviceFlow(ctx)
		if err != nil {
			return nil, err
		}
		if err := saveToken(a.cachePath, token); err != nil && a.logger != nil {
			a.logger.Warn("failed to cache token", slog.String("error", err.Error()))
		}
	}

	return &cachingTokenSource{
		path:   a.cachePath,
		source: a.config.TokenSource(ctx, token),
		last:   token,
		logger: a.logger,
	}, nil
}

// Client wraps TokenSource in an *http.Client that stamps every request
// with the bearer token.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	source, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	return oauth2.NewClient(ctx, source), nil
}

func (a *Authenticator) deviceFlow(ctx context.Context) (*oauth2.Token, error) {
	resp, err := a.config.DeviceAuth(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, err.Error())
	}

	divider := strings.Repeat("=", 50)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, divider)
	fmt.Fprintln(a.out, "  MICROSOFT SIGN-IN REQUIRED")
	fmt.Fprintln(a.out, divider)
	fmt.Fprintf(a.out, "  1. Open:  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.out, "  2. Enter: %s\n", resp.UserCode)
	fmt.Fprintln(a.out, divider)
	fmt.Fprintln(a.out)

	token, err := a.config.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, err.Error())
	}

	return token, nil
}

func (a *Authenticator) loadCachedToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.cachePath)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

// usable reports whether a cached token can still produce access tokens,
// either directly or through its refresh token.
func usable(token *oauth2.Token) bool {
	if token == nil {
		return false
	}

	return token.Valid() || token.RefreshToken != ""
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}

	// The token grants mailbox access, keep it owner-readable only.
	return os.WriteFile(path, data, 0o600)
}

// cachingTokenSource persists refreshed tokens so the next process start
// does not repeat the device code flow.
type cachingTokenSource struct {
	path   string
	source oauth2.TokenSource
	logger *slog.Logger

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		if err := saveToken(s.path, token); err != nil && s.logger != nil {
			s.logger.Warn("failed to cache token", slog.String("error", err.Error()))
		}
		s.last = token
	}

	return token, nil
}
