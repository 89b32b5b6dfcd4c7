// Package auth runs the Google OAuth flow and keeps the token on disk.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// ClientSecretsFile is the OAuth client downloaded from the Google Cloud console.
	ClientSecretsFile = "credentials.json"
	// TokenFile holds the access and refresh token.
	TokenFile = "token.json"
	// LocalhostAuthPort is where the redirect of the browser flow is captured.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

// ErrNotAuthenticated means no token is stored yet.
var ErrNotAuthenticated = errors.New("not authenticated, run `taskday auth` first")

// GetConfig reads the client secrets in dir and pins the redirect to the local port.
func GetConfig(dir string, scopes []string, logger *slog.Logger) (*oauth2.Config, error) {
	path := filepath.Join(dir, ClientSecretsFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", path, err)
	}
	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}
	config.RedirectURL = localRedirect(config.RedirectURL, logger)
	return config, nil
}

// localRedirect maps the configured redirect onto http://localhost:LocalhostAuthPort.
func localRedirect(redirect string, logger *slog.Logger) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	u, err := url.Parse(redirect)
	if err != nil || redirect == "" || redirect == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		logger.Warn("redirect URL is not a localhost callback", slog.String("redirect", redirect))
		return redirect
	}
	if u.Port() != LocalhostAuthPort {
		u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	}
	return u.String()
}

// Client returns an HTTP client authorized with the stored token. Refreshed
// tokens are written back to dir.
func Client(ctx context.Context, dir string, scopes []string, logger *slog.Logger) (*http.Client, error) {
	config, err := GetConfig(dir, scopes, logger)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, TokenFile)
	tok, err := tokenFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	src := &savingSource{
		base:   config.TokenSource(ctx, tok),
		path:   path,
		last:   tok,
		logger: logger,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// Login discards any stored token and runs the browser flow.
func Login(ctx context.Context, dir string, scopes []string, logger *slog.Logger) error {
	config, err := GetConfig(dir, scopes, logger)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, TokenFile)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete token file %s: %w", path, err)
	}
	tok, err := getTokenFromWeb(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("failed to get token from web: %w", err)
	}
	return saveToken(path, tok)
}

type savingSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	path   string
	last   *oauth2.Token
	logger *slog.Logger
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := saveToken(s.path, tok); err != nil {
			s.logger.Warn("could not save refreshed token", slog.Any("err", err))
		}
		s.last = tok
	}
	return tok, nil
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config, logger *slog.Logger) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprintln(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(os.Stderr, "Open the following URL in your browser to authorize taskday:\n%s\n", authURL)
	logger.Info("waiting for authorization code", slog.String("redirect", config.RedirectURL))

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()
	select {
	case code := <-codeCh:
		tok, err := config.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization timed out: %w", ctx.Err())
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
