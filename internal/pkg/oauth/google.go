package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	MethodServiceAccount = "service_account"
	MethodOAuth          = "oauth"
)

// SpreadsheetsReadonlyScope is the only scope the sync engine asks for.
const SpreadsheetsReadonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

var (
	ErrKeyFileMissing         = errors.New("credential file not found")
	ErrInteractiveUnavailable = errors.New("no cached token and interactive consent is unavailable")
	ErrUnknownMethod          = errors.New("unknown google auth method")
	ErrStateMismatch          = errors.New("oauth state in redirect does not match the consent request")
)

// ConsentPrompter shows the consent URL to a person and returns what they
// paste back: either the full redirect URL or the bare authorization code.
type ConsentPrompter interface {
	Prompt(ctx context.Context, authURL string) (response string, err error)
}

type CredentialProvider interface {
	// Acquire returns a token source for read-only spreadsheet access. The result
	// is cached for the lifetime of the provider.
	Acquire(ctx context.Context) (oauth2.TokenSource, error)
	// Authorize runs the consent flow even when a cached token exists.
	Authorize(ctx context.Context) error
	Method() string
	Configured() bool
}

type GoogleConfig struct {
	Method             string
	ServiceAccountFile string
	ClientSecretFile   string
	TokenFile          string
	Scopes             []string
}

type GoogleCredentialProvider struct {
	cfg      GoogleConfig
	prompter ConsentPrompter

	mu     sync.Mutex
	cached oauth2.TokenSource
}

// NewGoogleCredentialProvider builds a provider. prompter may be nil, in which
// case the user-token strategy fails instead of asking for consent.
func NewGoogleCredentialProvider(cfg GoogleConfig, prompter ConsentPrompter) *GoogleCredentialProvider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{SpreadsheetsReadonlyScope}
	}
	return &GoogleCredentialProvider{cfg: cfg, prompter: prompter}
}

func (g *GoogleCredentialProvider) Method() string {
	return g.cfg.Method
}

// Configured reports whether the files the active method needs are present.
func (g *GoogleCredentialProvider) Configured() bool {
	switch g.cfg.Method {
	case MethodServiceAccount:
		return fileExists(g.cfg.ServiceAccountFile)
	case MethodOAuth:
		return fileExists(g.cfg.ClientSecretFile) && (fileExists(g.cfg.TokenFile) || g.prompter != nil)
	}
	return false
}

func (g *GoogleCredentialProvider) Acquire(ctx context.Context) (oauth2.TokenSource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil {
		return g.cached, nil
	}

	// the token source outlives the request that first asked for it
	ctx = context.WithoutCancel(ctx)

	var (
		ts  oauth2.TokenSource
		err error
	)
	switch g.cfg.Method {
	case MethodServiceAccount:
		ts, err = g.serviceAccount(ctx)
	case MethodOAuth:
		ts, err = g.userToken(ctx, false)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMethod, g.cfg.Method)
	}
	if err != nil {
		return nil, timesheet.NewAuthenticationError(err)
	}

	g.cached = ts
	return ts, nil
}

func (g *GoogleCredentialProvider) Authorize(ctx context.Context) error {
	if g.cfg.Method != MethodOAuth {
		return timesheet.NewAuthenticationError(fmt.Errorf("consent flow needs auth method %q, have %q", MethodOAuth, g.cfg.Method))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ts, err := g.userToken(context.WithoutCancel(ctx), true)
	if err != nil {
		return timesheet.NewAuthenticationError(err)
	}
	g.cached = ts
	return nil
}

func (g *GoogleCredentialProvider) serviceAccount(ctx context.Context) (oauth2.TokenSource, error) {
	data, err := readCredentialFile(g.cfg.ServiceAccountFile)
	if err != nil {
		return nil, err
	}
	conf, err := google.JWTConfigFromJSON(data, g.cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return conf.TokenSource(ctx), nil
}

func (g *GoogleCredentialProvider) userToken(ctx context.Context, force bool) (oauth2.TokenSource, error) {
	data, err := readCredentialFile(g.cfg.ClientSecretFile)
	if err != nil {
		return nil, err
	}
	conf, err := google.ConfigFromJSON(data, g.cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client secret: %w", err)
	}

	if !force {
		tok, err := loadToken(g.cfg.TokenFile)
		if err != nil {
			slog.Warn("ignoring unreadable token cache", "path", g.cfg.TokenFile, "error", err)
			tok = nil
		}
		if tok != nil {
			ts := g.savingSource(conf.TokenSource(ctx, tok), tok)
			// refresh now so an exhausted refresh token falls through to consent
			if _, err = ts.Token(); err == nil {
				return ts, nil
			}
			slog.Warn("cached google token could not be refreshed", "error", err)
		}
	}

	tok, err := g.consent(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err := saveToken(g.cfg.TokenFile, tok); err != nil {
		slog.Warn("could not save google token", "path", g.cfg.TokenFile, "error", err)
	}
	return g.savingSource(conf.TokenSource(ctx, tok), tok), nil
}

func (g *GoogleCredentialProvider) consent(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	if g.prompter == nil {
		return nil, ErrInteractiveUnavailable
	}

	state := GenerateState()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	response, err := g.prompter.Prompt(ctx, authURL)
	if err != nil {
		return nil, fmt.Errorf("consent prompt: %w", err)
	}
	code, err := consentCode(response, state)
	if err != nil {
		return nil, err
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func (g *GoogleCredentialProvider) savingSource(src oauth2.TokenSource, current *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(current, &savingTokenSource{src: src, path: g.cfg.TokenFile, last: current.AccessToken})
}

// consentCode extracts the authorization code from a pasted consent response.
// A redirect URL must carry the state the consent URL was built with; a bare
// code carries no state and is taken as is.
func consentCode(response, wantState string) (string, error) {
	response = strings.TrimSpace(response)
	u, err := url.Parse(response)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return response, nil
	}

	q := u.Query()
	if reason := q.Get("error"); reason != "" {
		return "", fmt.Errorf("consent denied: %s", reason)
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL carries no authorization code")
	}
	if q.Get("state") != wantState {
		return "", ErrStateMismatch
	}
	return code, nil
}

// GenerateState generates a random state string for OAuth2 flows.
func GenerateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

func readCredentialFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured", ErrKeyFileMissing)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyFileMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
