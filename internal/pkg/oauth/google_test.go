package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakePrompter struct {
	code string
	url  string
	// respond, when set, builds the pasted response from the consent URL.
	respond func(authURL string) string
}

func (f *fakePrompter) Prompt(_ context.Context, authURL string) (string, error) {
	f.url = authURL
	if f.respond != nil {
		return f.respond(authURL), nil
	}
	return f.code, nil
}

// redirectWith simulates the browser landing on the loopback redirect after
// consent, echoing state unless the caller overrides it.
func redirectWith(code, state string) func(string) string {
	return func(authURL string) string {
		u, _ := url.Parse(authURL)
		if state == "" {
			state = u.Query().Get("state")
		}
		q := url.Values{"code": {code}, "state": {state}}
		return "http://localhost/?" + q.Encode()
	}
}

func writeFile(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func clientSecret(tokenURL string) map[string]interface{} {
	return map[string]interface{}{
		"installed": map[string]interface{}{
			"client_id":     "cid",
			"client_secret": "secret",
			"redirect_uris": []string{"http://localhost"},
			"auth_uri":      "https://accounts.example.com/o/oauth2/auth",
			"token_uri":     tokenURL,
		},
	}
}

func TestAcquire_ServiceAccountFileMissing(t *testing.T) {
	p := NewGoogleCredentialProvider(GoogleConfig{
		Method:             MethodServiceAccount,
		ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	}, nil)

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, timesheet.ErrAuthentication)
	assert.ErrorIs(t, err, ErrKeyFileMissing)
	assert.False(t, p.Configured())
}

func TestAcquire_ServiceAccountIsCached(t *testing.T) {
	dir := t.TempDir()
	key := writeFile(t, dir, "sa.json", map[string]string{
		"type":         "service_account",
		"client_email": "sync@project.iam.gserviceaccount.com",
		"private_key":  "not-used-until-a-token-is-requested",
		"token_uri":    "https://oauth2.example.com/token",
	})
	p := NewGoogleCredentialProvider(GoogleConfig{Method: MethodServiceAccount, ServiceAccountFile: key}, nil)

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	second, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.True(t, first == second, "credential should be resolved once")
	assert.True(t, p.Configured())
	assert.Equal(t, MethodServiceAccount, p.Method())
}

func TestAcquire_UnknownMethod(t *testing.T) {
	_, err := NewGoogleCredentialProvider(GoogleConfig{Method: "magic"}, nil).Acquire(context.Background())
	assert.ErrorIs(t, err, timesheet.ErrAuthentication)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAcquire_OAuthUsesValidCachedToken(t *testing.T) {
	dir := t.TempDir()
	secret := writeFile(t, dir, "client_secret.json", clientSecret("https://oauth2.example.com/token"))
	tokenFile := filepath.Join(dir, "token.json")
	require.NoError(t, saveToken(tokenFile, &oauth2.Token{
		AccessToken: "cached", TokenType: "Bearer", RefreshToken: "r", Expiry: time.Now().Add(time.Hour),
	}))

	p := NewGoogleCredentialProvider(GoogleConfig{Method: MethodOAuth, ClientSecretFile: secret, TokenFile: tokenFile}, nil)
	ts, err := p.Acquire(context.Background())
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
}

func TestAcquire_OAuthWithoutCacheOrPrompter(t *testing.T) {
	dir := t.TempDir()
	secret := writeFile(t, dir, "client_secret.json", clientSecret("https://oauth2.example.com/token"))

	p := NewGoogleCredentialProvider(GoogleConfig{
		Method: MethodOAuth, ClientSecretFile: secret, TokenFile: filepath.Join(dir, "token.json"),
	}, nil)

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, timesheet.ErrAuthentication)
	assert.ErrorIs(t, err, ErrInteractiveUnavailable)
	assert.False(t, p.Configured())
}

func TestAcquire_OAuthConsentFlowPersistsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	secret := writeFile(t, dir, "client_secret.json", clientSecret(srv.URL))
	tokenFile := filepath.Join(dir, "cache", "token.json")
	prompter := &fakePrompter{code: "the-code"}

	p := NewGoogleCredentialProvider(GoogleConfig{Method: MethodOAuth, ClientSecretFile: secret, TokenFile: tokenFile}, prompter)
	ts, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Contains(t, prompter.url, "access_type=offline")
	assert.Contains(t, prompter.url, "client_id=cid")

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := loadToken(tokenFile)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "refresh", saved.RefreshToken)
	assert.True(t, p.Configured())
}

func TestAcquire_OAuthConsentChecksRedirectState(t *testing.T) {
	tests := []struct {
		name      string
		respond   func(string) string
		wantErr   error
		exchanges int32
	}{
		{"redirect with matching state", redirectWith("the-code", ""), nil, 1},
		{"bare code", func(string) string { return " the-code \n" }, nil, 1},
		{"redirect with forged state", redirectWith("the-code", "forged"), ErrStateMismatch, 0},
		{"redirect without state", func(string) string { return "http://localhost/?code=the-code" }, ErrStateMismatch, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exchanges atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				exchanges.Add(1)
				assert.NoError(t, r.ParseForm())
				assert.Equal(t, "the-code", r.Form.Get("code"))
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
			}))
			defer srv.Close()

			dir := t.TempDir()
			secret := writeFile(t, dir, "client_secret.json", clientSecret(srv.URL))
			prompter := &fakePrompter{respond: tt.respond}
			p := NewGoogleCredentialProvider(GoogleConfig{
				Method: MethodOAuth, ClientSecretFile: secret, TokenFile: filepath.Join(dir, "token.json"),
			}, prompter)

			_, err := p.Acquire(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, timesheet.ErrAuthentication)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.exchanges, exchanges.Load())
		})
	}
}

func TestConsentCode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{"bare code", "4/0AbC-def", "4/0AbC-def", false},
		{"redirect", "http://localhost/?state=s1&code=4%2F0AbC&scope=x", "4/0AbC", false},
		{"https redirect", "https://localhost:8085/cb?code=c&state=s1", "c", false},
		{"wrong state", "http://localhost/?state=s2&code=c", "", true},
		{"denied", "http://localhost/?error=access_denied&state=s1", "", true},
		{"redirect without code", "http://localhost/?state=s1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := consentCode(tt.response, "s1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize_RequiresOAuthMethod(t *testing.T) {
	err := NewGoogleCredentialProvider(GoogleConfig{Method: MethodServiceAccount}, nil).Authorize(context.Background())
	assert.ErrorIs(t, err, timesheet.ErrAuthentication)
}

func TestTokenStore(t *testing.T) {
	dir := t.TempDir()

	tok, err := loadToken(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, tok)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{"), 0o600))
	_, err = loadToken(corrupt)
	assert.Error(t, err)

	path := filepath.Join(dir, "nested", "token.json")
	require.NoError(t, saveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "b"}))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	tok, err = loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
}

type countingSource struct {
	tokens []string
	i      int
}

func (c *countingSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{AccessToken: c.tokens[c.i]}
	if c.i < len(c.tokens)-1 {
		c.i++
	}
	return tok, nil
}

func TestSavingTokenSource_WritesOnlyNewTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	s := &savingTokenSource{src: &countingSource{tokens: []string{"old", "new"}}, path: path, last: "old"}

	_, err := s.Token()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged token must not be written")

	_, err = s.Token()
	require.NoError(t, err)
	saved, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
}
