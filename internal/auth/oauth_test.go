package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Behnamfe76/docvault/internal/config"
)

// fakeGoogle serves the token and user-info endpoints.
type fakeGoogle struct {
	tokenStatus   int
	tokenBody     map[string]any
	profileStatus int
	profileBody   map[string]any

	tokenForm  url.Values
	authHeader string
	tokenCalls int

	// profileHold, when set, parks the user-info handler until it is closed
	// or the client gives up.
	profileHold chan struct{}
}

func (f *fakeGoogle) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		require.NoError(t, r.ParseForm())
		f.tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_ = json.NewEncoder(w).Encode(f.tokenBody)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader = r.Header.Get("Authorization")
		if f.profileHold != nil {
			select {
			case <-f.profileHold:
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.profileStatus)
		_ = json.NewEncoder(w).Encode(f.profileBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFakeGoogle() *fakeGoogle {
	return &fakeGoogle{
		tokenStatus:   http.StatusOK,
		tokenBody:     map[string]any{"access_token": "provider-token", "token_type": "Bearer", "expires_in": 3599},
		profileStatus: http.StatusOK,
		profileBody: map[string]any{
			"sub":            "1234567890",
			"email":          "Alice@Example.com",
			"email_verified": true,
			"name":           "Alice",
		},
	}
}

func newTestExchanger(t *testing.T, srv *httptest.Server) *GoogleExchanger {
	t.Helper()
	ex, err := NewGoogleExchanger(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/google/callback",
		AuthURL:      srv.URL + "/auth",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	}, srv.Client())
	require.NoError(t, err)
	return ex
}

func TestNewGoogleExchangerRequiresCredentials(t *testing.T) {
	_, err := NewGoogleExchanger(config.GoogleConfig{ClientID: "id"}, nil)
	assert.Error(t, err)
}

func TestAuthorizationURL(t *testing.T) {
	ex, err := NewGoogleExchanger(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/google/callback",
	}, nil)
	require.NoError(t, err)

	raw := ex.AuthorizationURL()
	assert.Equal(t, raw, ex.AuthorizationURL(), "url must be deterministic")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
	assert.False(t, q.Has("state"))
	assert.NotContains(t, raw, "client-secret")
}

func TestAuthorizationURLExtraScopes(t *testing.T) {
	srv := newFakeGoogle().server(t)
	ex := newTestExchanger(t, srv)

	u, err := url.Parse(ex.AuthorizationURL("https://www.googleapis.com/auth/drive.readonly"))
	require.NoError(t, err)
	assert.Equal(t, "openid profile email https://www.googleapis.com/auth/drive.readonly", u.Query().Get("scope"))

	u, err = url.Parse(ex.AuthorizationURL())
	require.NoError(t, err)
	assert.Equal(t, "openid profile email", u.Query().Get("scope"))
}

func TestExchangeCodeSuccess(t *testing.T) {
	google := newFakeGoogle()
	ex := newTestExchanger(t, google.server(t))

	token, err := ex.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)

	assert.Equal(t, "good-code", google.tokenForm.Get("code"))
	assert.Equal(t, "client-id", google.tokenForm.Get("client_id"))
	assert.Equal(t, "client-secret", google.tokenForm.Get("client_secret"))
	assert.Equal(t, "http://localhost:8080/auth/google/callback", google.tokenForm.Get("redirect_uri"))
	assert.Equal(t, "authorization_code", google.tokenForm.Get("grant_type"))
}

func TestExchangeCodeRejected(t *testing.T) {
	google := newFakeGoogle()
	google.tokenStatus = http.StatusBadRequest
	google.tokenBody = map[string]any{"error": "invalid_grant"}
	ex := newTestExchanger(t, google.server(t))

	_, err := ex.ExchangeCode(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrExchangeRejected)
	assert.Equal(t, 1, google.tokenCalls, "no retries")
}

func TestExchangeCodeEmpty(t *testing.T) {
	google := newFakeGoogle()
	ex := newTestExchanger(t, google.server(t))

	_, err := ex.ExchangeCode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrExchangeRejected)
	assert.Zero(t, google.tokenCalls)
}

func TestExchangeCodeTokenMissing(t *testing.T) {
	google := newFakeGoogle()
	google.tokenBody = map[string]any{"token_type": "Bearer"}
	ex := newTestExchanger(t, google.server(t))

	_, err := ex.ExchangeCode(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestExchangeCodeProviderDown(t *testing.T) {
	srv := newFakeGoogle().server(t)
	ex := newTestExchanger(t, srv)
	srv.Close()

	_, err := ex.ExchangeCode(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrExchangeRejected)
}

func TestFetchProfile(t *testing.T) {
	google := newFakeGoogle()
	ex := newTestExchanger(t, google.server(t))

	profile, err := ex.FetchProfile(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer provider-token", google.authHeader)
	assert.Equal(t, "1234567890", profile.Sub)
	assert.Equal(t, "Alice@Example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Alice", profile.Name)
}

func TestFetchProfileFailure(t *testing.T) {
	google := newFakeGoogle()
	google.profileStatus = http.StatusUnauthorized
	ex := newTestExchanger(t, google.server(t))

	_, err := ex.FetchProfile(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
}

func TestFetchProfileHonorsClientTimeout(t *testing.T) {
	google := newFakeGoogle()
	google.profileHold = make(chan struct{})
	srv := google.server(t)
	t.Cleanup(func() { close(google.profileHold) })

	client := srv.Client()
	client.Timeout = 100 * time.Millisecond
	ex, err := NewGoogleExchanger(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/auth/google/callback",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	}, client)
	require.NoError(t, err)

	start := time.Now()
	_, err = ex.FetchProfile(context.Background(), "provider-token")
	assert.ErrorIs(t, err, ErrProfileFetchFailed)
	assert.Less(t, time.Since(start), 5*time.Second)
}
