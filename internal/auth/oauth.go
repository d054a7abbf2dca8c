package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/Behnamfe76/docvault/internal/config"
	"github.com/Behnamfe76/docvault/internal/domain"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// DefaultScopes is the fixed scope set requested at the consent screen.
var DefaultScopes = []string{"openid", "profile", "email"}

// Exchanger performs the provider side of the login flow.
type Exchanger interface {
	AuthorizationURL(extraScopes ...string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, providerAccessToken string) (domain.Profile, error)
}

// GoogleExchanger talks to Google's OAuth2 and user-info endpoints. It never
// retries: provider failures are returned to the caller as-is.
type GoogleExchanger struct {
	oauth       oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleExchanger builds an exchanger from client credentials. Endpoint
// overrides in cfg replace Google's defaults.
func NewGoogleExchanger(cfg config.GoogleConfig, httpClient *http.Client) (*GoogleExchanger, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		return nil, errors.New("google exchanger: client id, secret and redirect uri are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   firstNonEmpty(cfg.AuthURL, endpoints.Google.AuthURL),
		TokenURL:  firstNonEmpty(cfg.TokenURL, endpoints.Google.TokenURL),
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &GoogleExchanger{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoint,
			Scopes:       append([]string(nil), DefaultScopes...),
		},
		userInfoURL: firstNonEmpty(cfg.UserInfoURL, googleUserInfoURL),
		httpClient:  httpClient,
	}, nil
}

// AuthorizationURL returns the consent-screen URL. The result depends only on
// configuration and extraScopes.
func (g *GoogleExchanger) AuthorizationURL(extraScopes ...string) string {
	cfg := g.oauth
	cfg.Scopes = append(append([]string(nil), g.oauth.Scopes...), extraScopes...)
	return cfg.AuthCodeURL("")
}

// ExchangeCode trades an authorization code for a provider access token.
func (g *GoogleExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: empty code", ErrExchangeRejected)
	}

	tok, err := g.oauth.Exchange(g.clientContext(ctx), code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		switch {
		case errors.As(err, &retrieveErr):
			return "", fmt.Errorf("%w: status %d", ErrExchangeRejected, statusOf(retrieveErr))
		case strings.Contains(err.Error(), "missing access_token"):
			return "", ErrTokenMissing
		default:
			return "", fmt.Errorf("%w: %v", ErrExchangeRejected, err)
		}
	}
	if tok.AccessToken == "" {
		return "", ErrTokenMissing
	}
	return tok.AccessToken, nil
}

// FetchProfile calls the user-info endpoint with the provider token as a
// bearer credential. oauth2.NewClient keeps only the injected client's
// transport, so its timeout is applied to the context instead.
func (g *GoogleExchanger) FetchProfile(ctx context.Context, providerAccessToken string) (domain.Profile, error) {
	if timeout := g.httpClient.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ctx = g.clientContext(ctx)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: providerAccessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Profile{}, fmt.Errorf("%w: status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	var profile domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: decode: %v", ErrProfileFetchFailed, err)
	}
	return profile, nil
}

func (g *GoogleExchanger) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func statusOf(err *oauth2.RetrieveError) int {
	if err.Response == nil {
		return 0
	}
	return err.Response.StatusCode
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
