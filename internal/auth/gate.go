package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/domain"
	"github.com/Behnamfe76/docvault/internal/events"
)

// Gate is the single authentication surface used by request handlers.
type Gate struct {
	tokens     *TokenCodec
	exchanger  Exchanger
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewGate composes a token codec and an OAuth exchanger. dispatcher may be nil.
func NewGate(tokens *TokenCodec, exchanger Exchanger, dispatcher events.Dispatcher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, exchanger: exchanger, dispatcher: dispatcher, logger: logger}
}

// LoginURL returns the provider consent-screen URL.
func (g *Gate) LoginURL() string {
	return g.exchanger.AuthorizationURL()
}

// CompleteLogin runs the full callback chain. Tokens are only issued when the
// exchange, the profile fetch and subject derivation all succeed.
func (g *Gate) CompleteLogin(ctx context.Context, code string) (domain.TokenPair, error) {
	providerToken, err := g.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		g.logger.Warn("oauth code exchange failed", zap.Error(err))
		return domain.TokenPair{}, err
	}

	profile, err := g.exchanger.FetchProfile(ctx, providerToken)
	if err != nil {
		g.logger.Warn("oauth profile fetch failed", zap.Error(err))
		return domain.TokenPair{}, err
	}

	subject, err := SubjectFromProfile(profile)
	if err != nil {
		g.logger.Warn("oauth profile rejected", zap.String("provider_sub", profile.Sub), zap.Error(err))
		return domain.TokenPair{}, err
	}

	access, err := g.tokens.IssueDefault(subject, domain.TokenKindAccess)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := g.tokens.IssueDefault(subject, domain.TokenKindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	g.publishEvent(ctx, events.Event{
		Type:    events.EventLoginCompleted,
		Subject: subject,
		Payload: events.LoginCompletedPayload{Provider: "google", ProviderSub: profile.Sub},
	})
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Resolve returns the subject of a valid access token. Every token failure is
// reported as "no identity"; the specific kind is only logged.
func (g *Gate) Resolve(token string) (string, bool) {
	subject, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("token rejected", zap.Error(err))
		return "", false
	}
	return subject, true
}

// Refresh mints a new access token from a refresh token.
func (g *Gate) Refresh(refreshToken string) (domain.IssuedToken, error) {
	return g.tokens.Refresh(refreshToken)
}

// SubjectFromProfile derives the stable subject from a provider profile: the
// normalized email, accepted only when the provider marked it verified.
func SubjectFromProfile(profile domain.Profile) (string, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || !profile.EmailVerified {
		return "", ErrUnverifiedProfile
	}
	return email, nil
}

func (g *Gate) publishEvent(ctx context.Context, event events.Event) {
	if g.dispatcher == nil {
		return
	}
	if err := g.dispatcher.Publish(ctx, events.Stamp(event)); err != nil {
		g.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
