package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/Behnamfe76/docvault/internal/config"
	"github.com/Behnamfe76/docvault/internal/domain"
)

const signingKeyBytes = 32

// TokenCodec issues and verifies HS256 bearer tokens. Each token kind is
// signed with its own key derived from the configured secret, so an access
// token never verifies as a refresh token and vice versa.
type TokenCodec struct {
	keys   map[domain.TokenKind][]byte
	ttls   map[domain.TokenKind]time.Duration
	issuer string
	now    func() time.Time
}

// Claims describes the JWT payload. Only the registered claims are used:
// sub, exp, iat, iss and jti.
type Claims struct {
	jwt.RegisteredClaims
}

// NewTokenCodec derives the per-kind signing keys from cfg.JWTSecret.
func NewTokenCodec(cfg config.AuthConfig) (*TokenCodec, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("token codec: empty signing secret")
	}
	keys := make(map[domain.TokenKind][]byte, 2)
	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		key, err := deriveKey(cfg.JWTSecret, kind)
		if err != nil {
			return nil, fmt.Errorf("token codec: derive %s key: %w", kind, err)
		}
		keys[kind] = key
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 6 * time.Hour
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &TokenCodec{
		keys: keys,
		ttls: map[domain.TokenKind]time.Duration{
			domain.TokenKindAccess:  accessTTL,
			domain.TokenKindRefresh: refreshTTL,
		},
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

func deriveKey(secret string, kind domain.TokenKind) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("docvault "+strings.ToLower(string(kind))+" token"))
	key := make([]byte, signingKeyBytes)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// WithClock replaces the time source. Intended for tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// TTL returns the configured lifetime for kind.
func (c *TokenCodec) TTL(kind domain.TokenKind) time.Duration {
	return c.ttls[kind]
}

// Issue signs a token for subject that expires ttl from now. A non-positive
// ttl yields a token that is already expired.
func (c *TokenCodec) Issue(subject string, kind domain.TokenKind, ttl time.Duration) (domain.IssuedToken, error) {
	key, ok := c.keys[kind]
	if !ok {
		return domain.IssuedToken{}, fmt.Errorf("unknown token kind %q", kind)
	}
	if subject == "" {
		return domain.IssuedToken{}, ErrMissingSubject
	}

	now := c.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return domain.IssuedToken{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IssueDefault signs a token using the configured lifetime for kind.
func (c *TokenCodec) IssueDefault(subject string, kind domain.TokenKind) (domain.IssuedToken, error) {
	return c.Issue(subject, kind, c.TTL(kind))
}

// Verify checks an access token and returns its subject.
func (c *TokenCodec) Verify(token string) (string, error) {
	claims, err := c.VerifyKind(token, domain.TokenKindAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyKind checks a token of the given kind. The signature is checked over
// the raw signing input before anything is decoded, so altering any byte of
// the header or payload reports ErrInvalidSignature rather than a parse error.
func (c *TokenCodec) VerifyKind(token string, kind domain.TokenKind) (*Claims, error) {
	key, ok := c.keys[kind]
	if !ok {
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformedToken
	}
	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, key); err != nil {
		return nil, ErrInvalidSignature
	}

	claims := &Claims{}
	_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// Refresh verifies a refresh token and mints a fresh access token for the
// same subject.
func (c *TokenCodec) Refresh(refreshToken string) (domain.IssuedToken, error) {
	claims, err := c.VerifyKind(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return c.IssueDefault(claims.Subject, domain.TokenKindAccess)
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
