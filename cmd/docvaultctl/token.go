package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Behnamfe76/docvault/internal/auth"
	"github.com/Behnamfe76/docvault/internal/config"
	"github.com/Behnamfe76/docvault/internal/domain"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claimsOutput struct {
	Subject   string    `json:"subject"`
	Kind      string    `json:"kind"`
	Issuer    string    `json:"issuer"`
	ID        string    `json:"jti"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue, verify and refresh bearer tokens",
	}
	tokenCmd.AddCommand(newTokenIssueCmd(), newTokenVerifyCmd(), newTokenRefreshCmd())
	return tokenCmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		subject string
		kind    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a token for a subject",
		Long: `Mint a signed token for a subject without going through Google.

Examples:
  docvaultctl token issue --subject alice@example.com
  docvaultctl token issue --subject alice@example.com --kind refresh
  docvaultctl token issue --subject alice@example.com --ttl 5m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenKind, err := parseKind(kind)
			if err != nil {
				return err
			}
			codec, err := loadCodec()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = codec.TTL(tokenKind)
			}
			issued, err := codec.Issue(subject, tokenKind, ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:     issued.Value,
				Kind:      string(tokenKind),
				Subject:   subject,
				ExpiresAt: issued.ExpiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "subject the token is issued to")
	cmd.Flags().StringVar(&kind, "kind", "access", "token kind: access or refresh")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: configured TTL for the kind)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newTokenVerifyCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenKind, err := parseKind(kind)
			if err != nil {
				return err
			}
			codec, err := loadCodec()
			if err != nil {
				return err
			}
			claims, err := codec.VerifyKind(args[0], tokenKind)
			if err != nil {
				return err
			}
			out := claimsOutput{
				Subject: claims.Subject,
				Kind:    string(tokenKind),
				Issuer:  claims.Issuer,
				ID:      claims.ID,
			}
			if claims.IssuedAt != nil {
				out.IssuedAt = claims.IssuedAt.Time
			}
			if claims.ExpiresAt != nil {
				out.ExpiresAt = claims.ExpiresAt.Time
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "access", "expected token kind: access or refresh")
	return cmd
}

func newTokenRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <refresh-token>",
		Short: "Exchange a refresh token for a new access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := loadCodec()
			if err != nil {
				return err
			}
			issued, err := codec.Refresh(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:     issued.Value,
				Kind:      string(domain.TokenKindAccess),
				ExpiresAt: issued.ExpiresAt,
			})
		},
	}
}

func loadCodec() (*auth.TokenCodec, error) {
	authCfg, err := config.LoadSection[config.AuthConfig]()
	if err != nil {
		return nil, err
	}
	return auth.NewTokenCodec(authCfg)
}

func parseKind(kind string) (domain.TokenKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "access":
		return domain.TokenKindAccess, nil
	case "refresh":
		return domain.TokenKindRefresh, nil
	default:
		return "", fmt.Errorf("unknown token kind %q (want access or refresh)", kind)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
