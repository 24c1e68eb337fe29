package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/newstrnt/admin-authz/internal/config"
	"github.com/newstrnt/admin-authz/internal/rbac"
	"github.com/newstrnt/admin-authz/internal/token"
)

// ErrNoJWTSecret is returned by token jwt without a configured secret.
var ErrNoJWTSecret = errors.New("auth.jwtSecret is not configured")

func init() { //nolint: gochecknoinits
	for _, c := range []*cobra.Command{tokenUnifiedCmd, tokenJWTCmd} {
		c.Flags().StringVar(&tokenOpts.userID, "user", "", "user id")
		c.Flags().StringVar(&tokenOpts.email, "email", "", "email address")
		c.Flags().StringVar(&tokenOpts.role, "role", string(rbac.RoleViewer), "role name")
		_ = c.MarkFlagRequired("user")
	}

	tokenUnifiedCmd.Flags().StringVar(&tokenOpts.sessionID, "session", "", "session id, random when empty")
	tokenUnifiedCmd.Flags().StringSliceVar(&tokenOpts.permissions, "perm", nil, "narrow the role permissions")

	tokenJWTCmd.Flags().BoolVar(&tokenOpts.direct, "direct", false, "embed an admin identity instead of a subject")

	tokenCmd.AddCommand(tokenUnifiedCmd, tokenJWTCmd, tokenInspectCmd)
	rootCmd.AddCommand(tokenCmd)
}

var (
	tokenOpts struct {
		userID      string
		email       string
		role        string
		sessionID   string
		permissions []string
		direct      bool
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect bearer tokens for testing",
	}

	tokenUnifiedCmd = &cobra.Command{
		Use:   "unified",
		Short: "Print a unified token issued now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenOpts.role = strings.TrimSpace(tokenOpts.role)
			if _, err := rbac.Default().ParseRole(tokenOpts.role); err != nil {
				return err
			}

			sid := tokenOpts.sessionID
			if sid == "" {
				sid = uuid.NewString()
			}

			email := tokenOpts.email
			if email == "" {
				email = tokenOpts.userID + "@localhost"
			}

			raw, err := token.EncodeUnified(token.UnifiedPayload{
				Email:       email,
				Role:        tokenOpts.role,
				UserID:      tokenOpts.userID,
				SessionID:   sid,
				Timestamp:   time.Now().UnixMilli(),
				Permissions: tokenOpts.permissions,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)

			return err
		},
	}

	tokenJWTCmd = &cobra.Command{
		Use:   "jwt",
		Short: "Print a structured token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfig(configPath)
			if err != nil {
				return err
			}

			if cfg.Auth.JWTSecret == "" {
				return ErrNoJWTSecret
			}

			signer, err := token.NewSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer, cfg.Auth.JWTTTL)
			if err != nil {
				return err
			}

			claims := token.Claims{UserID: tokenOpts.userID}
			if tokenOpts.direct {
				claims = token.Claims{
					AccountID: tokenOpts.userID,
					Email:     tokenOpts.email,
					IsAdmin:   true,
					Role:      strings.TrimSpace(tokenOpts.role),
				}
			}

			raw, err := signer.Sign(claims)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)

			return err
		},
	}

	tokenInspectCmd = &cobra.Command{
		Use:   "inspect <token>",
		Short: "Print the shape of a token and its unified payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := token.Classify(args[0])

			out := struct {
				Kind    string                `json:"kind"`
				Payload *token.UnifiedPayload `json:"payload,omitempty"`
				Expired *bool                 `json:"expired,omitempty"`
			}{Kind: c.Kind.String(), Payload: c.Payload}

			if c.Payload != nil {
				expired := c.Payload.Expired(time.Now())
				out.Expired = &expired
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		},
	}
)
