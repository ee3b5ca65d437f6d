package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/store/sqlite"
	"github.com/jrsteele09/go-token-server/token"
	"github.com/jrsteele09/go-token-server/token/jwt"
	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/spf13/cobra"
)

// defaults seed the flag values, normally from the environment.
type defaults struct {
	sqlitePath string
	ttl        time.Duration
	signingKey string
	keyID      string
}

func newRootCmd(d defaults) *cobra.Command {
	root := &cobra.Command{
		Use:           "tokenadmin",
		Short:         "Inspect tokens issued by the token server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newHashCmd(), newInspectRefreshCmd(d), newIntrospectCmd(d))
	return root
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <token>",
		Short: "Print the digest a token is stored under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := token.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newInspectRefreshCmd(d defaults) *cobra.Command {
	var (
		sqlitePath string
		ttlSeconds int
	)
	cmd := &cobra.Command{
		Use:   "inspect-refresh <token>",
		Short: "Look a refresh token up in the SQLite store and report its expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := token.Hash(args[0])
			if err != nil {
				return err
			}
			db, err := sqlite.Open(sqlitePath)
			if err != nil {
				return err
			}
			defer db.Close()

			stored, err := db.RefreshTokens().GetByHash(cmd.Context(), hash)
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("refresh token %s not found", hash)
			}
			if err != nil {
				return err
			}

			policy := refresh.NewPolicy(time.Duration(ttlSeconds) * time.Second)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hash:       %s\n", hash)
			fmt.Fprintf(out, "tenant:     %s\n", stored.TenantID)
			fmt.Fprintf(out, "client:     %s\n", stored.ClientID)
			fmt.Fprintf(out, "created_at: %s\n", stored.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "expires_at: %s\n", policy.ExpiresAt(stored.CreatedAt).Format(time.RFC3339))
			fmt.Fprintf(out, "expired:    %t\n", policy.IsExpired(stored.CreatedAt))
			return nil
		},
	}
	cmd.Flags().StringVar(&sqlitePath, "sqlite-path", d.sqlitePath, "SQLite token database (env SQLITE_PATH)")
	cmd.Flags().IntVar(&ttlSeconds, "ttl-seconds", int(d.ttl/time.Second), "Refresh token TTL (env REFRESH_TOKEN_EXPIRE_SECONDS)")
	return cmd
}

func newIntrospectCmd(d defaults) *cobra.Command {
	var signingKey, keyID string
	cmd := &cobra.Command{
		Use:   "introspect <jwt>",
		Short: "Verify a JWT access token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if signingKey == "" {
				return apperrors.ErrSigningKeyRequired
			}
			inspector := jwt.NewInspector(jwt.NewHMACSigner(keyID, []byte(signingKey)))
			info, err := inspector.Introspect(args[0])
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().StringVar(&signingKey, "signing-key", d.signingKey, "HMAC signing key (env ACCESS_TOKEN_SIGNING_KEY)")
	cmd.Flags().StringVar(&keyID, "key-id", d.keyID, "Signing key ID (env APP_NAME)")
	return cmd
}
