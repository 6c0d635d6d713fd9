package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pkordes/masjid-admin/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		role   string
		masjid string
		email  string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an admin token with the server's JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			s := auth.Session{UserID: uuid.New(), Email: email, Role: auth.Role(role)}
			switch s.Role {
			case auth.RoleAdmin:
			case auth.RoleMasjidAdmin:
				id, err := uuid.Parse(masjid)
				if err != nil {
					return fmt.Errorf("--masjid is required for %s: %w", auth.RoleMasjidAdmin, err)
				}
				s.MasjidID = id
			default:
				return fmt.Errorf("--role must be %s or %s", auth.RoleAdmin, auth.RoleMasjidAdmin)
			}

			tok, err := auth.IssueToken(s, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin or masjid_admin")
	cmd.Flags().StringVar(&masjid, "masjid", "", "masjid id for a masjid_admin token")
	cmd.Flags().StringVar(&email, "email", "cli@localhost", "email claim")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
