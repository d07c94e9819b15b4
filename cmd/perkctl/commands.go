// AngelaMos | 2026
// commands.go

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/perkhub/internal/auth"
	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/config"
	"github.com/carterperez-dev/perkhub/internal/seed"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the relational schema or ensure document indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			switch e.store.Driver {
			case config.DriverMongo:
				fmt.Fprintln(cmd.OutOrStdout(), "mongo indexes ensured")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "postgres schema applied")
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, deals and claims",
		Long: `Seed loads fixtures from --file, or the built-in demo set when no file
is given. Running it twice is safe. --reset deletes every claim and deal
first; users are never deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := loadFixtures(file)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			seeder := seed.NewSeeder(
				e.store.Users,
				e.services.Deals,
				e.services.Claims,
				e.hasher,
				e.logger,
			)
			res, err := seeder.Run(cmd.Context(), fixtures, reset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if reset {
				fmt.Fprintf(out, "deleted %d claims, %d deals\n", res.ClaimsDeleted, res.DealsDeleted)
			}
			fmt.Fprintf(out, "users: %d created, %d existing\n", res.UsersCreated, res.UsersExisting)
			fmt.Fprintf(out, "deals: %d upserted\n", res.DealsUpserted)
			fmt.Fprintf(out, "claims: %d created, %d skipped\n", res.ClaimsCreated, res.ClaimsSkipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Fixture YAML file (default: built-in demo data)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete all claims and deals before seeding")

	return cmd
}

func loadFixtures(file string) (*seed.Fixtures, error) {
	if file == "" {
		return seed.Default()
	}
	return seed.Load(file)
}

func keygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the ES256 key pair used to sign access tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return fmt.Errorf("generate key pair: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "Private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "Public key output path")

	return cmd
}

func verifyUserCmd() *cobra.Command {
	var (
		email    string
		verified bool
	)

	cmd := &cobra.Command{
		Use:   "verify-user",
		Short: "Set a member's verification flag",
		Long: `verify-user records the outcome of the out-of-band trust process.
Tokens issued earlier keep their old isVerified value until the member
logs in again, but claim admission always reads the stored flag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.services.Users.GetUserByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("find user %q: %w", email, err)
			}

			u, err = e.services.Users.SetVerification(cmd.Context(), u.ID, verified)
			if err != nil {
				return fmt.Errorf("set verification: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) isVerified=%t\n", u.Email, u.ID, u.IsVerified)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Member email")
	cmd.Flags().BoolVar(&verified, "verified", true, "Verification flag to set")
	_ = cmd.MarkFlagRequired("email") //nolint:errcheck // flag is defined above

	return cmd
}

func claimStatusCmd() *cobra.Command {
	var id, status string

	cmd := &cobra.Command{
		Use:   "claim-status",
		Short: "Approve or reject a pending claim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			to := claim.Status(strings.ToLower(strings.TrimSpace(status)))

			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.services.Claims.UpdateStatus(cmd.Context(), id, to)
			if err != nil {
				return fmt.Errorf("update claim %s: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "claim %s is now %s\n", c.ID, c.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Claim id")
	cmd.Flags().StringVar(&status, "status", "", "New status: approved or rejected")
	_ = cmd.MarkFlagRequired("id")     //nolint:errcheck // flag is defined above
	_ = cmd.MarkFlagRequired("status") //nolint:errcheck // flag is defined above

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print claim counts by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			s, err := e.services.Claims.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"total=%d pending=%d approved=%d rejected=%d\n",
				s.Total, s.Pending, s.Approved, s.Rejected,
			)
			return nil
		},
	}
}
