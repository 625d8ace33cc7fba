package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/infrastructure/security"
)

// newHashPasswordCmd prints a bcrypt hash, for seeding admin accounts by hand.
func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args[0]) < domain.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", domain.MinPasswordLength)
			}
			hash, err := security.NewBcryptHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", security.DefaultBcryptCost, "bcrypt cost")
	return cmd
}
