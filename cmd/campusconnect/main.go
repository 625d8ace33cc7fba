// Command campusconnect runs the CampusConnect auth API.
//
// @title                      CampusConnect API
// @version                    1.0
// @description                Campus-gated sign-up, email verification, login and password recovery.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campusconnect",
		Short:         "CampusConnect auth API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newHashPasswordCmd())
	return root
}
