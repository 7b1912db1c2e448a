/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/mediavault/apiserver/config"
	"github.com/mediavault/apiserver/internal/db"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// adminCmd represents the admin command.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative account operations",
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin flag to the account with the given email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		profiles := services.NewProfileService(store.NewProfileRepository(dbConn))
		if err := profiles.Promote(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no account with email %q", args[0])
			}
			return fmt.Errorf("promote failed: %w", err)
		}

		cmd.Printf("promoted %s to admin\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminPromoteCmd)
}
