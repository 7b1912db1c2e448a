/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediavault",
	Short: "mediavault media marketplace backend",
	Long: `mediavault serves the media marketplace API and ships the
operational subcommands that go with it: database migrations, admin
promotion and the storage reconcile sweep.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger picks the zap preset from the ENV variable: dev gets the
// console encoder, everything else structured production output.
func newLogger() *zap.Logger {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ENV")), "dev") {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
