// Package cmd provides the command-line interface for elevsim.
package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elevsim",
	Short: "elevsim simulates a building's elevators serving floor requests.",
	Long: `elevsim simulates several elevators serving floor requests. ` +
		`Each elevator runs its own control loop. Requests are dispatched ` +
		`by a strategy and survive elevator malfunctions.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		envFile, _ := cmd.Flags().GetString("env")
		if err := loadEnv(envFile); err != nil {
			log.Fatalf("Error loading %s: %v", envFile, err)
		}
	},
}

// loadEnv loads defaults from an env file. A missing file is not an error.
// Variables already set in the environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env",
		"File with ELEVSIM_* defaults.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
