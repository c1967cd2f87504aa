// Package main provides the entry point for the SkillMonitor web frontend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillmonitor",
	Short: "SkillMonitor web frontend",
	Long: `SkillMonitor renders the skills dashboard, the profile registration form and the
profile viewer on the server, on top of the skills analysis backend.

Configuration comes from SKILLMONITOR_* environment variables, an optional .env file
and the YAML file named by SKILLMONITOR_CONFIG.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCommand, renderCommand)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
