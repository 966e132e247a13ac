// Package main provides the entry point for the contact discovery CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Recruiter contact discovery and outreach",
	Long:  "Outreach Agent discovers recruiter and HR email contacts for target companies from public web signals, scores and ranks them, and optionally generates and sends personalized outreach emails.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
