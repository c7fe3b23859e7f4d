package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "enrollctl",
		Short:        "Command line client for the course enrollment API",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("server", serverDefault(), "Enrollment API base URL (env ENROLL_SERVER)")
	rootCmd.PersistentFlags().Bool("json", false, "Print raw JSON responses")

	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(enrollCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(verifyPaymentCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(flowCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serverDefault() string {
	if s := os.Getenv("ENROLL_SERVER"); s != "" {
		return s
	}
	return "http://localhost:10000"
}
