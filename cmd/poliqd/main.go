package main

import (
	"fmt"
	"os"

	"github.com/poliq-ai/poliq/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "poliqd",
		Short: "Poliq daemon and CLI",
		Long:  "Poliq daemon for running the policy Q&A API server and building corpus artifacts",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
