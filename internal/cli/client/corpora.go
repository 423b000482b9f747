package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// BannerResponse represents the root endpoint response.
type BannerResponse struct {
	Message       string   `json:"message"`
	ScopedCorpora []string `json:"scoped_corpora"`
	UsageHint     string   `json:"usage_hint"`
}

// CorporaCmd creates the corpora command.
func CorporaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "corpora",
		Short: "List the scoped corpora the server knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCorpora(cmd, outputJSON)
		},
	}
}

func runCorpora(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/")
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}

	var banner BannerResponse
	if err := json.Unmarshal(resp.Data, &banner); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(banner, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(banner.ScopedCorpora) == 0 {
		fmt.Println("No scoped corpora loaded.")
		return nil
	}
	fmt.Printf("Scoped corpora (%d):\n", len(banner.ScopedCorpora))
	for _, name := range banner.ScopedCorpora {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}
