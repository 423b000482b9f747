package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question      string `json:"question"`
	Corpus        string `json:"corpus,omitempty"`
	SessionID     string `json:"session_id"`
	TopKPerCorpus int    `json:"top_k_per_corpus,omitempty"`
}

// AskSource represents one cited document in the answer.
type AskSource struct {
	Corpus       string `json:"corpus"`
	DocumentName string `json:"document_name"`
	Snippet      string `json:"snippet"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Summary        string      `json:"summary"`
	Steps          string      `json:"steps,omitempty"`
	Sources        []AskSource `json:"sources"`
	CostSavingTips string      `json:"cost_saving_tips,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		corpus  string
		topK    int
		session string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the policy corpora",
		Long:  "Sends a question to the API and prints the structured answer. Follow-up questions reuse the same session so the corpus hint sticks.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], corpus, session, topK, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&corpus, "corpus", "c", "", "Route the question to a specific corpus")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Neighbors retrieved per corpus (server default if 0)")
	cmd.Flags().StringVar(&session, "session", "", "Session ID to use (defaults to a per-machine persistent session)")

	return cmd
}

func runAsk(cmd *cobra.Command, question, corpus, session string, topK int, outputJSON bool) error {
	api, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	if session == "" {
		session, err = loadOrCreateSession()
		if err != nil {
			return err
		}
	}

	req := AskRequest{
		Question:      question,
		Corpus:        corpus,
		SessionID:     session,
		TopKPerCorpus: topK,
	}

	resp, err := api.Post("/ask", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer AskResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Summary)
	if answer.Steps != "" {
		fmt.Printf("\nSteps:\n%s\n", answer.Steps)
	}
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for _, src := range answer.Sources {
			fmt.Printf("  - [%s] %s\n", src.Corpus, src.DocumentName)
		}
	}
	if answer.CostSavingTips != "" {
		fmt.Printf("\nCost-saving tips (not from the policy documents):\n%s\n", answer.CostSavingTips)
	}

	return nil
}

// loadOrCreateSession keeps one session ID per machine so consecutive
// invocations share chat history and the sticky corpus hint.
func loadOrCreateSession() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	path := filepath.Join(home, ".poliq", "session")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to persist session ID: %w", err)
	}
	return id, nil
}
