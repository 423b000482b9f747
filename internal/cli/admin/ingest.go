package admin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/poliq-ai/poliq/internal/config"
	"github.com/poliq-ai/poliq/internal/embedding"
	"github.com/poliq-ai/poliq/internal/ingest"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build corpus artifacts from policy PDFs",
		Long:  "Build one corpus per subdirectory of the data directory and write index and metadata artifacts to the storage directory",
		RunE:  runIngest,
	}

	cmd.Flags().String("data", "", "Data directory holding one subdirectory of PDFs per corpus (defaults to POLIQ_DATA_DIR)")
	cmd.Flags().String("storage", "", "Storage directory to write corpus artifacts to (defaults to POLIQ_STORAGE_DIR)")
	cmd.Flags().String("corpus", "", "Build only the named corpus instead of every data subdirectory")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataRoot, _ := cmd.Flags().GetString("data")
	if dataRoot == "" {
		dataRoot = cfg.DataDir
	}
	storageRoot, _ := cmd.Flags().GetString("storage")
	if storageRoot == "" {
		storageRoot = cfg.StorageDir
	}

	if !cfg.HasOpenAI() {
		return embedding.ErrNoAPIKey
	}
	encoder := embedding.NewClientWithConfig(embedding.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  openai.EmbeddingModel(cfg.EmbeddingModel),
	})

	builder := ingest.NewBuilder(encoder, ingest.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})

	if corpus, _ := cmd.Flags().GetString("corpus"); corpus != "" {
		name := strings.ToLower(corpus)
		return builder.BuildCorpus(ctx, name, filepath.Join(dataRoot, corpus), storageRoot)
	}
	return builder.BuildAll(ctx, dataRoot, storageRoot)
}
