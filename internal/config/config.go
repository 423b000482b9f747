package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// StorageDir holds one subdirectory per corpus (index + metadata
	// artifacts). DataDir holds the raw PDFs consumed by ingest.
	StorageDir string `envconfig:"STORAGE_DIR" default:"storage"`
	DataDir    string `envconfig:"DATA_DIR" default:"data"`

	SessionDBPath string        `envconfig:"SESSION_DB" default:"sessions.db"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4.1-mini"`

	TopKPerCorpus    int `envconfig:"TOP_K_PER_CORPUS" default:"5"`
	MaxScopedCorpora int `envconfig:"MAX_SCOPED_CORPORA" default:"5"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Optional S3-compatible bucket holding corpus artifacts built
	// offline; pulled into StorageDir before the registry loads.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"poliq-corpora"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("POLIQ", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
