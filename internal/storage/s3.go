// Package storage pulls prebuilt corpus artifacts from an S3-compatible
// bucket into the local storage root. Indexes are built offline by the
// ingest pipeline and shipped through the bucket; the daemon syncs them
// before the registry loads.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ClientConfig holds configuration for S3Client
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3Client provides operations for S3-compatible storage
type S3Client struct {
	client *s3.Client
	bucket string
}

// NewS3Client creates a new S3Client with the given configuration
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*S3Client, error) {
	// Custom resolver for S3-compatible endpoints
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{client: client, bucket: cfg.Bucket}, nil
}

// SyncCorpora downloads every corpus artifact in the bucket into
// localRoot, preserving the <corpus>/<artifact> layout the registry
// expects. Keys that do not look like corpus artifacts are ignored.
func (c *S3Client) SyncCorpora(ctx context.Context, localRoot string) error {
	if err := os.MkdirAll(localRoot, 0o755); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}

	synced := 0
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list bucket %s: %w", c.bucket, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isArtifactKey(key) {
				continue
			}
			if err := c.downloadObject(ctx, key, localRoot); err != nil {
				return err
			}
			synced++
		}
	}

	log.Printf("storage: synced %d corpus artifacts from bucket %s", synced, c.bucket)
	return nil
}

func (c *S3Client) downloadObject(ctx context.Context, key, localRoot string) error {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	local := filepath.Join(localRoot, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", local, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	return nil
}

// isArtifactKey accepts keys shaped <corpus>/<artifact file>.
func isArtifactKey(key string) bool {
	if strings.Count(key, "/") != 1 || strings.HasSuffix(key, "/") {
		return false
	}
	switch path.Ext(key) {
	case ".db", ".json":
		return true
	}
	return false
}
