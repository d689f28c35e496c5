package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store holds debugging artifacts: raw model output and validator errors
// archived when a pipeline run fails.
type Store interface {
	// Save stores an artifact and returns the storage path.
	Save(ctx context.Context, artifactID uuid.UUID, name string, data io.Reader) (string, error)

	// Load retrieves an artifact by storage path.
	Load(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes an artifact by storage path.
	Delete(ctx context.Context, storagePath string) error
}

// StoreType represents the storage backend type.
type StoreType string

const (
	StoreTypeLocal StoreType = "local"
	StoreTypeS3    StoreType = "s3"
)

// StoreConfig holds configuration for the artifact store.
type StoreConfig struct {
	Type         StoreType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStore creates a store instance based on configuration.
func NewStore(cfg StoreConfig) (Store, error) {
	switch cfg.Type {
	case StoreTypeLocal:
		return NewLocalStore(cfg.LocalPath)
	case StoreTypeS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStoreFromEnv creates a store instance from environment variables.
func NewStoreFromEnv() (Store, error) {
	storeType := os.Getenv("ARTIFACT_STORE_TYPE")
	if storeType == "" {
		storeType = "local" // Default to local for development
	}

	cfg := StoreConfig{
		Type: StoreType(storeType),
	}

	switch StoreType(storeType) {
	case StoreTypeLocal:
		localPath := os.Getenv("ARTIFACT_STORE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/artifacts"
		}
		cfg.LocalPath = localPath
		return NewLocalStore(cfg.LocalPath)

	case StoreTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Store(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storeType)
	}
}

// artifactPath builds a unique storage path for an artifact, sharded by the
// first two characters of the id.
func artifactPath(artifactID uuid.UUID, name string) string {
	ext := filepath.Ext(name)
	baseName := strings.TrimSuffix(name, ext)
	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = strings.ReplaceAll(baseName, "/", "_")
	baseName = strings.ReplaceAll(baseName, "\\", "_")

	return fmt.Sprintf("%s/%s_%s%s", artifactID.String()[:2], artifactID.String(), baseName, ext)
}
