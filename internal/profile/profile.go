package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where watsnew stores its catalog snapshot
	DSN string
	// Driver is the catalog snapshot driver (memory, sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Embedding configuration
	EmbeddingProvider string // WATSNEW_EMBEDDING_PROVIDER (default: openai)
	EmbeddingModel    string // WATSNEW_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingDim      int    // WATSNEW_EMBEDDING_DIM (default: 1536)
	EmbeddingAPIKey   string // WATSNEW_EMBEDDING_API_KEY
	EmbeddingBaseURL  string // WATSNEW_EMBEDDING_BASE_URL (default: https://api.openai.com/v1)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsEmbeddingConfigured returns true if an embedding backend can be reached.
func (p *Profile) IsEmbeddingConfigured() bool {
	return p.EmbeddingAPIKey != "" || p.EmbeddingBaseURL != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from WATSNEW_* environment variables.
func (p *Profile) FromEnv() {
	p.EmbeddingProvider = getEnvOrDefault("WATSNEW_EMBEDDING_PROVIDER", "openai")
	p.EmbeddingModel = getEnvOrDefault("WATSNEW_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingAPIKey = os.Getenv("WATSNEW_EMBEDDING_API_KEY")
	p.EmbeddingBaseURL = getEnvOrDefault("WATSNEW_EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	if p.EmbeddingDim == 0 {
		p.EmbeddingDim = 1536
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "", "memory":
		p.Driver = "memory"
		return nil
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported catalog driver %q", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("watsnew_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
