package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsToMemoryDriver(t *testing.T) {
	p := &Profile{Mode: "dev"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "memory", p.Driver)
	assert.Empty(t, p.DSN)
}

func TestValidateUnknownMode(t *testing.T) {
	p := &Profile{Mode: "staging"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
}

func TestValidateSQLiteDSN(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
	require.NoError(t, p.Validate())
	assert.Contains(t, p.DSN, "watsnew_dev.db")
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := &Profile{Mode: "prod", Driver: "postgres"}
	assert.Error(t, p.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "cassandra"}
	assert.Error(t, p.Validate())
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("WATSNEW_EMBEDDING_PROVIDER", "")
	t.Setenv("WATSNEW_EMBEDDING_API_KEY", "")
	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, "openai", p.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-small", p.EmbeddingModel)
	assert.Equal(t, 1536, p.EmbeddingDim)
	assert.False(t, p.EmbeddingAPIKey != "")
}

func TestFromEnvOverride(t *testing.T) {
	t.Setenv("WATSNEW_EMBEDDING_PROVIDER", "siliconflow")
	t.Setenv("WATSNEW_EMBEDDING_MODEL", "BAAI/bge-m3")
	t.Setenv("WATSNEW_EMBEDDING_API_KEY", "sk-test")
	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, "siliconflow", p.EmbeddingProvider)
	assert.Equal(t, "BAAI/bge-m3", p.EmbeddingModel)
	assert.True(t, p.IsEmbeddingConfigured())
}
