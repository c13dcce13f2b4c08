package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursetutor/internal/llm"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "units.toml", cfg.CatalogPath)
	assert.Equal(t, llm.DefaultModel, cfg.Model)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 120, cfg.ChunkOverlap)
	assert.Equal(t, 6000, cfg.ContextBudget)
	assert.Equal(t, 20, cfg.MaxCallsPerMinute)
	assert.InDelta(t, -1, cfg.Temperature, 1e-9)
	assert.False(t, cfg.UseQdrant)
	assert.False(t, cfg.UseGitHub)

	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TUTOR_MODEL", "gpt-4o-mini")
	t.Setenv("TUTOR_TOP_K", "8")
	t.Setenv("TUTOR_CHUNK_SIZE", "500")
	t.Setenv("TUTOR_CHUNK_OVERLAP", "50")
	t.Setenv("TUTOR_TEMPERATURE", "0.2")
	t.Setenv("TUTOR_RESET_ON_UNIT_CHANGE", "true")
	t.Setenv("TUTOR_USE_QDRANT", "true")
	t.Setenv("QDRANT_HOST", "qdrant.internal")

	cfg := FromEnv()

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 8, cfg.TopK)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.True(t, cfg.ResetOnUnitChange)
	assert.True(t, cfg.UseQdrant)
	assert.Equal(t, "qdrant.internal", cfg.QdrantHost)

	require.NoError(t, cfg.Validate())
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("TUTOR_TOP_K", "many")
	t.Setenv("TUTOR_TEMPERATURE", "warm")

	cfg := FromEnv()
	assert.Equal(t, 4, cfg.TopK)
	assert.InDelta(t, -1, cfg.Temperature, 1e-9)
}

func TestValidate(t *testing.T) {
	valid := FromEnv()

	t.Run("unsupported model", func(t *testing.T) {
		cfg := valid
		cfg.Model = "gpt-2"
		assert.ErrorIs(t, cfg.Validate(), llm.ErrUnsupportedModel)
	})

	t.Run("overlap at least chunk size", func(t *testing.T) {
		cfg := valid
		cfg.ChunkSize = 100
		cfg.ChunkOverlap = 100
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative overlap", func(t *testing.T) {
		cfg := valid
		cfg.ChunkOverlap = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero top-k", func(t *testing.T) {
		cfg := valid
		cfg.TopK = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("github without owner", func(t *testing.T) {
		cfg := valid
		cfg.UseGitHub = true
		cfg.GitHubRepo = "course-notes"
		assert.Error(t, cfg.Validate())
	})
}
