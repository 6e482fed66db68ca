package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsMissingBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Cloud.Bucket = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsZeroMinChunkSize(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Engine.MinChunkSize = 0
	assert.Error(t, Validate(cfg))
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Cloud.Bucket = "roundtrip-bucket"
	cfg.Database.Path = "/tmp/storageengine/roundtrip.db"

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip-bucket", loaded.Cloud.Bucket)
	assert.Equal(t, "/tmp/storageengine/roundtrip.db", loaded.Database.Path)
}
