package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPassesValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadOversampling(t *testing.T) {
	cfg := Default()
	cfg.FreqOSR = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedBand(t *testing.T) {
	cfg := Default()
	cfg.FreqMin = 3000
	cfg.FreqMax = 300
	assert.Error(t, cfg.Validate())
}

func TestLoadParsesSyncModeFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte("sync_mode: in_band_snr\nmax_candidates: 10\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SyncModeInBandSNR, cfg.SyncMode)
	assert.Equal(t, 10, cfg.MaxCand)
	// Untouched fields should keep their defaults.
	assert.Equal(t, Default().FreqOSR, cfg.FreqOSR)
}

func TestSyncModeRejectsUnknownString(t *testing.T) {
	_, err := syncModeFromString("bogus")
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
