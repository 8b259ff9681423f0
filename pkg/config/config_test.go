package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PUBLIC_DATA_API_KEY", "PUBLIC_DATA_EMERGENCY_KEY", "PUBLIC_DATA_PHARMACY_KEY",
		"PUBLIC_DATA_FORMAT", "PUBLIC_DATA_ROWS", "PUBLIC_DATA_TIMEOUT", "SERVER_PORT",
		"ALLOWED_ORIGINS", "SERVICE_TIMEZONE", "REGISTRY_CSV_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "data/hospitals.csv", cfg.Registry.CSVPath)
	assert.Equal(t, defaultEmergencyFeedURL, cfg.PublicData.EmergencyURL)
	assert.Equal(t, defaultPharmacyFeedURL, cfg.PublicData.PharmacyURL)
	assert.Equal(t, "인천광역시", cfg.PublicData.Region)
	assert.Equal(t, 100, cfg.PublicData.NumOfRows)
	assert.Equal(t, "xml", cfg.PublicData.Format)
	assert.Equal(t, 5*time.Second, cfg.PublicData.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Local, cfg.Server.Location())
}

func TestLoad_SharedKeyFallsBackPerFeed(t *testing.T) {
	t.Setenv("PUBLIC_DATA_API_KEY", "shared")
	t.Setenv("PUBLIC_DATA_EMERGENCY_KEY", "")
	t.Setenv("PUBLIC_DATA_PHARMACY_KEY", "pharmacy-only")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shared", cfg.PublicData.EmergencyKey)
	assert.Equal(t, "pharmacy-only", cfg.PublicData.PharmacyKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("PUBLIC_DATA_FORMAT", "JSON")
	t.Setenv("PUBLIC_DATA_TIMEOUT", "2500ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SERVICE_TIMEZONE", "Asia/Seoul")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "json", cfg.PublicData.Format)
	assert.Equal(t, 2500*time.Millisecond, cfg.PublicData.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "Asia/Seoul", cfg.Server.Location().String())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("PUBLIC_DATA_FORMAT", "csv")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PUBLIC_DATA_FORMAT", "xml")
	t.Setenv("SERVICE_TIMEZONE", "Not/AZone")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CAREFINDER_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CAREFINDER_TEST_KEY") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("CAREFINDER_TEST_KEY"))
}
