package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
)

const testRegistry = "요양기관명,주소,전화번호,좌표(X),좌표(Y)\n" +
	"Clinic A,1 Main St,032-000-0001,126.7052,37.4563\n" +
	"Clinic B,2 Main St,,126.7052,37.4663\n" +
	"Broken,3 Main St,,,\n"

const testEmergencyFeed = `<response><header><resultCode>00</resultCode></header><body><items>
<item><dutyName>Clinic A</dutyName><hvec>2</hvec></item>
</items></body></response>`

// setupEnv points the configuration at a temp registry and a fake feed server.
func setupEnv(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "hospitals.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testRegistry), 0o600))

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testEmergencyFeed))
	}))
	t.Cleanup(feed.Close)

	t.Setenv("REGISTRY_CSV_PATH", csvPath)
	t.Setenv("PUBLIC_DATA_EMERGENCY_URL", feed.URL)
	t.Setenv("PUBLIC_DATA_PHARMACY_URL", feed.URL)
	t.Setenv("PUBLIC_DATA_API_KEY", "test-key")
	t.Setenv("PUBLIC_DATA_FORMAT", "xml")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OTEL_ENABLED", "false")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestHospitalsCommand_PrintsJSON(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "hospitals", "--lat", "37.4563", "--lon", "126.7052")
	require.NoError(t, err)

	var got []entities.FacilityRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Clinic A", got[0].Name)
	assert.Equal(t, "Clinic B", got[1].Name)
}

func TestHospitalsCommand_KeywordAndRadius(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "hospitals", "--lat", "37.4563", "--lon", "126.7052", "--keyword", "B", "--radius", "0.5")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestHospitalsCommand_RequiresOrigin(t *testing.T) {
	setupEnv(t)

	_, _, err := run(t, "hospitals", "--lat", "37.4563")
	assert.Error(t, err)
}

func TestEmergencyCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "emergency", "--lat", "37.4563", "--lon", "126.7052")
	require.NoError(t, err)

	var got []entities.FacilityRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, entities.StatusAvailable, got[0].Status)
	require.NotNil(t, got[0].AvailableBeds)
	assert.Equal(t, 2, *got[0].AvailableBeds)
}

func TestRegistryCheckCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "registry", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:  2")
	assert.Contains(t, out, "Skipped:  1")
}

func TestRegistryCheckCommand_MissingFile(t *testing.T) {
	setupEnv(t)
	t.Setenv("REGISTRY_CSV_PATH", filepath.Join(t.TempDir(), "missing.csv"))

	_, _, err := run(t, "registry", "check")
	assert.Error(t, err)
}

func TestAskCommand_WithoutKey(t *testing.T) {
	setupEnv(t)

	_, _, err := run(t, "ask", "머리가", "아파요")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advisory service unavailable")
}
