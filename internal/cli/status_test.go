package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusConfig = `audio_enhancement_package: ""
packages:
  com.google.android.gms: 1010123
`

func TestStatus_JSON(t *testing.T) {
	path, db := writeConfig(t, statusConfig)
	_, err := execute(t, "-c", path, "settings", "set", "aggressive_idle", "true")
	require.NoError(t, err)

	out, err := execute(t, "-c", path, "--format", "json", "status")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   StatusResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	got := resp.Data
	assert.Equal(t, db, got.Database)
	assert.Equal(t, map[string]string{"privileged": "com.google.android.gms"}, got.Bindings)
	assert.False(t, got.State.Ready)
	assert.Equal(t, 1010123, got.State.PrivilegedUID)
	assert.Equal(t, 10123, got.State.PrivilegedAppID)
	assert.Equal(t, -1, got.State.AudioUID)
	assert.True(t, got.State.AggressiveIdle)
	assert.True(t, got.State.EnergySaveMode)
}

func TestStatus_Text(t *testing.T) {
	path, _ := writeConfig(t, statusConfig)
	_, err := execute(t, "-c", path, "settings", "set", "extreme_idle", "false")
	require.NoError(t, err)

	out, err := execute(t, "-c", path, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "ready:             false\n")
	assert.Contains(t, out, "privileged:        com.google.android.gms uid=1010123 app=10123\n")
	assert.Contains(t, out, "audio enhancement: (none) uid=-1 app=-1\n")
	assert.Contains(t, out, "energy save mode:                false\n")
}

func TestStatus_MissingDatabase(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "-c", path, "status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
