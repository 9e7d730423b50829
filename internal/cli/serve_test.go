package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devpolicy/internal/settings"
)

func TestServe_SeedsAndShutsDown(t *testing.T) {
	path, _ := writeConfig(t, "listen: 127.0.0.1:0\nsettings:\n  extreme_idle: true\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	logs := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(logs)
	cmd.SetArgs([]string{"-c", path, "serve"})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, logs.String(), "settings loaded")
	assert.Contains(t, logs.String(), "shutting down")

	out, err := execute(t, "-c", path, "--format", "json", "settings", "get", "extreme_idle")
	require.NoError(t, err)
	var got struct {
		Data SettingView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, SettingView{Key: settings.ExtremeIdle, Value: true, Stored: true, Seq: 2}, got.Data,
		"defaults are seeded in key order")
}

func TestServe_ListenFailure(t *testing.T) {
	path, _ := writeConfig(t, "")

	_, err := execute(t, "-c", path, "serve", "--listen", "127.0.0.1:99999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "serve failed")
}

func TestServe_Flags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	listen := serveCmd.Flags().Lookup("listen")
	require.NotNil(t, listen)
	assert.Equal(t, "", listen.DefValue)

	boot := serveCmd.Flags().Lookup("boot-completed")
	require.NotNil(t, boot)
	assert.Equal(t, "true", boot.DefValue)
}
