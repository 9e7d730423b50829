package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppID_Text(t *testing.T) {
	out, err := execute(t, "appid", "10123", "1010123", "10000")
	require.NoError(t, err)
	assert.Equal(t,
		"uid=10123 user=0 app=10123\n"+
			"uid=1010123 user=10 app=10123\n"+
			"uid=10000 user=0 app=10000\n",
		out)
}

func TestAppID_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "appid", "2010045")
	require.NoError(t, err)

	var resp struct {
		Status string   `json:"status"`
		Data   UIDInfos `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, UIDInfos{{UID: 2010045, UserID: 20, AppID: 10045}}, resp.Data)
}

func TestAppID_Errors(t *testing.T) {
	_, err := execute(t, "appid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")

	_, err = execute(t, "appid", "10123", "gms")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid uid "gms"`)
}
