package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) (string, func()) {
	dir, err := ioutil.TempDir("", "img4kit-config")
	require.NoError(t, err)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path, func() { os.RemoveAll(dir) }
}

func Test_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(os.TempDir(), "definitely-not-there", "config.toml"))
	require.NoError(t, err)
	assert.EqualValues(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.EqualValues(t, "none", cfg.DefaultType)
}

func Test_LoadOverrides(t *testing.T) {
	path, cleanup := writeConfig(t, `
force = true
json = true
default_type = "krnl"
`)
	defer cleanup()

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.JSON)
	assert.False(t, cfg.Verbose)
	assert.EqualValues(t, "krnl", cfg.DefaultType)
	assert.EqualValues(t, "Unknown", cfg.DefaultDescription)
}

func Test_LoadRejectsBadFiles(t *testing.T) {
	for _, contents := range []string{
		"force = = true",
		"force = \"yes please\"",
		"unknown_key = 1",
	} {
		path, cleanup := writeConfig(t, contents)
		_, err := Load(path)
		assert.Error(t, err, contents)
		cleanup()
	}
}

func Test_DefaultPathHonorsXDG(t *testing.T) {
	old := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", old)

	os.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.EqualValues(t, filepath.Join("/tmp/xdg", "img4kit", "config.toml"), DefaultPath())
}
