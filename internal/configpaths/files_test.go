package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv(EnvConfig, "")
	assert.Equal(t, "a.yaml", FindUserConfig([]string{"generate", "--config=a.yaml"}))
	assert.Equal(t, "b.toml", FindUserConfig([]string{"--config", "b.toml", "generate"}))
	assert.Equal(t, "", FindUserConfig([]string{"generate", "--config"}))

	t.Setenv(EnvConfig, "env.json")
	assert.Equal(t, "env.json", FindUserConfig([]string{"generate"}))
	assert.Equal(t, "flag.json", FindUserConfig([]string{"--config=flag.json"}))
}

func TestConfigCandidatePaths(t *testing.T) {
	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths("custom.yml")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "custom.yml", yamlPaths[0])
	assert.Equal(t, ".markergen.json", filepath.Base(jsonPaths[0]))
	assert.Equal(t, ".markergen.toml", filepath.Base(tomlPaths[0]))
	if runtime.GOOS != "windows" {
		assert.Contains(t, tomlPaths, filepath.Join("/etc/markergen", "config.toml"))
	}

	jsonPaths, _, _ = ConfigCandidatePaths("settings.conf")
	assert.Equal(t, "settings.conf", jsonPaths[0])
}

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultNamedConfigPath("generate", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "markergen", "generate.yaml"), p)
}

func TestDefaultConfigDirWithoutHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	_, err := DefaultConfigDir()
	require.Error(t, err)
	assert.Equal(t, "HOME not set", err.Error())
	assert.NotNil(t, errors.GetReportableStackTrace(err))

	_, err = DefaultNamedConfigPath("config", "json")
	assert.Error(t, err)
}
