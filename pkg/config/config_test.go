package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Output.Root)
	assert.Equal(t, "", cfg.Cache.Dir)
	assert.Equal(t, 0, cfg.Logging.Verbosity)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[output]
root = "/build/merged"

[logging]
verbosity = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/build/merged", cfg.Output.Root)
	assert.Equal(t, 2, cfg.Logging.Verbosity)
	// Untouched sections keep their defaults.
	assert.Equal(t, "", cfg.Cache.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[output]
root = "/from/file"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	t.Setenv("RESMERGE_CFG_OUTPUT_ROOT", "/from/env")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Output.Root)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("not [valid toml"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()

	assert.Contains(t, content, "[output]")
	assert.Contains(t, content, "# root = ")
	// No uncommented assignments survive.
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
			continue
		}
		t.Errorf("unexpected uncommented line: %q", line)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := &Config{
		Output:  OutputConfig{Root: "/build/merged"},
		Cache:   CacheConfig{Dir: "/var/cache/resmerge", UnitLabel: "app"},
		Logging: LoggingConfig{Verbosity: 1},
	}

	out, err := Marshal(cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "root = '/build/merged'")
	assert.Contains(t, out, "unit_label = 'app'")
}
