package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gowinrt.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
metadata_paths = ["./metadata", "Extra.winmd"]
log_level = "debug"
cache_declarations = false
metrics_addr = ":9090"

[download]
package = "sample.contracts"
version = ">= 10.0"
output = "winmd"

[generate]
package = "projection"
output = "gen"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./metadata", "Extra.winmd"}, cfg.MetadataPaths)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Cache())
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, Download{Package: "sample.contracts", Version: ">= 10.0", Output: "winmd"}, cfg.Download)
	assert.Equal(t, Generate{Package: "projection", Output: "gen"}, cfg.Generate)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `metrics_addr = ""`))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, []string{DefaultMetadataPath}, cfg.MetadataPaths)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cache())
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "microsoft.windows.sdk.contracts", cfg.Download.Package)
	assert.Empty(t, cfg.Download.Version)
	assert.Equal(t, "metadata", cfg.Download.Output)
	assert.Equal(t, "winrt", cfg.Generate.Package)
	assert.Equal(t, "./output/", cfg.Generate.Output)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.toml") }, "reading config"},
		{"malformed", func(t *testing.T) string { return writeConfig(t, "metadata_paths = [") }, "parsing config"},
		{"bad level", func(t *testing.T) string { return writeConfig(t, `log_level = "loud"`) }, "unknown log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}
