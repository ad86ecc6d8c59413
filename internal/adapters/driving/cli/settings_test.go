package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCmd_ShowsDefaults(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "settings", "--config-dir", dir)
	require.NoError(t, err)
	t.Cleanup(func() { configDir = "" })

	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
	assert.Contains(t, out, "Provider: static")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Backend: memory")
}

func TestSettingsCmd_ReflectsConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := `
[generation]
provider = "ollama"
model = "mistral"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(config), 0o600))

	out, err := execute(t, "settings", "--config-dir", dir)
	require.NoError(t, err)
	t.Cleanup(func() { configDir = "" })

	assert.Contains(t, out, "Provider: ollama")
	assert.Contains(t, out, "Model: mistral")
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: "(not set)"},
		{name: "short key", input: "abc123", expected: "****"},
		{name: "exactly 8 chars", input: "12345678", expected: "****"},
		{name: "long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}
