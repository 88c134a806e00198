package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver(t *testing.T) {
	assert.IsType(t, YAML{}, NewDriver("riverbar.yaml"))
	assert.IsType(t, YAML{}, NewDriver(".riverbar"))
	assert.IsType(t, JSON{}, NewDriver("riverbar.JSON"))
	assert.IsType(t, TOML{}, NewDriver("riverbar.toml"))
}

func TestStoreWritesDefault(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			store, err := NewStore(NewDriver(path))
			require.NoError(t, err)
			assert.FileExists(t, path)

			cfg, err := store.GetConfig()
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestStoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "X11"
max_outputs = 100

[layout]
block_padding = 4

[colors]
block = "#112233"
`), 0600))

	store, err := NewStore(NewDriver(path))
	require.NoError(t, err)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, BackendX11, cfg.Backend)
	assert.Equal(t, 16, cfg.MaxOutputs)
	assert.Equal(t, 4, cfg.Layout.BlockPadding)
	assert.Equal(t, 0.015, cfg.Layout.TagWidthPercent)
	assert.Equal(t, "#000000", cfg.Colors.Background)

	theme, err := cfg.Theme()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}, theme.Block)
}

func TestStoreLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: gtk\ncolors:\n  title: green\n"), 0600))

	store, err := NewStore(NewDriver(path))
	require.NoError(t, err)

	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
	assert.Contains(t, err.Error(), "colors.title")
}

func TestReadEmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	cfg, err := NewYAML(path).Read()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), Normalize(cfg))
}

func TestReadKeepsDefaultsForMissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		padding int
		title   string
	}{
		{"config.yaml", "layout:\n  height_percent: 0.02\n", 10, "riverbar"},
		{"config.yaml", "title: \"\"\nlayout:\n  block_padding: 0\n", 0, ""},
		{"config.json", `{"layout": {"tag_width_percent": 0.02}}`, 10, "riverbar"},
		{"config.json", `{"layout": {"block_padding": 0}}`, 0, "riverbar"},
		{"config.toml", "[layout]\nheight_percent = 0.02\n", 10, "riverbar"},
		{"config.toml", "[layout]\nblock_padding = 0\n", 0, "riverbar"},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), tt.name)
		require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

		cfg, err := NewDriver(path).Read()
		require.NoError(t, err, tt.content)
		cfg = Normalize(cfg)
		assert.Equal(t, tt.padding, cfg.Layout.BlockPadding, tt.content)
		assert.Equal(t, tt.title, cfg.Title, tt.content)
		assert.Equal(t, DefaultConfig().Colors, cfg.Colors, tt.content)
	}
}

func TestReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := NewJSON(path).Read()
	assert.Error(t, err)
}

func TestUpdateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := NewStore(NewDriver(path))
	require.NoError(t, err)

	require.NoError(t, store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.Title = "changed"
		return cfg, nil
	}))

	cfg, err := store.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "changed", cfg.Title)
}
