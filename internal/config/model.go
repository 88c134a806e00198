package config

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/ItsNotGoodName/riverbar/internal/core"
	"github.com/ItsNotGoodName/riverbar/internal/render"
)

const (
	BackendAuto    = "auto"
	BackendWayland = "wayland"
	BackendX11     = "x11"
)

var backends = []string{BackendAuto, BackendWayland, BackendX11}

func DefaultConfig() Config {
	return Config{
		Backend:    BackendAuto,
		MaxOutputs: 3,
		Title:      "riverbar",
		Font: Font{
			Size: 10,
			DPI:  96,
		},
		Layout: Layout{
			HeightPercent:   0.015,
			TagWidthPercent: 0.015,
			BlockPadding:    10,
		},
		Colors: Colors{
			Background: "#000000",
			Block:      "#ff0000",
			Title:      "#00ff00",
			Tag:        "#ffffff",
			TagFocused: "#0000ff",
			TagText:    "#000000",
		},
	}
}

type Config struct {
	Backend    string `json:"backend" yaml:"backend" toml:"backend"`
	MaxOutputs int    `json:"max_outputs" yaml:"max_outputs" toml:"max_outputs"`
	Title      string `json:"title" yaml:"title" toml:"title"`
	Font       Font   `json:"font" yaml:"font" toml:"font"`
	Layout     Layout `json:"layout" yaml:"layout" toml:"layout"`
	Colors     Colors `json:"colors" yaml:"colors" toml:"colors"`
}

type Font struct {
	// Path of a TrueType or OpenType file, empty is Go Mono Bold.
	Path string  `json:"path" yaml:"path" toml:"path"`
	Size float64 `json:"size" yaml:"size" toml:"size"`
	DPI  float64 `json:"dpi" yaml:"dpi" toml:"dpi"`
}

type Layout struct {
	HeightPercent   float64 `json:"height_percent" yaml:"height_percent" toml:"height_percent"`
	TagWidthPercent float64 `json:"tag_width_percent" yaml:"tag_width_percent" toml:"tag_width_percent"`
	BlockPadding    int     `json:"block_padding" yaml:"block_padding" toml:"block_padding"`
}

type Colors struct {
	Background string `json:"background" yaml:"background" toml:"background"`
	Block      string `json:"block" yaml:"block" toml:"block"`
	Title      string `json:"title" yaml:"title" toml:"title"`
	Tag        string `json:"tag" yaml:"tag" toml:"tag"`
	TagFocused string `json:"tag_focused" yaml:"tag_focused" toml:"tag_focused"`
	TagText    string `json:"tag_text" yaml:"tag_text" toml:"tag_text"`
}

// Normalize fills unset values with defaults and clamps the rest into range.
// A zero block padding is valid and kept.
func Normalize(cfg Config) Config {
	def := DefaultConfig()

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.MaxOutputs == 0 {
		cfg.MaxOutputs = def.MaxOutputs
	}
	cfg.MaxOutputs = core.Clamp(cfg.MaxOutputs, 1, 16)

	if cfg.Font.Size <= 0 {
		cfg.Font.Size = def.Font.Size
	}
	if cfg.Font.DPI <= 0 {
		cfg.Font.DPI = def.Font.DPI
	}

	if cfg.Layout.HeightPercent <= 0 {
		cfg.Layout.HeightPercent = def.Layout.HeightPercent
	}
	cfg.Layout.HeightPercent = core.Clamp(cfg.Layout.HeightPercent, 0, 1)
	if cfg.Layout.TagWidthPercent <= 0 {
		cfg.Layout.TagWidthPercent = def.Layout.TagWidthPercent
	}
	cfg.Layout.TagWidthPercent = core.Clamp(cfg.Layout.TagWidthPercent, 0, 1)
	cfg.Layout.BlockPadding = max(cfg.Layout.BlockPadding, 0)

	colors := []struct{ value, fallback *string }{
		{&cfg.Colors.Background, &def.Colors.Background},
		{&cfg.Colors.Block, &def.Colors.Block},
		{&cfg.Colors.Title, &def.Colors.Title},
		{&cfg.Colors.Tag, &def.Colors.Tag},
		{&cfg.Colors.TagFocused, &def.Colors.TagFocused},
		{&cfg.Colors.TagText, &def.Colors.TagText},
	}
	for _, c := range colors {
		if *c.value == "" {
			*c.value = *c.fallback
		}
	}

	return cfg
}

func (cfg Config) Validate() error {
	var errs []error
	if !slices.Contains(backends, cfg.Backend) {
		errs = append(errs, fmt.Errorf("backend: %q is not one of %v", cfg.Backend, backends))
	}
	if _, err := cfg.Theme(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (cfg Config) Theme() (render.Theme, error) {
	var theme render.Theme
	colors := []struct {
		name  string
		value string
		dst   *color.RGBA
	}{
		{"background", cfg.Colors.Background, &theme.Background},
		{"block", cfg.Colors.Block, &theme.Block},
		{"title", cfg.Colors.Title, &theme.Title},
		{"tag", cfg.Colors.Tag, &theme.Tag},
		{"tag_focused", cfg.Colors.TagFocused, &theme.TagFocused},
		{"tag_text", cfg.Colors.TagText, &theme.TagText},
	}

	var errs []error
	for _, c := range colors {
		parsed, err := render.ParseColor(c.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("colors.%s: %w", c.name, err))
			continue
		}
		*c.dst = parsed
	}

	return theme, errors.Join(errs...)
}

func (cfg Config) RenderLayout() render.Layout {
	return render.Layout{
		HeightPercent:   cfg.Layout.HeightPercent,
		TagWidthPercent: cfg.Layout.TagWidthPercent,
		BlockPadding:    cfg.Layout.BlockPadding,
	}
}
