package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ItsNotGoodName/riverbar/internal/core"
	"gopkg.in/yaml.v3"
)

// NewDriver picks the driver from the file extension, YAML when unknown.
func NewDriver(filePath string) Driver {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return NewJSON(filePath)
	case ".toml":
		return NewTOML(filePath)
	default:
		return NewYAML(filePath)
	}
}

type codec struct {
	decode func(r io.Reader, cfg *Config) error
	encode func(w io.Writer, cfg Config) error
}

type file struct {
	filePath string
	codec    codec
}

func (f file) Exists() (bool, error) {
	return core.FileExists(f.filePath)
}

// Read decodes the file over the default config, keys missing from the file keep their default.
func (f file) Read() (Config, error) {
	fd, err := os.Open(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	defer fd.Close()

	cfg := DefaultConfig()
	if err := f.codec.decode(fd, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", f.filePath, err)
	}
	return cfg, nil
}

func (f file) Write(cfg Config) error {
	filePathTmp := f.filePath + ".tmp"
	fd, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := f.codec.encode(fd, cfg); err != nil {
		fd.Close()
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, f.filePath)
}

type YAML struct{ file }

func NewYAML(filePath string) YAML {
	return YAML{file{
		filePath: filePath,
		codec: codec{
			decode: func(r io.Reader, cfg *Config) error {
				err := yaml.NewDecoder(r).Decode(cfg)
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			},
			encode: func(w io.Writer, cfg Config) error {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return err
				}
				return enc.Close()
			},
		},
	}}
}

type JSON struct{ file }

func NewJSON(filePath string) JSON {
	return JSON{file{
		filePath: filePath,
		codec: codec{
			decode: func(r io.Reader, cfg *Config) error {
				return json.NewDecoder(r).Decode(cfg)
			},
			encode: func(w io.Writer, cfg Config) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			},
		},
	}}
}

type TOML struct{ file }

func NewTOML(filePath string) TOML {
	return TOML{file{
		filePath: filePath,
		codec: codec{
			decode: func(r io.Reader, cfg *Config) error {
				_, err := toml.NewDecoder(r).Decode(cfg)
				return err
			},
			encode: func(w io.Writer, cfg Config) error {
				return toml.NewEncoder(w).Encode(cfg)
			},
		},
	}}
}
