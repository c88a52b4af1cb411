// Package config loads docsy.toml and docsy.yaml project files.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/docsy/combinator"
)

// Names lists the file names Discover looks for, in order.
var Names = []string{".docsy.toml", "docsy.toml", ".docsy.yaml", "docsy.yaml"}

// Config holds the settings shared by the docsy commands.
type Config struct {
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Resolve ResolveConfig `toml:"resolve" yaml:"resolve"`
	Log     LogConfig     `toml:"log" yaml:"log"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

// ParserConfig holds parser limits.
type ParserConfig struct {
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// ResolveConfig holds the globals made available to documents.
type ResolveConfig struct {
	Globals map[string]any `toml:"globals" yaml:"globals"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Parser:  ParserConfig{MaxDepth: combinator.DefaultMaxDepth},
		Resolve: ResolveConfig{Globals: map[string]any{}},
	}
}

// Load reads the configuration at path. The format is chosen by the file
// extension: .toml, or .yaml and .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Decode parses data in the format named by ext, applying defaults for
// unset values.
func Decode(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if cfg.Parser.MaxDepth <= 0 {
		cfg.Parser.MaxDepth = combinator.DefaultMaxDepth
	}
	if cfg.Resolve.Globals == nil {
		cfg.Resolve.Globals = map[string]any{}
	}
	cfg.Resolve.Globals = normalize(cfg.Resolve.Globals).(map[string]any)
	if cfg.Log.File != "" {
		cfg.Log.File = os.ExpandEnv(cfg.Log.File)
	}
	return cfg, nil
}

// Discover looks for a configuration file in dir and its parents and loads
// the first one found. It returns Default when there is none.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Find returns the path of the nearest configuration file, or "" when
// there is none between dir and the file system root.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	for {
		for _, name := range Names {
			path := filepath.Join(dir, name)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// normalize converts decoded numbers to float64 and nested maps to
// map[string]any so globals have the same shape as resolved values.
func normalize(v any) any {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	}
	return v
}
