package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/docsy/combinator"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecode(t *testing.T) {
	want := &Config{
		Parser: ParserConfig{MaxDepth: 100},
		Resolve: ResolveConfig{Globals: map[string]any{
			"color": "Blue",
			"count": 3.0,
			"user":  map[string]any{"name": "Ada", "tags": []any{"a", "b"}},
		}},
		Log: LogConfig{Verbosity: 2},
	}

	tests := []struct {
		ext  string
		data string
	}{
		{".toml", `
[parser]
max_depth = 100

[log]
verbosity = 2

[resolve.globals]
color = "Blue"
count = 3

[resolve.globals.user]
name = "Ada"
tags = ["a", "b"]
`},
		{".yaml", `
parser:
  max_depth: 100
log:
  verbosity: 2
resolve:
  globals:
    color: Blue
    count: 3
    user:
      name: Ada
      tags: [a, b]
`},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, err := Decode([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeDefaults(t *testing.T) {
	got, err := Decode([]byte("[log]\nverbosity = 1\n"), ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if got.Parser.MaxDepth != combinator.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d", got.Parser.MaxDepth)
	}
	if got.Resolve.Globals == nil {
		t.Error("Globals should not be nil")
	}

	if _, err := Decode([]byte("{}"), ".json"); err == nil {
		t.Error("expected an error for an unknown extension")
	}
	if _, err := Decode([]byte("parser = ["), ".toml"); err == nil {
		t.Error("expected a decode error")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(root, "docsy.yaml"), "parser:\n  max_depth: 7\n")
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parser.MaxDepth != 7 || cfg.Path != filepath.Join(root, "docsy.yaml") {
		t.Errorf("got %+v", cfg)
	}

	writeFile(t, filepath.Join(root, "a", ".docsy.toml"), "[parser]\nmax_depth = 9\n")
	cfg, err = Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parser.MaxDepth != 9 {
		t.Errorf("nearest file should win, got %+v", cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error")
	}
}
