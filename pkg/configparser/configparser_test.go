package configparser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	App struct {
		Name    string        `env:"TEST_APP_NAME" default:"kpis"`
		Workers int           `env:"TEST_APP_WORKERS" default:"2"`
		Ratio   float64       `env:"TEST_APP_RATIO"`
		Timeout time.Duration `env:"TEST_APP_TIMEOUT" default:"5s"`
		Enabled bool          `env:"TEST_APP_ENABLED"`
	}
	Untagged string
	hidden   string
}

// clearEnv registers keys with t.Setenv so anything the loader exports is restored.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseEnvDefaults(t *testing.T) {
	clearEnv(t, "TEST_APP_NAME", "TEST_APP_WORKERS", "TEST_APP_RATIO", "TEST_APP_TIMEOUT", "TEST_APP_ENABLED")

	cfg := testConfig{hidden: "kept"}
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}

	if cfg.hidden != "kept" || cfg.Untagged != "" {
		t.Errorf("unexported or untagged fields touched: %+v", cfg)
	}
	if cfg.App.Name != "kpis" || cfg.App.Workers != 2 || cfg.App.Timeout != 5*time.Second {
		t.Errorf("defaults not applied: %+v", cfg.App)
	}
	if cfg.App.Ratio != 0 || cfg.App.Enabled {
		t.Errorf("untagged defaults should stay zero: %+v", cfg.App)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "override")
	t.Setenv("TEST_APP_WORKERS", "8")
	t.Setenv("TEST_APP_RATIO", "0.25")
	t.Setenv("TEST_APP_TIMEOUT", "1m")
	t.Setenv("TEST_APP_ENABLED", "true")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}

	if cfg.App.Name != "override" || cfg.App.Workers != 8 || cfg.App.Ratio != 0.25 ||
		cfg.App.Timeout != time.Minute || !cfg.App.Enabled {
		t.Errorf("overrides not applied: %+v", cfg.App)
	}
}

func TestParseEnvErrors(t *testing.T) {
	t.Run("not a pointer", func(t *testing.T) {
		if err := ParseEnv(testConfig{}); !errors.Is(err, ErrNotStructPointer) {
			t.Errorf("err = %v, want ErrNotStructPointer", err)
		}
	})

	t.Run("bad int", func(t *testing.T) {
		t.Setenv("TEST_APP_WORKERS", "many")
		var cfg testConfig
		if err := ParseEnv(&cfg); err == nil {
			t.Error("expected error for non-numeric int")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TEST_APP_TIMEOUT", "soon")
		var cfg testConfig
		if err := ParseEnv(&cfg); err == nil {
			t.Error("expected error for bad duration")
		}
	})
}

func TestLoadYamlFile(t *testing.T) {
	clearEnv(t, "TEST_APP_NAME", "TEST_APP_WORKERS", "TEST_APP_RATIO", "TEST_APP_TIMEOUT", "TEST_APP_ENABLED", "TEST_FROM_ENV")
	t.Setenv("TEST_FROM_ENV", "from-env")

	path := writeFile(t, `
# comment line
test:
  app:
    name: "yaml-name" # trailing comment
    workers: 4
    ratio: ${TEST_MISSING_VAR:-0.5}
    timeout: ${TEST_FROM_ENV}
    enabled: 'true'
`)

	if err := LoadYamlFile(path); err != nil {
		t.Fatalf("LoadYamlFile: %v", err)
	}

	want := map[string]string{
		"TEST_APP_NAME":    "yaml-name",
		"TEST_APP_WORKERS": "4",
		"TEST_APP_RATIO":   "0.5",
		"TEST_APP_TIMEOUT": "from-env",
		"TEST_APP_ENABLED": "true",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestLoadYamlFileKeepsExistingEnv(t *testing.T) {
	clearEnv(t, "TEST_APP_WORKERS")
	t.Setenv("TEST_APP_NAME", "preset")

	path := writeFile(t, "test:\n  app:\n    name: yaml\n    workers: 3\n")
	if err := LoadYamlFile(path); err != nil {
		t.Fatalf("LoadYamlFile: %v", err)
	}

	if got := os.Getenv("TEST_APP_NAME"); got != "preset" {
		t.Errorf("TEST_APP_NAME = %q, want preset", got)
	}
	if got := os.Getenv("TEST_APP_WORKERS"); got != "3" {
		t.Errorf("TEST_APP_WORKERS = %q, want 3", got)
	}
}

func TestLoadAndParseYamlMissingFile(t *testing.T) {
	clearEnv(t, "TEST_APP_NAME", "TEST_APP_WORKERS", "TEST_APP_RATIO", "TEST_APP_TIMEOUT", "TEST_APP_ENABLED")

	var cfg testConfig
	if err := LoadAndParseYaml(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.App.Name != "kpis" {
		t.Errorf("name = %q, want default", cfg.App.Name)
	}

	if err := LoadAndParseYaml("", &cfg); err != nil {
		t.Errorf("empty path should fall back to defaults: %v", err)
	}
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"key: value # note", "key: value "},
		{"key: \"a # b\"", "key: \"a # b\""},
		{"key: 'x#y'", "key: 'x#y'"},
		{"url: http://host/#frag", "url: http://host/#frag"},
		{"# whole line", ""},
	}

	for _, tt := range tests {
		if got := stripComment(tt.in); got != tt.want {
			t.Errorf("stripComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
