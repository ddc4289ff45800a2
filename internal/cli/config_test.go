package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	want := DefaultConfig()
	if cfg.Cache.Backend != want.Cache.Backend || cfg.Serve.Addr != want.Serve.Addr {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
	if cfg.Serve.SessionTTL.Duration != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.Serve.SessionTTL.Duration)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[render]
formats = ["svg", "png"]
grid = false
scale = 3.0

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[serve]
addr = ":9090"
session_ttl = "5m"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got := strings.Join(cfg.Render.Formats, ","); got != "svg,png" {
		t.Errorf("Formats = %q", got)
	}
	if cfg.Render.Grid {
		t.Error("Grid = true, want false from file")
	}
	if !cfg.Render.FlowLabels {
		t.Error("FlowLabels lost its default")
	}
	if cfg.Cache.RedisDB != 2 || cfg.Cache.RedisPrefix != "flowcanvas:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Serve.Addr != ":9090" || cfg.Serve.SessionTTL.Duration != 5*time.Minute {
		t.Errorf("Serve = %+v", cfg.Serve)
	}

	popts := cfg.Render.pipelineOptions()
	if !popts.NoGrid || popts.NoFlowLabels || popts.Scale != 3 {
		t.Errorf("pipelineOptions() = %+v", popts)
	}
	if rc := cfg.Cache.redisConfig(); rc.Addr != "localhost:6379" || rc.DB != 2 {
		t.Errorf("redisConfig() = %+v", rc)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"unknown key", "[render]\ncolour = \"red\"\n", errors.ErrCodeInvalidInput},
		{"bad toml", "[render\n", errors.ErrCodeInvalidInput},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"bad format", "[render]\nformats = [\"gif\"]\n", errors.ErrCodeInvalidFormat},
		{"bad duration", "[serve]\nsession_ttl = \"soon\"\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("LoadConfig() succeeded")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadConfigUnknownKeyNamed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[serve]\nport = 80\n"))
	if err == nil || !strings.Contains(err.Error(), "serve.port") {
		t.Errorf("LoadConfig() error = %v, want it to name serve.port", err)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadConfig(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDurationText(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatal(err)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" {
		t.Errorf("MarshalText() = %q, want 1m30s", text)
	}
}
