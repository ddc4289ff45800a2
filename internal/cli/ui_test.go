package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterStats(t *testing.T) {
	tests := []struct {
		name    string
		skipped int
		cached  bool
		want    string
	}{
		{"fresh", 0, false, "4 blocks · 3 routes · fresh"},
		{"cached with skipped", 1, true, "4 blocks · 3 routes · 1 skipped · cached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newPrinter(&buf).stats(4, 3, tt.skipped, tt.cached)
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("stats() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinterLines(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.success("Cleared %d cached entries", 3)
	p.warning("%d skipped", 1)
	p.file("out/flow.svg")
	p.nextStep("Inspect routes", "flowcanvas routes g.toml")

	want := []string{
		"✓ Cleared 3 cached entries",
		"! 1 skipped",
		"→ out/flow.svg",
		"Inspect routes: flowcanvas routes g.toml",
	}
	for _, w := range want {
		if !strings.Contains(buf.String(), w) {
			t.Errorf("output missing %q:\n%s", w, buf.String())
		}
	}
}

func TestCacheClearDisabled(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := writeConfig(t, "[cache]\nbackend = \"none\"\n")

	var out bytes.Buffer
	root := New(&out, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfg, "cache", "clear"})
	if err := root.ExecuteContext(testContext()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Caching is disabled") {
		t.Errorf("output = %q", out.String())
	}
}
