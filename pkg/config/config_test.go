package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japaniel/semnet/pkg/network"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	p, err := cfg.Params()
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if p != network.DefaultParams() {
		t.Fatalf("Params() = %+v, want %+v", p, network.DefaultParams())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semnet.yaml")
	t.Setenv("SEMNET_TEST_DIR", dir)
	content := `
analysis:
  min_weight: 3
  top_n: 20
  policy: top-n-min-frequency
tokenizer:
  language: ja
  stopwords_file: ${SEMNET_TEST_DIR}/stop.txt
  extra_stopwords: [電影, 映画]
render:
  edge_color: "#000"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Analysis.MinWeight != 3 || cfg.Analysis.TopN != 20 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Analysis.WeightMultiplier != 1 {
		t.Errorf("unset weight_multiplier should keep default, got %v", cfg.Analysis.WeightMultiplier)
	}
	if cfg.Tokenizer.Language != "ja" || len(cfg.Tokenizer.ExtraStopwords) != 2 {
		t.Errorf("tokenizer = %+v", cfg.Tokenizer)
	}
	if cfg.Tokenizer.StopwordsFile != filepath.Join(dir, "stop.txt") {
		t.Errorf("stopwords_file not expanded: %q", cfg.Tokenizer.StopwordsFile)
	}
	if cfg.Render.FontColor != "#2c3e50" || cfg.Render.EdgeColor != "#000" {
		t.Errorf("render = %+v", cfg.Render)
	}
	p, err := cfg.Params()
	if err != nil || p.Policy != network.PolicyTopNMinFrequency {
		t.Errorf("Params() = %+v, %v", p, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("analysis: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero top n", func(c *Config) { c.Analysis.TopN = 0 }, "top_n"},
		{"negative min weight", func(c *Config) { c.Analysis.MinWeight = -1 }, "min_weight"},
		{"zero multiplier", func(c *Config) { c.Analysis.WeightMultiplier = 0 }, "weight_multiplier"},
		{"bad policy", func(c *Config) { c.Analysis.Policy = "most" }, "policy"},
		{"bad language", func(c *Config) { c.Tokenizer.Language = "fr" }, "language"},
		{"bad min length", func(c *Config) { c.Tokenizer.MinLength = 0 }, "min_length"},
		{"url without file", func(c *Config) { c.Tokenizer.StopwordsURL = "http://x" }, "stopwords_url"},
		{"bad edge color", func(c *Config) { c.Render.EdgeColor = "pink" }, "edge_color"},
		{"bad font color", func(c *Config) { c.Render.FontColor = "#12" }, "font_color"},
		{"bad height", func(c *Config) { c.Render.Height = 0 }, "height"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "addr"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	cfg := Default()
	cfg.Analysis.TopN = -1
	if err := cfg.Validate(); !errors.Is(err, network.ErrInvalidParameter) {
		t.Errorf("analysis errors should wrap ErrInvalidParameter, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SEMNET_MIN_WEIGHT", "4")
	t.Setenv("SEMNET_TOP_N", "15")
	t.Setenv("SEMNET_WEIGHT_MULTIPLIER", "2.5")
	t.Setenv("SEMNET_POLICY", "min-frequency")
	t.Setenv("SEMNET_LANGUAGE", "whitespace")
	t.Setenv("SEMNET_DB", "/tmp/reviews.db")
	t.Setenv("SEMNET_LOG_LEVEL", "debug")
	t.Setenv("SEMNET_ADDR", "127.0.0.1:8501")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.MinWeight != 4 || cfg.Analysis.TopN != 15 || cfg.Analysis.WeightMultiplier != 2.5 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Analysis.Policy != "min-frequency" || cfg.Tokenizer.Language != "whitespace" {
		t.Errorf("policy/language not overridden: %+v %+v", cfg.Analysis, cfg.Tokenizer)
	}
	if cfg.Database.Path != "/tmp/reviews.db" || cfg.Logging.Level != "debug" {
		t.Errorf("db/log not overridden: %+v %+v", cfg.Database, cfg.Logging)
	}
	if cfg.Server.Addr != "127.0.0.1:8501" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}

	t.Setenv("SEMNET_TOP_N", "many")
	if _, err := Load(""); err == nil {
		t.Error("expected error for non-numeric SEMNET_TOP_N")
	}
}

func TestLoadReadsDefaultFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SEMNET_TOP_N", "")

	if err := os.WriteFile(DefaultFile, []byte("analysis:\n  top_n: 33\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(".env", []byte("SEMNET_LOG_LEVEL=trace\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SEMNET_LOG_LEVEL") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.TopN != 33 {
		t.Errorf("TopN = %d, want 33 from %s", cfg.Analysis.TopN, DefaultFile)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("Logging.Level = %q, want trace from .env", cfg.Logging.Level)
	}
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
