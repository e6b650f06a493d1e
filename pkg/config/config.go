// Package config provides configuration loading for semnet.
// Values come from defaults, an optional YAML file, an optional .env file and
// SEMNET_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/japaniel/semnet/pkg/logging"
	"github.com/japaniel/semnet/pkg/network"
	"github.com/japaniel/semnet/pkg/semnet"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read by Load when no explicit path is given and it exists.
const DefaultFile = "semnet.yaml"

// Config contains all semnet settings.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Database  DatabaseConfig  `yaml:"database"`
	Render    RenderConfig    `yaml:"render"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AnalysisConfig holds the network build parameters.
type AnalysisConfig struct {
	MinWeight        float64 `yaml:"min_weight"`
	TopN             int     `yaml:"top_n"`
	WeightMultiplier float64 `yaml:"weight_multiplier"`
	// Policy is "top-n" or "top-n-min-frequency".
	Policy string `yaml:"policy"`
}

// TokenizerConfig configures comment normalization.
type TokenizerConfig struct {
	// Language selects the segmenter: "zh", "ja" or "whitespace".
	Language  string `yaml:"language"`
	MinLength int    `yaml:"min_length"`
	// StopwordsFile replaces the built-in stopword list when set.
	StopwordsFile string `yaml:"stopwords_file,omitempty"`
	// StopwordsURL is downloaded to StopwordsFile when the file is missing.
	StopwordsURL   string   `yaml:"stopwords_url,omitempty"`
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty"`
	// UserDictFile lists extra words for the zh segmenter, one per line.
	UserDictFile string `yaml:"user_dict_file,omitempty"`
}

// CorpusConfig describes where comments come from.
type CorpusConfig struct {
	Path       string `yaml:"path,omitempty"`
	Column     string `yaml:"column"`
	ItemColumn string `yaml:"item_column,omitempty"`
	Item       string `yaml:"item,omitempty"`
}

// DatabaseConfig points at the SQLite comment store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RenderConfig controls graph presentation.
type RenderConfig struct {
	Title     string `yaml:"title"`
	EdgeColor string `yaml:"edge_color"`
	FontColor string `yaml:"font_color"`
	Height    int    `yaml:"height"`
}

// ServerConfig configures the interactive explorer.
type ServerConfig struct {
	// Addr is the listen address. Port 0 picks a free port.
	Addr string `yaml:"addr"`
	// Open launches the system browser once the server is listening.
	Open bool `yaml:"open"`
}

// LoggingConfig sets the log verbosity: error, warn, info, debug or trace.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with the review explorer's defaults.
func Default() *Config {
	p := network.DefaultParams()
	return &Config{
		Analysis: AnalysisConfig{
			MinWeight:        p.MinWeight,
			TopN:             p.TopN,
			WeightMultiplier: p.WeightMultiplier,
			Policy:           p.Policy.String(),
		},
		Tokenizer: TokenizerConfig{
			Language:  semnet.LanguageChinese,
			MinLength: semnet.DefaultMinLength,
		},
		Corpus: CorpusConfig{
			Column: "content",
		},
		Database: DatabaseConfig{
			Path: "semnet.db",
		},
		Render: RenderConfig{
			Title:     "电影评论语义网络",
			EdgeColor: "#f681c6",
			FontColor: "#2c3e50",
			Height:    800,
		},
		Server: ServerConfig{
			Addr: "localhost:0",
			Open: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. An empty path falls back to DefaultFile in
// the working directory when it exists. A .env file in the working directory
// is loaded into the environment before SEMNET_* overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Tokenizer.StopwordsFile = os.ExpandEnv(cfg.Tokenizer.StopwordsFile)
	cfg.Tokenizer.UserDictFile = os.ExpandEnv(cfg.Tokenizer.UserDictFile)
	cfg.Database.Path = os.ExpandEnv(cfg.Database.Path)
	return cfg, nil
}

// Params converts the analysis section into build parameters.
func (c *Config) Params() (network.Params, error) {
	policy, err := network.ParsePolicy(c.Analysis.Policy)
	if err != nil {
		return network.Params{}, err
	}
	return network.Params{
		MinWeight:        c.Analysis.MinWeight,
		TopN:             c.Analysis.TopN,
		WeightMultiplier: c.Analysis.WeightMultiplier,
		Policy:           policy,
	}, nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.Tokenizer.Language) {
	case semnet.LanguageChinese, semnet.LanguageJapanese, semnet.LanguageWhitespace:
	default:
		return fmt.Errorf("invalid tokenizer language: %q (valid: zh, ja, whitespace)", c.Tokenizer.Language)
	}
	if c.Tokenizer.MinLength < 1 {
		return fmt.Errorf("min_length must be at least 1, got %d", c.Tokenizer.MinLength)
	}
	if c.Tokenizer.StopwordsURL != "" && c.Tokenizer.StopwordsFile == "" {
		return fmt.Errorf("stopwords_url requires stopwords_file as the download target")
	}

	for name, color := range map[string]string{"edge_color": c.Render.EdgeColor, "font_color": c.Render.FontColor} {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("%s must be a hex color like #f681c6, got %q", name, color)
		}
	}
	if c.Render.Height <= 0 {
		return fmt.Errorf("render height must be positive, got %d", c.Render.Height)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies SEMNET_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SEMNET_MIN_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SEMNET_MIN_WEIGHT: %w", err)
		}
		cfg.Analysis.MinWeight = f
	}
	if v := os.Getenv("SEMNET_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEMNET_TOP_N: %w", err)
		}
		cfg.Analysis.TopN = n
	}
	if v := os.Getenv("SEMNET_WEIGHT_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SEMNET_WEIGHT_MULTIPLIER: %w", err)
		}
		cfg.Analysis.WeightMultiplier = f
	}
	if v := os.Getenv("SEMNET_POLICY"); v != "" {
		cfg.Analysis.Policy = v
	}
	if v := os.Getenv("SEMNET_LANGUAGE"); v != "" {
		cfg.Tokenizer.Language = v
	}
	if v := os.Getenv("SEMNET_STOPWORDS_FILE"); v != "" {
		cfg.Tokenizer.StopwordsFile = v
	}
	if v := os.Getenv("SEMNET_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SEMNET_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEMNET_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}
