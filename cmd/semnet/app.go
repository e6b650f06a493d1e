package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/japaniel/semnet/pkg/config"
	"github.com/japaniel/semnet/pkg/corpus"
	"github.com/japaniel/semnet/pkg/db"
	"github.com/japaniel/semnet/pkg/dictionary"
	"github.com/japaniel/semnet/pkg/logging"
	"github.com/japaniel/semnet/pkg/network"
	"github.com/japaniel/semnet/pkg/render"
	"github.com/japaniel/semnet/pkg/semnet"
	"github.com/spf13/cobra"
)

// app bundles what every command needs after flag and config processing.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadApp reads the config file named by --config, applies --log-level and
// validates the result.
func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())}, nil
}

// analysisFlags registers the network parameter flags shared by build and serve.
func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("min-weight", 0, "Minimum edge weight (default from config: 2)")
	cmd.Flags().Int("top-n", 0, "Number of most frequent words kept (default from config: 50)")
	cmd.Flags().Float64("multiplier", 0, "Weight added per co-occurring comment (default from config: 1)")
	cmd.Flags().String("policy", "", "Vocabulary policy: top-n or top-n-min-frequency")
	cmd.Flags().String("language", "", "Segmenter: zh, ja or whitespace")
	cmd.Flags().Int("workers", 1, "Goroutines used to segment comments (above 1 segments in parallel)")
}

// applyAnalysisFlags copies explicitly set flags over the config.
func (a *app) applyAnalysisFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("min-weight") {
		a.cfg.Analysis.MinWeight, _ = f.GetFloat64("min-weight")
	}
	if f.Changed("top-n") {
		a.cfg.Analysis.TopN, _ = f.GetInt("top-n")
	}
	if f.Changed("multiplier") {
		a.cfg.Analysis.WeightMultiplier, _ = f.GetFloat64("multiplier")
	}
	if f.Changed("policy") {
		a.cfg.Analysis.Policy, _ = f.GetString("policy")
	}
	if f.Changed("language") {
		a.cfg.Tokenizer.Language, _ = f.GetString("language")
	}
	return a.cfg.Validate()
}

// normalizer builds the comment normalizer described by the tokenizer config,
// downloading the stopword list first when a URL is configured.
func (a *app) normalizer(ctx context.Context) (*semnet.Normalizer, error) {
	tc := a.cfg.Tokenizer

	var userWords []string
	if tc.UserDictFile != "" {
		words, err := dictionary.LoadWordList(tc.UserDictFile)
		if err != nil {
			return nil, fmt.Errorf("load user dictionary: %w", err)
		}
		userWords = words
		a.logger.Debug("user dictionary loaded", "path", tc.UserDictFile, "words", len(words))
	}
	seg, err := semnet.NewSegmenter(tc.Language, userWords)
	if err != nil {
		return nil, err
	}

	stop := semnet.DefaultStopwordSet()
	if tc.StopwordsFile != "" {
		if tc.StopwordsURL != "" {
			if err := dictionary.EnsureWordList(ctx, tc.StopwordsFile, tc.StopwordsURL); err != nil {
				return nil, fmt.Errorf("fetch stopwords: %w", err)
			}
		}
		words, err := dictionary.LoadWordList(tc.StopwordsFile)
		if err != nil {
			return nil, fmt.Errorf("load stopwords: %w", err)
		}
		stop = semnet.NewStopwordSet(words...)
	}
	if len(tc.ExtraStopwords) > 0 {
		stop = stop.Union(tc.ExtraStopwords...)
	}
	a.logger.Debug("normalizer ready", "language", tc.Language, "stopwords", stop.Len(), "min_length", tc.MinLength)

	return semnet.NewNormalizer(
		semnet.WithSegmenter(seg),
		semnet.WithStopwords(stop),
		semnet.WithMinLength(tc.MinLength),
	)
}

// builder returns a network builder using the configured normalizer.
func (a *app) builder(ctx context.Context, workers int) (*network.Builder, error) {
	n, err := a.normalizer(ctx)
	if err != nil {
		return nil, err
	}
	b := network.NewBuilder(n)
	b.Logger = a.logger
	b.Workers = workers
	return b, nil
}

// renderOptions converts the render config.
func (a *app) renderOptions() render.Options {
	return render.Options{
		Title:     a.cfg.Render.Title,
		EdgeColor: a.cfg.Render.EdgeColor,
		FontColor: a.cfg.Render.FontColor,
		Height:    a.cfg.Render.Height,
	}
}

// sourceFlags registers the corpus selection flags.
func sourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Corpus file (.csv, .jsonl, .html); default from config corpus.path")
	cmd.Flags().String("url", "", "Fetch a review page and use its text as the corpus")
	cmd.Flags().String("column", "", "Column or field holding the comment text (default \"content\")")
	cmd.Flags().String("item-column", "", "Column or field holding the item name")
	cmd.Flags().String("item", "", "Only use comments of this item")
	cmd.Flags().String("db", "", "SQLite database to read comments from (default from config database.path)")
}

// source describes where comments come from after flag processing.
type source struct {
	input   string
	pageURL string
	dbPath  string
	item    string
	opts    corpus.Options
}

// source resolves the corpus flags against the config. When readFromDB is set
// an explicit --db without --input selects the database over corpus.path.
func (a *app) source(cmd *cobra.Command, readFromDB bool) source {
	f := cmd.Flags()
	s := source{
		input:  a.cfg.Corpus.Path,
		dbPath: a.cfg.Database.Path,
		item:   a.cfg.Corpus.Item,
		opts: corpus.Options{
			Column:     a.cfg.Corpus.Column,
			ItemColumn: a.cfg.Corpus.ItemColumn,
		},
	}
	if v, _ := f.GetString("input"); v != "" {
		s.input = v
	}
	if v, _ := f.GetString("url"); v != "" {
		s.pageURL = v
		s.input = ""
	}
	if v, _ := f.GetString("db"); v != "" {
		s.dbPath = v
		if readFromDB && !f.Changed("input") {
			s.input = ""
		}
	}
	if v, _ := f.GetString("column"); v != "" {
		s.opts.Column = v
	}
	if v, _ := f.GetString("item-column"); v != "" {
		s.opts.ItemColumn = v
	}
	if v, _ := f.GetString("item"); v != "" {
		s.item = v
	}
	return s
}

// fromFile reports whether comments come from a file or URL rather than the database.
func (s source) fromFile() bool { return s.input != "" || s.pageURL != "" }

// loadRecords reads the file or page named by s.
func (s source) loadRecords(ctx context.Context) ([]corpus.Record, error) {
	if s.pageURL != "" {
		return corpus.FetchHTML(ctx, s.pageURL)
	}
	return corpus.LoadFile(s.input, s.opts)
}

// comments returns the comment texts selected by s.
func (s source) comments(ctx context.Context) ([]string, error) {
	if s.fromFile() {
		records, err := s.loadRecords(ctx)
		if err != nil {
			return nil, err
		}
		return itemComments(records, s.item)
	}

	conn, err := db.Open(s.dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return dbComments(conn, s.item)
}

func itemComments(records []corpus.Record, item string) ([]string, error) {
	if item == "" {
		return corpus.Contents(records), nil
	}
	selected := corpus.ForItem(records, item)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %q (available: %s)", render.ErrUnknownItem, item, strings.Join(corpus.Items(records), ", "))
	}
	return corpus.Contents(selected), nil
}

func dbComments(conn *sql.DB, item string) ([]string, error) {
	if item == "" {
		return db.AllComments(conn)
	}
	it, err := db.GetItemByTitle(conn, item)
	if errors.Is(err, db.ErrItemNotFound) {
		return nil, fmt.Errorf("%w: %v", render.ErrUnknownItem, err)
	}
	if err != nil {
		return nil, err
	}
	return db.CommentsForItem(conn, it.ID)
}
