package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/semnet/pkg/corpus"
	"github.com/japaniel/semnet/pkg/db"
	"github.com/japaniel/semnet/pkg/network"
	"github.com/japaniel/semnet/pkg/render"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Explore the network interactively in the browser",
		Long: `Serve starts a local web page with a parameter form. Every submission
rebuilds the network from the selected item's comments.

Examples:
  semnet serve -i reviews.csv --item-column film
  semnet serve --db semnet.db --addr localhost:8080`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	sourceFlags(cmd)
	analysisFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (default from config server.addr)")
	cmd.Flags().Bool("no-open", false, "Do not open the browser")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.applyAnalysisFlags(cmd); err != nil {
		return err
	}
	params, err := a.cfg.Params()
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")
	b, err := a.builder(ctx, workers)
	if err != nil {
		return err
	}

	src := a.source(cmd, true)
	var (
		load  func(ctx context.Context, item string) ([]string, error)
		items render.ItemLister
	)
	if src.fromFile() {
		load, items, err = fileSource(ctx, src)
	} else {
		var closeDB func() error
		load, items, closeDB, err = dbSource(src.dbPath)
		if closeDB != nil {
			defer closeDB()
		}
	}
	if err != nil {
		return err
	}

	graphs := func(ctx context.Context, item string, p network.Params) (*network.Graph, error) {
		comments, err := load(ctx, item)
		if err != nil {
			return nil, err
		}
		return b.BuildContext(ctx, comments, p)
	}

	srv := render.NewServer(graphs, params, a.renderOptions())
	srv.Items = items
	srv.DefaultItem = src.item
	srv.ListenAddr = a.cfg.Server.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		srv.ListenAddr = v
	}
	srv.Logger = a.logger

	noOpen, _ := cmd.Flags().GetBool("no-open")
	open := a.cfg.Server.Open && !noOpen
	return srv.ListenAndServe(ctx, func(url string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Explorer running at %s\n", url)
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
		if open {
			if err := render.OpenBrowser(url); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\n", err)
			}
		}
	})
}

// fileSource serves a corpus file or page. Files are re-read when they change
// on disk; a fetched page is loaded once.
func fileSource(ctx context.Context, src source) (func(context.Context, string) ([]string, error), render.ItemLister, error) {
	var records func() ([]corpus.Record, error)
	if src.pageURL != "" {
		fetched, err := src.loadRecords(ctx)
		if err != nil {
			return nil, nil, err
		}
		records = func() ([]corpus.Record, error) { return fetched, nil }
	} else {
		cache := corpus.NewCache()
		if _, err := cache.Load(src.input, src.opts); err != nil {
			return nil, nil, err
		}
		records = func() ([]corpus.Record, error) { return cache.Load(src.input, src.opts) }
	}

	load := func(_ context.Context, item string) ([]string, error) {
		recs, err := records()
		if err != nil {
			return nil, err
		}
		return itemComments(recs, item)
	}
	list := func(_ context.Context) ([]render.ItemInfo, error) {
		recs, err := records()
		if err != nil {
			return nil, err
		}
		var infos []render.ItemInfo
		for _, title := range corpus.Items(recs) {
			infos = append(infos, render.ItemInfo{Title: title, Comments: len(corpus.ForItem(recs, title))})
		}
		return infos, nil
	}
	return load, list, nil
}

// dbSource serves comments stored in the database at path.
func dbSource(path string) (func(context.Context, string) ([]string, error), render.ItemLister, func() error, error) {
	conn, err := db.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	load := func(_ context.Context, item string) ([]string, error) {
		comments, err := dbComments(conn, item)
		if err != nil && !errors.Is(err, render.ErrUnknownItem) {
			return nil, fmt.Errorf("load comments: %w", err)
		}
		return comments, err
	}
	list := func(_ context.Context) ([]render.ItemInfo, error) {
		summaries, err := db.ListItems(conn)
		if err != nil {
			return nil, err
		}
		infos := make([]render.ItemInfo, 0, len(summaries))
		for _, s := range summaries {
			infos = append(infos, render.ItemInfo{Title: s.Title, Comments: s.CommentCount})
		}
		return infos, nil
	}
	return load, list, conn.Close, nil
}
