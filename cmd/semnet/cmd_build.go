package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/japaniel/semnet/pkg/network"
	"github.com/japaniel/semnet/pkg/render"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a co-occurrence network from comments",
		Long: `Build reads comments from a corpus file, a review page or the database,
builds the word co-occurrence network and writes it in the chosen format.

Examples:
  semnet build -i reviews.csv --item-column film --item 流浪地球
  semnet build -i reviews.jsonl --format dot -o graph.dot
  semnet build --db semnet.db --min-weight 3 --top-n 80`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
	sourceFlags(cmd)
	analysisFlags(cmd)
	cmd.Flags().StringP("format", "f", string(render.FormatHTML), "Output format: html, dot, json, echarts")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout; html defaults to a temp file)")
	cmd.Flags().Bool("no-open", false, "Do not open the HTML output in a browser")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if err := a.applyAnalysisFlags(cmd); err != nil {
		return err
	}
	formatName, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}
	params, err := a.cfg.Params()
	if err != nil {
		return err
	}

	src := a.source(cmd, true)
	comments, err := src.comments(ctx)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	b, err := a.builder(ctx, workers)
	if err != nil {
		return err
	}
	g, err := b.BuildContext(ctx, comments, params)
	if err != nil {
		return err
	}
	printSummary(cmd, len(comments), g)

	out, _ := cmd.Flags().GetString("output")
	switch format {
	case render.FormatDOT:
		return writeOutput(cmd, out, []byte(render.RenderDOT(g, a.renderOptions())))
	case render.FormatJSON:
		return writeJSON(cmd, out, render.RenderJSON(g))
	case render.FormatECharts:
		return writeJSON(cmd, out, render.EChartsOption(g, a.renderOptions()))
	}

	page, err := render.RenderHTML(g, a.renderOptions())
	if err != nil {
		return err
	}
	if out == "" {
		f, err := os.CreateTemp("", "semnet-*.html")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		out = f.Name()
		f.Close()
	}
	if err := os.WriteFile(out, page, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		abs = out
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", abs)

	if noOpen, _ := cmd.Flags().GetBool("no-open"); !noOpen {
		if err := render.OpenBrowser("file://" + abs); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\n", err)
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, comments int, g *network.Graph) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s comments, %s distinct words, %s nodes, %s edges\n",
		humanize.Comma(int64(comments)),
		humanize.Comma(int64(g.Stats.DistinctTokens)),
		humanize.Comma(int64(g.NodeCount())),
		humanize.Comma(int64(g.EdgeCount())))
}
