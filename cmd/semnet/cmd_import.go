package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/japaniel/semnet/pkg/db"
	"github.com/japaniel/semnet/pkg/ingest"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store comments from a corpus file or review page in the database",
		Long: `Import loads comments and stores them per item in the SQLite database.
Comments an item already has are skipped, so importing the same file twice is
harmless.

Examples:
  semnet import -i reviews.csv --item-column film
  semnet import -i reviews.jsonl --item 流浪地球
  semnet import --url https://example.com/review/123`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}
	cmd.Flags().StringP("input", "i", "", "Corpus file (.csv, .jsonl, .html)")
	cmd.Flags().String("url", "", "Review page to fetch")
	cmd.Flags().String("column", "", "Column or field holding the comment text (default \"content\")")
	cmd.Flags().String("item-column", "", "Column or field holding the item name")
	cmd.Flags().String("item", "", "Item name for records without one")
	cmd.Flags().String("db", "", "SQLite database (default from config database.path)")
	cmd.Flags().Int("batch-size", 100, "Comments per transaction")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	src := a.source(cmd, false)
	if !src.fromFile() {
		return errors.New("import needs --input or --url")
	}
	records, err := src.loadRecords(ctx)
	if err != nil {
		return err
	}

	conn, err := db.Open(src.dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	im := ingest.NewImporter(conn)
	im.DefaultItem = src.item
	im.Logger = a.logger
	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		im.BatchSize = n
	}
	im.OnProgress = func(current, total int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rImported %s/%s", humanize.Comma(int64(current)), humanize.Comma(int64(total)))
		if current == total {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}

	res, err := im.Import(ctx, records)
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %s comments (%s duplicates, %s empty) across %s items\n",
		humanize.Comma(int64(res.Inserted)),
		humanize.Comma(int64(res.Duplicates)),
		humanize.Comma(int64(res.Empty)),
		humanize.Comma(int64(res.Items)))
	return err
}
