package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/japaniel/semnet/pkg/db"
	"github.com/spf13/cobra"
)

func newItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			path := a.cfg.Database.Path
			if v, _ := cmd.Flags().GetString("db"); v != "" {
				path = v
			}
			conn, err := db.Open(path)
			if err != nil {
				return err
			}
			defer conn.Close()

			items, err := db.ListItems(conn)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tCOMMENTS\tADDED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Title, humanize.Comma(int64(it.CommentCount)), humanize.Time(it.AddedAt))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("db", "", "SQLite database (default from config database.path)")
	return cmd
}
