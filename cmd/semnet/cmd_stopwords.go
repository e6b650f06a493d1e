package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/japaniel/semnet/pkg/dictionary"
	"github.com/spf13/cobra"
)

func newStopwordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Manage the stopword list",
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the configured stopword list",
		Long: `Fetch downloads tokenizer.stopwords_url to tokenizer.stopwords_file.
Nothing is downloaded when the file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			tc := a.cfg.Tokenizer
			if v, _ := cmd.Flags().GetString("url"); v != "" {
				tc.StopwordsURL = v
			}
			if v, _ := cmd.Flags().GetString("file"); v != "" {
				tc.StopwordsFile = v
			}
			if tc.StopwordsFile == "" {
				return errors.New("no stopword file configured (tokenizer.stopwords_file or --file)")
			}
			if err := dictionary.EnsureWordList(cmd.Context(), tc.StopwordsFile, tc.StopwordsURL); err != nil {
				return err
			}
			words, err := dictionary.LoadWordList(tc.StopwordsFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stopwords in %s\n", humanize.Comma(int64(len(words))), tc.StopwordsFile)
			return nil
		},
	}
	fetchCmd.Flags().String("url", "", "Stopword list URL (.txt or .txt.gz)")
	fetchCmd.Flags().String("file", "", "Destination file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stopwords in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			n, err := a.normalizer(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range n.Stopwords().Words() {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		},
	}

	cmd.AddCommand(fetchCmd, listCmd)
	return cmd
}
