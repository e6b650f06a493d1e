package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [text...]",
		Short: "Show how comments are normalized into tokens",
		Long: `Tokens prints the tokens each comment contributes to the network, one
comment per line with tokens separated by spaces. Comments are taken from the
arguments, or from stdin one per line when no arguments are given.`,
		RunE: runTokens,
	}
	cmd.Flags().String("language", "", "Segmenter: zh, ja or whitespace")
	cmd.Flags().Int("min-length", 0, "Minimum token length in characters")
	return cmd
}

func runTokens(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("language") {
		a.cfg.Tokenizer.Language, _ = cmd.Flags().GetString("language")
	}
	if cmd.Flags().Changed("min-length") {
		a.cfg.Tokenizer.MinLength, _ = cmd.Flags().GetInt("min-length")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	n, err := a.normalizer(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		for _, text := range args {
			fmt.Fprintln(out, strings.Join(n.Normalize(text), " "))
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(out, strings.Join(n.Normalize(scanner.Text()), " "))
	}
	return scanner.Err()
}
