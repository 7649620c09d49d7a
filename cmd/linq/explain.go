package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/query"
)

func newExplainCmd(cfg *rootConfig) *cobra.Command {
	var showTokens bool
	cmd := &cobra.Command{
		Use:   "explain [expression]",
		Short: "Show how a query compiles without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := readQueryExpr(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			exec, err := newExecutor(cfg)
			if err != nil {
				return err
			}
			ex, err := exec.Explain(expr)
			if err != nil {
				return &queryError{err: fmt.Errorf("explain: %w", err)}
			}
			return writeExplanation(cmd.OutOrStdout(), ex, showTokens)
		},
	}
	cmd.Flags().BoolVar(&showTokens, "tokens", false, "also list the scanned tokens")
	return cmd
}

func writeExplanation(w io.Writer, ex *query.Explanation, showTokens bool) error {
	if _, err := fmt.Fprintf(w, "query:   %s\nsources: %s\n", ex.Query, strings.Join(ex.Sources, ", ")); err != nil {
		return err
	}
	if !showTokens {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "OFFSET\tKIND\tTEXT")
	for _, tok := range ex.Tokens {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", tok.Offset, tok.Kind, tokenText(tok))
	}
	return tw.Flush()
}

func tokenText(tok scanner.Token) string {
	if tok.Kind == scanner.Parameter {
		return fmt.Sprintf("#%d", tok.Index)
	}
	return tok.Text
}
