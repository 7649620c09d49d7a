package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sinclairzx81/linqbox"
	"github.com/sinclairzx81/linqbox/internal/query"
)

// queryError marks failures caused by the query text itself. They exit
// with exitQuery.
type queryError struct{ err error }

func (e *queryError) Error() string { return e.err.Error() }
func (e *queryError) Unwrap() error { return e.err }

// querySeparator separates queries in a --file batch.
const querySeparator = "---"

type queryOptions struct {
	file        string
	stopOnError bool
}

func newQueryCmd(cfg *rootConfig) *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query [expression]",
		Short: "Run a query",
		Long: "Run a query given as an argument, on stdin, or as a batch of queries in a file\n" +
			"separated by lines holding only " + querySeparator + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.file != "" && len(args) > 0 {
				return errors.New("query: --file cannot be combined with an expression")
			}
			exec, err := newExecutor(cfg)
			if err != nil {
				return err
			}
			if opts.file != "" {
				return runQueryFile(cmd, cfg, exec, opts)
			}
			expr, err := readQueryExpr(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runQueryExpr(cmd, cfg, exec, expr)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "F", "", "read queries from a file, separated by "+querySeparator+" lines")
	cmd.Flags().BoolVar(&opts.stopOnError, "stop-on-error", false, "stop at the first failing query of a --file batch")
	return cmd
}

// readQueryExpr takes the expression from the argument, falling back to
// the whole of stdin.
func readQueryExpr(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("query: reading stdin: %w", err)
	}
	if expr := strings.TrimSpace(string(data)); expr != "" {
		return expr, nil
	}
	return "", &queryError{err: errors.New("query: no query given")}
}

func runQueryExpr(cmd *cobra.Command, cfg *rootConfig, exec *query.Executor, expr string) error {
	err := execQuery(cmd.Context(), cfg, exec, expr, cmd.OutOrStdout())
	if linq.IsCompileError(err) {
		return &queryError{err: fmt.Errorf("query: %w", err)}
	}
	return err
}

// runQueryFile runs every query of a batch file in order. Failures are
// reported as they happen and summarized at the end unless
// opts.stopOnError returns the first one directly.
func runQueryFile(cmd *cobra.Command, cfg *rootConfig, exec *query.Executor, opts queryOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer func() { _ = f.Close() }()

	queries, err := splitQueries(f)
	if err != nil {
		return fmt.Errorf("query: reading %s: %w", opts.file, err)
	}
	failed := 0
	for i, q := range queries {
		err := runQueryExpr(cmd, cfg, exec, q)
		if err == nil {
			continue
		}
		if opts.stopOnError {
			return err
		}
		failed++
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "query %d: %v\n", i+1, err)
	}
	if failed > 0 {
		return &queryError{err: fmt.Errorf("query: %d of %d queries failed", failed, len(queries))}
	}
	return nil
}

// splitQueries splits a batch on separator lines, dropping blank entries.
func splitQueries(r io.Reader) ([]string, error) {
	var (
		queries []string
		lines   []string
	)
	sc := bufio.NewScanner(r)
	for {
		more := sc.Scan()
		if more && strings.TrimSpace(sc.Text()) != querySeparator {
			lines = append(lines, sc.Text())
			continue
		}
		if q := strings.TrimSpace(strings.Join(lines, "\n")); q != "" {
			queries = append(queries, q)
		}
		lines = lines[:0]
		if !more {
			return queries, sc.Err()
		}
	}
}
