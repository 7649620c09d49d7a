package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/sinclairzx81/linqbox/internal/query"
)

func newSourcesCmd(cfg *rootConfig) *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exec, err := newExecutor(cfg)
			if err != nil {
				return err
			}
			return runSources(cmd.Context(), exec, load, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "load every source to report row counts")
	return cmd
}

// runSources writes the source list as indented JSON.
func runSources(ctx context.Context, exec *query.Executor, load bool, w io.Writer) error {
	if load {
		for _, name := range exec.Names() {
			if _, err := exec.Load(ctx, name); err != nil {
				return err
			}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exec.Sources())
}
