package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/sinclairzx81/linqbox/internal/output"
	"github.com/sinclairzx81/linqbox/internal/query"
	"github.com/sinclairzx81/linqbox/internal/source"
)

// newExecutor creates an executor with the config file sources and the
// --source flags registered. Flags replace file sources of the same name.
func newExecutor(cfg *rootConfig) (*query.Executor, error) {
	exec := query.New(query.WithLogger(cfg.logger()))
	if cfg.file != nil {
		names := make([]string, 0, len(cfg.file.Sources))
		for name := range cfg.file.Sources {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			s, err := source.ParseSpec(name, cfg.file.Sources[name])
			if err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
			if err := exec.Register(s.Resolve(cfg.file.BaseDir)); err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}
	for _, def := range cfg.sources {
		s, err := source.Parse(def)
		if err != nil {
			return nil, fmt.Errorf("--source: %w", err)
		}
		if err := exec.Register(s); err != nil {
			return nil, fmt.Errorf("--source: %w", err)
		}
	}
	return exec, nil
}

// execQuery runs text and writes the results in the configured format.
func execQuery(ctx context.Context, cfg *rootConfig, exec *query.Executor, text string, w io.Writer) error {
	start := time.Now()
	cur, err := exec.Run(ctx, text)
	if err != nil {
		return err
	}
	defer func() { _ = cur.Close() }()

	err = output.Write(w, output.DetectFormat(os.Stdout, cfg.format), cur)
	cfg.logger().WithField("elapsed", time.Since(start)).Debug("query finished")
	return err
}
