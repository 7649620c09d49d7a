// Package cursor adapts query results to a pull interface that callers
// advance one row at a time.
package cursor

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// Cursor iterates over query results. Next returns io.EOF after the last
// row.
type Cursor interface {
	Next() (value.Value, error)
	All() ([]value.Value, error)
	Close() error
}

// sliceCursor returns rows that are already in memory.
type sliceCursor struct {
	items []value.Value
	pos   int
}

// NewSlice creates a cursor over items.
func NewSlice(items []value.Value) Cursor {
	return &sliceCursor{items: items}
}

func (c *sliceCursor) Next() (value.Value, error) {
	if c.pos >= len(c.items) {
		return nil, io.EOF
	}
	item := c.items[c.pos]
	c.pos++
	return item, nil
}

func (c *sliceCursor) All() ([]value.Value, error) {
	rest := c.items[c.pos:]
	c.pos = len(c.items)
	return rest, nil
}

func (c *sliceCursor) Close() error { return nil }

// seqCursor pulls rows from a lazy result sequence. Rows are produced on
// demand, so a query is only evaluated as far as the caller reads it.
type seqCursor struct {
	ctx  context.Context
	mu   sync.Mutex
	next func() (value.Value, error, bool)
	stop func()
	done bool
	err  error
}

// NewSeq creates a cursor over seq. The context is checked before each
// row; once it is done Next returns its error and the sequence is stopped.
func NewSeq(ctx context.Context, seq iter.Seq2[value.Value, error]) Cursor {
	next, stop := iter.Pull2(seq)
	return &seqCursor{ctx: ctx, next: next, stop: stop}
}

func (c *seqCursor) Next() (value.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		if c.err != nil {
			return nil, c.err
		}
		return nil, io.EOF
	}
	if err := c.ctx.Err(); err != nil {
		c.finish(err)
		return nil, err
	}
	v, err, ok := c.next()
	if !ok {
		c.finish(nil)
		return nil, io.EOF
	}
	if err != nil {
		c.finish(err)
		return nil, err
	}
	return v, nil
}

// finish stops the sequence and records the error later calls report.
func (c *seqCursor) finish(err error) {
	c.done, c.err = true, err
	c.stop()
}

func (c *seqCursor) All() ([]value.Value, error) {
	var out []value.Value
	for {
		v, err := c.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (c *seqCursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		c.finish(nil)
	}
	return nil
}
