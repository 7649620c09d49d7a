// Package query runs query text against registered named sources.
package query

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sinclairzx81/linqbox"
	"github.com/sinclairzx81/linqbox/internal/config"
	"github.com/sinclairzx81/linqbox/internal/cursor"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
	"github.com/sinclairzx81/linqbox/internal/source"
)

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for the executor, its compiler and its loader.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Executor) { e.log = l }
}

// WithLoader replaces the source loader.
func WithLoader(ld *source.Loader) Option {
	return func(e *Executor) { e.loader = ld }
}

// Executor compiles queries with the registered sources bound as $name
// parameters. Sources load on first use and stay cached.
type Executor struct {
	log      logrus.FieldLogger
	loader   *source.Loader
	compiler *linq.Compiler

	mu     sync.Mutex
	specs  map[string]source.Spec
	loaded map[string]value.Value
}

// New creates an Executor with no sources.
func New(opts ...Option) *Executor {
	l := logrus.New()
	l.SetOutput(io.Discard)
	e := &Executor{
		log:    l,
		specs:  map[string]source.Spec{},
		loaded: map[string]value.Value{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = source.NewLoader(source.WithLogger(e.log))
	}
	e.compiler = linq.NewCompiler(linq.WithLogger(e.log))
	return e
}

// Register adds or replaces a source. Replacing drops the cached value.
func (e *Executor) Register(s source.Spec) error {
	if !config.IsSourceName(s.Name) {
		return fmt.Errorf("invalid source name %q", s.Name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specs[s.Name] = s
	delete(e.loaded, s.Name)
	return nil
}

// Bind registers an in-memory value as a source.
func (e *Executor) Bind(name string, v any) error {
	if !config.IsSourceName(name) {
		return fmt.Errorf("invalid source name %q", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specs[name] = source.Spec{Name: name}
	e.loaded[name] = value.Of(v)
	return nil
}

// SourceInfo describes a registered source.
type SourceInfo struct {
	Name   string `json:"name"`
	Spec   string `json:"spec"`
	Loaded bool   `json:"loaded"`
	Rows   int    `json:"rows,omitempty"`
}

// Sources lists the registered sources sorted by name.
func (e *Executor) Sources() []SourceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SourceInfo, 0, len(e.specs))
	for _, name := range e.namesLocked() {
		info := SourceInfo{Name: name, Spec: e.specs[name].String()}
		if v, ok := e.loaded[name]; ok {
			info.Loaded = true
			if arr, ok := v.([]value.Value); ok {
				info.Rows = len(arr)
			}
		}
		if info.Spec == "" {
			info.Spec = "(bound)"
		}
		out = append(out, info)
	}
	return out
}

// Names returns the registered source names sorted.
func (e *Executor) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.namesLocked()
}

func (e *Executor) namesLocked() []string {
	names := make([]string, 0, len(e.specs))
	for name := range e.specs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load returns the value of the named source, loading it if needed.
func (e *Executor) Load(ctx context.Context, name string) (value.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.loaded[name]; ok {
		return v, nil
	}
	s, ok := e.specs[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	v, err := e.loader.Load(ctx, s)
	if err != nil {
		return nil, err
	}
	e.loaded[name] = v
	return v, nil
}

// referenced returns the registered sources that text mentions as $name,
// in order of first appearance.
func (e *Executor) referenced(text string) []string {
	stubs := map[string]any{}
	for _, name := range e.Names() {
		stubs[name] = name
	}
	_, used := scanner.Named(text, stubs)
	names := make([]string, len(used))
	for i, u := range used {
		names[i] = u.(string)
	}
	return names
}

// Compile loads the sources text refers to and compiles it.
func (e *Executor) Compile(ctx context.Context, text string) (*linq.Enumerable, error) {
	names := e.referenced(text)
	values := make(map[string]any, len(names))
	for _, name := range names {
		v, err := e.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	e.log.WithField("sources", names).Debug("compiling query")
	return e.compiler.Named(text, values)
}

// Run compiles text and returns a cursor over its results.
func (e *Executor) Run(ctx context.Context, text string) (cursor.Cursor, error) {
	q, err := e.Compile(ctx, text)
	if err != nil {
		return nil, err
	}
	return q.Cursor(ctx), nil
}

// Explanation is the compiled form of a query without its results.
type Explanation struct {
	Tokens  []scanner.Token
	Query   string
	Sources []string
}

// Explain tokenizes, parses and compiles text without loading any source.
func (e *Executor) Explain(text string) (*Explanation, error) {
	stubs := map[string]any{}
	for _, name := range e.Names() {
		stubs[name] = []value.Value{}
	}
	inputs, _ := scanner.Named(text, stubs)
	stream, err := scanner.Tokenize(inputs)
	if err != nil {
		return nil, err
	}
	compiled, err := e.compiler.Named(text, stubs)
	if err != nil {
		return nil, err
	}
	return &Explanation{Tokens: stream.Remaining(), Query: compiled.String(), Sources: e.referenced(text)}, nil
}
