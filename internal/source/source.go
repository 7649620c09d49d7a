// Package source loads named datasets that queries reference as $name.
package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// Kind identifies where a source reads from.
type Kind string

const (
	KindFile     Kind = "file"
	KindSQLite   Kind = "sqlite"
	KindDynamoDB Kind = "dynamodb"
)

// Spec describes one named source.
//
//	users=users.json
//	orders=sqlite://shop.db?table=orders
//	events=dynamodb://events?region=eu-west-1&endpoint=http://localhost:8000
type Spec struct {
	Name string
	Kind Kind
	// Path is the file or database path.
	Path string
	// Format is json, jsonl or yaml for file sources.
	Format string
	// Table is the sqlite or DynamoDB table; Query replaces it for sqlite.
	Table    string
	Query    string
	Region   string
	Endpoint string
}

// Parse parses "name=spec".
func Parse(s string) (Spec, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Spec{}, fmt.Errorf("source %q: expected name=spec", s)
	}
	return ParseSpec(name, strings.TrimSpace(rest))
}

// ParseSpec parses the spec part of a source definition.
func ParseSpec(name, spec string) (Spec, error) {
	if spec == "" {
		return Spec{}, fmt.Errorf("source %s: empty spec", name)
	}
	scheme, _, hasScheme := strings.Cut(spec, "://")
	if !hasScheme {
		return fileSpec(name, spec)
	}
	u, err := url.Parse(spec)
	if err != nil {
		return Spec{}, fmt.Errorf("source %s: %w", name, err)
	}
	q := u.Query()
	switch scheme {
	case "file":
		return fileSpec(name, u.Host+u.Path)
	case "sqlite":
		s := Spec{Name: name, Kind: KindSQLite, Path: u.Host + u.Path, Table: q.Get("table"), Query: q.Get("query")}
		if s.Path == "" {
			return Spec{}, fmt.Errorf("source %s: sqlite database path is required", name)
		}
		if s.Table == "" && s.Query == "" {
			return Spec{}, fmt.Errorf("source %s: sqlite source needs table or query", name)
		}
		return s, nil
	case "dynamodb":
		s := Spec{Name: name, Kind: KindDynamoDB, Table: u.Host, Region: q.Get("region"), Endpoint: q.Get("endpoint")}
		if s.Table == "" {
			return Spec{}, fmt.Errorf("source %s: dynamodb table is required", name)
		}
		return s, nil
	}
	return Spec{}, fmt.Errorf("source %s: unsupported scheme %q", name, scheme)
}

func fileSpec(name, path string) (Spec, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".jsonl", ".ndjson":
		format = "jsonl"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return Spec{}, fmt.Errorf("source %s: cannot tell the format of %q", name, path)
	}
	return Spec{Name: name, Kind: KindFile, Path: path, Format: format}, nil
}

// Resolve returns s with a relative path joined to base.
func (s Spec) Resolve(base string) Spec {
	if base != "" && s.Path != "" && s.Path != ":memory:" && !filepath.IsAbs(s.Path) {
		s.Path = filepath.Join(base, s.Path)
	}
	return s
}

func (s Spec) String() string {
	switch s.Kind {
	case KindSQLite:
		if s.Query != "" {
			return fmt.Sprintf("sqlite://%s?query=%s", s.Path, url.QueryEscape(s.Query))
		}
		return fmt.Sprintf("sqlite://%s?table=%s", s.Path, s.Table)
	case KindDynamoDB:
		v := url.Values{}
		if s.Region != "" {
			v.Set("region", s.Region)
		}
		if s.Endpoint != "" {
			v.Set("endpoint", s.Endpoint)
		}
		if len(v) == 0 {
			return "dynamodb://" + s.Table
		}
		return "dynamodb://" + s.Table + "?" + v.Encode()
	}
	return s.Path
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithDynamoDB makes DynamoDB sources scan through client instead of a
// client built from the spec.
func WithDynamoDB(client dynamodb.ScanAPIClient) Option {
	return func(ld *Loader) { ld.dynamo = client }
}

// Loader reads sources into query values.
type Loader struct {
	log    logrus.FieldLogger
	dynamo dynamodb.ScanAPIClient
}

// NewLoader returns a Loader configured by opts.
func NewLoader(opts ...Option) *Loader {
	l := logrus.New()
	l.SetOutput(io.Discard)
	ld := &Loader{log: l}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads the whole source. Tables and line-delimited files load as
// arrays of objects.
func (ld *Loader) Load(ctx context.Context, s Spec) (value.Value, error) {
	var (
		v   value.Value
		err error
	)
	switch s.Kind {
	case KindFile:
		v, err = loadFile(s)
	case KindSQLite:
		v, err = loadSQLite(ctx, s)
	case KindDynamoDB:
		v, err = ld.loadDynamoDB(ctx, s)
	default:
		err = fmt.Errorf("unknown source kind %q", s.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load source %s: %w", s.Name, err)
	}
	fields := logrus.Fields{"source": s.Name, "kind": s.Kind}
	if arr, ok := v.([]value.Value); ok {
		fields["rows"] = len(arr)
	}
	ld.log.WithFields(fields).Debug("loaded source")
	return v, nil
}
