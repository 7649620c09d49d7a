package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

const maxLineSize = 16 << 20

func loadFile(s Spec) (value.Value, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	switch s.Format {
	case "json":
		return value.Unmarshal(data)
	case "jsonl":
		return decodeLines(data)
	case "yaml":
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("unknown file format %q", s.Format)
}

// decodeLines reads one JSON value per non-blank line.
func decodeLines(data []byte) (value.Value, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := value.NewArray(0)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := value.Unmarshal(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeYAML returns the single document of data, or an array when data
// holds several documents.
func decodeYAML(data []byte) (value.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []value.Value
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := value.FromYAML(&n)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
	switch len(docs) {
	case 0:
		return value.NewArray(0), nil
	case 1:
		return docs[0], nil
	}
	return docs, nil
}
