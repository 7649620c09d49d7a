package value

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ToYAML builds a YAML node for v that keeps object key order.
func ToYAML(v Value) *yaml.Node {
	switch x := v.(type) {
	case nil, undefined:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}
	case float64:
		switch {
		case math.IsNaN(x):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
		case math.IsInf(x, 1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
		case math.IsInf(x, -1):
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
		case x == math.Trunc(x) && math.Abs(x) < 1e21:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: FormatNumber(x)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: FormatNumber(x)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}
	case []Value:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range x {
			n.Content = append(n.Content, ToYAML(el))
		}
		return n
	case *Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.keys {
			el := x.props[k]
			if omitted(el) {
				continue
			}
			n.Content = append(n.Content, ToYAML(k), ToYAML(el))
		}
		return n
	case *Grouping:
		return ToYAML(ObjectOf("key", x.Key, "values", x.Values))
	}
	return ToYAML(Of(Export(v)))
}

// FromYAML converts a decoded YAML node into a Value, keeping mapping
// order. Aliases are resolved; merge keys are not supported.
func FromYAML(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.SequenceNode:
		out := NewArray(len(n.Content))
		for _, c := range n.Content {
			el, err := FromYAML(c)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		return out, nil
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			el, err := FromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o.Set(n.Content[i].Value, el)
		}
		return o, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("value: yaml line %d: %w", n.Line, err)
		}
		return Of(v), nil
	}
	return nil, fmt.Errorf("value: unsupported yaml node kind %d", n.Kind)
}
