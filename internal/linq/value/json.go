package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Marshal encodes v as JSON the way JSON.stringify does: NaN and infinities
// become null, undefined and function members of objects are omitted and
// undefined or function array elements become null.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON keeps property order.
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// MarshalJSON encodes a grouping as {"key": ..., "values": [...]}.
func (g *Grouping) MarshalJSON() ([]byte, error) { return Marshal(g) }

func omitted(v Value) bool {
	if v == Undefined {
		return true
	}
	_, fn := v.(Callable)
	return fn
}

func encode(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case nil, undefined:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(FormatNumber(x))
	case string:
		encodeString(buf, x)
	case []Value:
		buf.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if omitted(el) {
				buf.WriteString("null")
				continue
			}
			if err := encode(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		first := true
		for _, k := range x.keys {
			el := x.props[k]
			if omitted(el) {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			encodeString(buf, k)
			buf.WriteByte(':')
			if err := encode(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Grouping:
		buf.WriteString(`{"key":`)
		if err := encode(buf, x.Key); err != nil {
			return err
		}
		buf.WriteString(`,"values":`)
		if err := encode(buf, x.Values); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Callable:
		buf.WriteString("null")
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("value: encode %T: %w", x, err)
		}
		buf.Write(data)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates each value with a newline
	buf.Truncate(buf.Len() - 1)
}

// Unmarshal decodes one JSON document, keeping object key order.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := Decode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("value: unexpected data after JSON document")
	}
	return v, nil
}

// Decode reads the next JSON value from dec, keeping object key order.
// dec should have UseNumber set.
func Decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			out := NewArray(0)
			for dec.More() {
				el, err := Decode(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, el)
			}
			_, err := dec.Token()
			return out, err
		case '{':
			o := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, _ := kt.(string)
				el, err := Decode(dec)
				if err != nil {
					return nil, err
				}
				o.Set(k, el)
			}
			_, err := dec.Token()
			return o, err
		}
		return nil, fmt.Errorf("value: unexpected delimiter %v", t)
	case json.Number:
		return Of(t), nil
	case float64:
		return t, nil
	}
	return tok, nil
}
