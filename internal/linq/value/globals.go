package value

import (
	"math"
	"strconv"
	"strings"
)

// Constructor is a global such as Array or String: callable as a
// conversion function, tested by instanceof and carrying static members.
type Constructor struct {
	Func
	Instance func(Value) bool
	Statics  *Object
}

var globals map[string]Value

func init() {
	globals = map[string]Value{
		"undefined":  Undefined,
		"NaN":        math.NaN(),
		"Infinity":   math.Inf(1),
		"Math":       mathObject(),
		"JSON":       jsonObject(),
		"Object":     objectConstructor(),
		"Array":      arrayConstructor(),
		"String":     primitiveConstructor("String", func(v Value) Value { return ToString(v) }),
		"Number":     primitiveConstructor("Number", func(v Value) Value { return ToNumber(v) }),
		"Boolean":    primitiveConstructor("Boolean", func(v Value) Value { return Truthy(v) }),
		"parseInt":   NewFunc("parseInt", parseInt),
		"parseFloat": NewFunc("parseFloat", parseFloat),
		"isNaN": NewFunc("isNaN", func(_ Value, args []Value) (Value, error) {
			return math.IsNaN(ToNumber(Arg(args, 0))), nil
		}),
	}
}

// Global returns the built-in global named name.
func Global(name string) (Value, bool) {
	v, ok := globals[name]
	return v, ok
}

// GlobalNames lists the built-in globals.
func GlobalNames() []string { return sortedKeys(globals) }

func unary(name string, fn func(float64) float64) *Func {
	return NewFunc(name, func(_ Value, args []Value) (Value, error) {
		return fn(ToNumber(Arg(args, 0))), nil
	})
}

func mathObject() *Object {
	o := NewObject()
	o.Set("PI", math.Pi)
	o.Set("E", math.E)
	o.Set("abs", unary("abs", math.Abs))
	o.Set("floor", unary("floor", math.Floor))
	o.Set("ceil", unary("ceil", math.Ceil))
	o.Set("round", unary("round", func(f float64) float64 { return math.Floor(f + 0.5) }))
	o.Set("trunc", unary("trunc", math.Trunc))
	o.Set("sqrt", unary("sqrt", math.Sqrt))
	o.Set("log", unary("log", math.Log))
	o.Set("exp", unary("exp", math.Exp))
	o.Set("sign", unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	}))
	o.Set("pow", NewFunc("pow", func(_ Value, args []Value) (Value, error) {
		return math.Pow(ToNumber(Arg(args, 0)), ToNumber(Arg(args, 1))), nil
	}))
	o.Set("min", NewFunc("min", func(_ Value, args []Value) (Value, error) {
		out := math.Inf(1)
		for _, a := range args {
			out = math.Min(out, ToNumber(a))
		}
		return out, nil
	}))
	o.Set("max", NewFunc("max", func(_ Value, args []Value) (Value, error) {
		out := math.Inf(-1)
		for _, a := range args {
			out = math.Max(out, ToNumber(a))
		}
		return out, nil
	}))
	return o
}

func jsonObject() *Object {
	o := NewObject()
	o.Set("stringify", NewFunc("stringify", func(_ Value, args []Value) (Value, error) {
		v := Arg(args, 0)
		if omitted(v) {
			return Undefined, nil
		}
		data, err := Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}))
	o.Set("parse", NewFunc("parse", func(_ Value, args []Value) (Value, error) {
		v, err := Unmarshal([]byte(ToString(Arg(args, 0))))
		if err != nil {
			return nil, &TypeError{Msg: "JSON.parse: " + err.Error()}
		}
		return v, nil
	}))
	return o
}

func objectConstructor() *Constructor {
	statics := NewObject()
	entries := func(name string, pick func(k string, v Value) Value) *Func {
		return NewFunc(name, func(_ Value, args []Value) (Value, error) {
			out := NewArray(0)
			switch o := Arg(args, 0).(type) {
			case *Object:
				for _, k := range o.keys {
					out = append(out, pick(k, o.props[k]))
				}
			case []Value:
				for i, v := range o {
					out = append(out, pick(strconv.Itoa(i), v))
				}
			case *Grouping:
				out = append(out, pick("key", o.Key), pick("values", o.Values))
			}
			return out, nil
		})
	}
	statics.Set("keys", entries("keys", func(k string, _ Value) Value { return k }))
	statics.Set("values", entries("values", func(_ string, v Value) Value { return v }))
	statics.Set("entries", entries("entries", func(k string, v Value) Value { return []Value{k, v} }))
	statics.Set("assign", NewFunc("assign", func(_ Value, args []Value) (Value, error) {
		target, ok := Arg(args, 0).(*Object)
		if !ok {
			return nil, &TypeError{Msg: "Object.assign target must be an object"}
		}
		for _, src := range args[1:] {
			if o, ok := src.(*Object); ok {
				target.Assign(o)
			}
		}
		return target, nil
	}))
	return &Constructor{
		Func: Func{Name: "Object", Fn: func(_ Value, args []Value) (Value, error) {
			if o, ok := Arg(args, 0).(*Object); ok {
				return o, nil
			}
			return NewObject(), nil
		}},
		Instance: func(v Value) bool { return !isPrimitive(v) },
		Statics:  statics,
	}
}

func arrayConstructor() *Constructor {
	statics := NewObject()
	statics.Set("isArray", NewFunc("isArray", func(_ Value, args []Value) (Value, error) {
		_, ok := Arg(args, 0).([]Value)
		return ok, nil
	}))
	statics.Set("from", NewFunc("from", func(_ Value, args []Value) (Value, error) {
		items, err := Iterate(Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return append(NewArray(len(items)), items...), nil
	}))
	statics.Set("of", NewFunc("of", func(_ Value, args []Value) (Value, error) {
		return append(NewArray(len(args)), args...), nil
	}))
	return &Constructor{
		Func: Func{Name: "Array", Fn: func(_ Value, args []Value) (Value, error) {
			return append(NewArray(len(args)), args...), nil
		}},
		Instance: func(v Value) bool {
			_, ok := v.([]Value)
			return ok
		},
		Statics: statics,
	}
}

// primitiveConstructor builds String, Number or Boolean. Primitive values
// are never instances of them.
func primitiveConstructor(name string, convert func(Value) Value) *Constructor {
	return &Constructor{
		Func: Func{Name: name, Fn: func(_ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return convert(defaultOf(name)), nil
			}
			return convert(args[0]), nil
		}},
		Instance: func(Value) bool { return false },
	}
}

func defaultOf(name string) Value {
	switch name {
	case "String":
		return ""
	case "Number":
		return 0.0
	}
	return false
}

func parseInt(_ Value, args []Value) (Value, error) {
	s := strings.TrimSpace(ToString(Arg(args, 0)))
	radix := 10
	if r := Arg(args, 1); r != Undefined {
		radix = ToInteger(r)
	}
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if (radix == 16 || radix == 0) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s, radix = s[2:], 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN(), nil
	}
	end := 0
	for end < len(s) {
		if d := digitValue(s[end]); d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN(), nil
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return math.NaN(), nil
	}
	return sign * float64(n), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func parseFloat(_ Value, args []Value) (Value, error) {
	s := strings.TrimSpace(ToString(Arg(args, 0)))
	end := 0
	seenDot, seenDigit := false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot:
			seenDot = true
		case (c == '-' || c == '+') && end == 0:
		default:
			break scan
		}
		end++
	}
	if !seenDigit {
		if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
			return math.Inf(1), nil
		}
		if strings.HasPrefix(s, "-Infinity") {
			return math.Inf(-1), nil
		}
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN(), nil
	}
	return f, nil
}
