package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Of converts a host Go value into a Value. Numbers become float64, slices
// and arrays become []Value, maps with string keys become objects with
// sorted keys, structs become objects keyed by their json tags in field
// order and functions become callables.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case undefined, bool, float64, string, *Object, *Grouping, Callable:
		return x
	case []Value:
		out := NewArray(len(x))[:len(x)]
		for i, el := range x {
			out[i] = Of(el)
		}
		return out
	case map[string]any:
		o := NewObject()
		for _, k := range sortedKeys(x) {
			o.Set(k, Of(x[k]))
		}
		return o
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	}
	return ofReflect(reflect.ValueOf(v))
}

func ofReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Of(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		fallthrough
	case reflect.Array:
		out := NewArray(rv.Len())[:rv.Len()]
		for i := range out {
			out[i] = Of(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
			byName[names[i]] = rv.MapIndex(k)
		}
		slices.Sort(names)
		o := NewObject()
		for _, n := range names {
			o.Set(n, Of(byName[n].Interface()))
		}
		return o
	case reflect.Struct:
		o := NewObject()
		addFields(o, rv)
		return o
	case reflect.Func:
		if rv.IsNil() {
			return nil
		}
		return &hostFunc{fn: rv}
	}
	return fmt.Sprint(rv.Interface())
}

// addFields copies the exported fields of a struct the way encoding/json
// names them, flattening untagged embedded structs.
func addFields(o *Object, rv reflect.Value) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)
		if f.Anonymous && name == "" {
			for fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				addFields(o, fv)
				continue
			}
		}
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		o.Set(name, Of(fv.Interface()))
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Export converts a Value into plain Go values: map[string]any, []any,
// float64, string, bool and nil. Groupings become maps with key and values.
func Export(v Value) any {
	switch x := v.(type) {
	case undefined:
		return nil
	case []Value:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = Export(el)
		}
		return out
	case *Object:
		out := make(map[string]any, x.Len())
		for _, k := range x.keys {
			out[k] = Export(x.props[k])
		}
		return out
	case *Grouping:
		return map[string]any{"key": Export(x.Key), "values": Export(x.Values)}
	}
	return v
}

// hostFunc adapts a Go function to Callable. Arguments are converted to
// the parameter types; a trailing error result is returned as the error.
type hostFunc struct {
	fn reflect.Value
}

var errorType = reflect.TypeFor[error]()

func (h *hostFunc) Call(_ Value, args []Value) (Value, error) {
	t := h.fn.Type()
	n := t.NumIn()
	in := make([]reflect.Value, 0, max(n, len(args)))
	for i := 0; i < n; i++ {
		pt := t.In(i)
		if t.IsVariadic() && i == n-1 {
			for j := i; j < len(args); j++ {
				rv, err := toReflect(args[j], pt.Elem())
				if err != nil {
					return nil, err
				}
				in = append(in, rv)
			}
			break
		}
		rv, err := toReflect(Arg(args, i), pt)
		if err != nil {
			return nil, err
		}
		in = append(in, rv)
	}
	out := h.fn.Call(in)
	if len(out) > 0 && t.Out(len(out)-1) == errorType {
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return nil, err
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return Undefined, nil
	}
	return Of(out[0].Interface()), nil
}

func toReflect(v Value, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Interface {
		if c, ok := v.(Callable); ok && reflect.TypeOf(c).Implements(t) {
			return reflect.ValueOf(c), nil
		}
		plain := Export(v)
		if plain == nil {
			return reflect.Zero(t), nil
		}
		rv := reflect.ValueOf(plain)
		if rv.Type().Implements(t) {
			return rv, nil
		}
		return reflect.Value{}, typeErrorf("cannot pass %s as %s", TypeOf(v), t)
	}
	plain := Export(v)
	if plain == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(plain)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Kind() == reflect.Float64 && isNumericKind(t.Kind()):
		return rv.Convert(t), nil
	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t), nil
	}
	// composite values round-trip through JSON into the parameter type
	data, err := json.Marshal(plain)
	if err != nil {
		return reflect.Value{}, typeErrorf("cannot pass %s as %s: %v", TypeOf(v), t, err)
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, typeErrorf("cannot pass %s as %s: %v", TypeOf(v), t, err)
	}
	return ptr.Elem(), nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
