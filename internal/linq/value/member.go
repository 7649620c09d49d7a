package value

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// Get reads property key of obj.
func Get(obj, key Value) (Value, error) {
	if Nullish(obj) {
		return nil, typeErrorf("cannot read properties of %s (reading '%s')", ToString(obj), ToString(key))
	}
	k := ToString(key)
	switch o := obj.(type) {
	case *Object:
		if v, ok := o.Get(k); ok {
			return v, nil
		}
	case []Value:
		if i, ok := arrayIndex(key); ok {
			if i < len(o) {
				return o[i], nil
			}
			return Undefined, nil
		}
		if k == "length" {
			return float64(len(o)), nil
		}
		if m, ok := arrayMethods[k]; ok {
			return bind(k, o, m), nil
		}
	case string:
		if i, ok := arrayIndex(key); ok {
			rs := []rune(o)
			if i < len(rs) {
				return string(rs[i]), nil
			}
			return Undefined, nil
		}
		if k == "length" {
			return float64(utf8.RuneCountInString(o)), nil
		}
		if m, ok := stringMethods[k]; ok {
			return bind(k, o, m), nil
		}
	case *Grouping:
		switch k {
		case "key":
			return o.Key, nil
		case "values":
			return o.Values, nil
		}
	case float64:
		if m, ok := numberMethods[k]; ok {
			return bind(k, o, m), nil
		}
	case bool:
		if k == "toString" {
			return bind(k, o, func(this bool, _ []Value) (Value, error) { return ToString(this), nil }), nil
		}
	case *Constructor:
		if o.Statics != nil {
			if v, ok := o.Statics.Get(k); ok {
				return v, nil
			}
		}
	}
	return Undefined, nil
}

// Set assigns property key of obj.
func Set(obj, key, v Value) error {
	switch o := obj.(type) {
	case *Object:
		o.Set(ToString(key), v)
		return nil
	case []Value:
		if i, ok := arrayIndex(key); ok && i < len(o) {
			o[i] = v
			return nil
		}
		return typeErrorf("cannot set index %s of an array of length %d", ToString(key), len(o))
	}
	if Nullish(obj) {
		return typeErrorf("cannot set properties of %s (setting '%s')", ToString(obj), ToString(key))
	}
	return typeErrorf("cannot set property '%s' of %s", ToString(key), TypeOf(obj))
}

// Delete removes property key of obj. Deleting from a non-object is a
// no-op that reports true.
func Delete(obj, key Value) (bool, error) {
	if Nullish(obj) {
		return false, typeErrorf("cannot convert %s to object", ToString(obj))
	}
	if o, ok := obj.(*Object); ok {
		o.Delete(ToString(key))
	}
	return true, nil
}

// Iterate returns the elements produced by iterating v.
func Iterate(v Value) ([]Value, error) {
	switch x := v.(type) {
	case []Value:
		return x, nil
	case string:
		out := make([]Value, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	case *Grouping:
		return x.Values, nil
	}
	return nil, typeErrorf("%s is not iterable", describe(v))
}

func describe(v Value) string {
	switch v.(type) {
	case nil, undefined:
		return ToString(v)
	case string:
		return strconv.Quote(v.(string))
	case *Object, *Grouping:
		return "object"
	}
	return ToString(v)
}

// arrayIndex reports whether key is a non-negative integer index.
func arrayIndex(key Value) (int, bool) {
	switch k := key.(type) {
	case float64:
		if k >= 0 && k == math.Trunc(k) && k < math.MaxInt32 {
			return int(k), true
		}
	case string:
		n, err := strconv.Atoi(k)
		if err == nil && n >= 0 && strconv.Itoa(n) == k {
			return n, true
		}
	}
	return 0, false
}

func bind[T any](name string, this T, m func(T, []Value) (Value, error)) *Func {
	return NewFunc(name, func(_ Value, args []Value) (Value, error) { return m(this, args) })
}

// relative resolves a possibly negative start or end argument against n.
func relative(v Value, n, def int) int {
	if v == Undefined {
		return def
	}
	i := ToInteger(v)
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
