package value

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

type (
	arrayMethod  func(this []Value, args []Value) (Value, error)
	stringMethod func(this string, args []Value) (Value, error)
	numberMethod func(this float64, args []Value) (Value, error)
)

var (
	arrayMethods  map[string]arrayMethod
	stringMethods map[string]stringMethod
	numberMethods map[string]numberMethod
)

func init() {
	arrayMethods = map[string]arrayMethod{
		"join":        arrayJoin,
		"includes":    arrayIncludes,
		"indexOf":     arrayIndexOf,
		"lastIndexOf": arrayLastIndexOf,
		"slice":       arraySlice,
		"concat":      arrayConcat,
		"reverse":     arrayReverse,
		"at":          arrayAt,
		"flat":        arrayFlat,
		"map":         arrayMap,
		"filter":      arrayFilter,
		"find":        arrayFind,
		"findIndex":   arrayFindIndex,
		"some":        arraySome,
		"every":       arrayEvery,
		"reduce":      arrayReduce,
		"sort":        arraySort,
		"toString":    func(this []Value, _ []Value) (Value, error) { return ToString(this), nil },
	}
	stringMethods = map[string]stringMethod{
		"toUpperCase": func(s string, _ []Value) (Value, error) { return strings.ToUpper(s), nil },
		"toLowerCase": func(s string, _ []Value) (Value, error) { return strings.ToLower(s), nil },
		"trim":        func(s string, _ []Value) (Value, error) { return strings.TrimSpace(s), nil },
		"trimStart":   func(s string, _ []Value) (Value, error) { return strings.TrimLeftFunc(s, unicode.IsSpace), nil },
		"trimEnd":     func(s string, _ []Value) (Value, error) { return strings.TrimRightFunc(s, unicode.IsSpace), nil },
		"toString":    func(s string, _ []Value) (Value, error) { return s, nil },
		"split":       stringSplit,
		"includes": func(s string, args []Value) (Value, error) {
			return strings.Contains(s, ToString(Arg(args, 0))), nil
		},
		"startsWith": func(s string, args []Value) (Value, error) {
			return strings.HasPrefix(s, ToString(Arg(args, 0))), nil
		},
		"endsWith": func(s string, args []Value) (Value, error) {
			return strings.HasSuffix(s, ToString(Arg(args, 0))), nil
		},
		"indexOf":     stringIndexOf,
		"lastIndexOf": stringLastIndexOf,
		"slice":       stringSlice,
		"substring":   stringSubstring,
		"charAt": func(s string, args []Value) (Value, error) {
			rs := []rune(s)
			if i := ToInteger(Arg(args, 0)); i >= 0 && i < len(rs) {
				return string(rs[i]), nil
			}
			return "", nil
		},
		"at": func(s string, args []Value) (Value, error) {
			rs := []rune(s)
			i := ToInteger(Arg(args, 0))
			if i < 0 {
				i += len(rs)
			}
			if i < 0 || i >= len(rs) {
				return Undefined, nil
			}
			return string(rs[i]), nil
		},
		"padStart": func(s string, args []Value) (Value, error) { return pad(s, args, true), nil },
		"padEnd":   func(s string, args []Value) (Value, error) { return pad(s, args, false), nil },
		"repeat": func(s string, args []Value) (Value, error) {
			n := ToInteger(Arg(args, 0))
			if n < 0 {
				return nil, &TypeError{Msg: "invalid count value: " + strconv.Itoa(n)}
			}
			return strings.Repeat(s, n), nil
		},
		"replace": func(s string, args []Value) (Value, error) {
			return strings.Replace(s, ToString(Arg(args, 0)), ToString(Arg(args, 1)), 1), nil
		},
		"replaceAll": func(s string, args []Value) (Value, error) {
			return strings.ReplaceAll(s, ToString(Arg(args, 0)), ToString(Arg(args, 1))), nil
		},
		"concat": func(s string, args []Value) (Value, error) {
			var b strings.Builder
			b.WriteString(s)
			for _, a := range args {
				b.WriteString(ToString(a))
			}
			return b.String(), nil
		},
	}
	numberMethods = map[string]numberMethod{
		"toFixed": func(f float64, args []Value) (Value, error) {
			digits := ToInteger(Arg(args, 0))
			if digits < 0 || digits > 100 {
				return nil, &TypeError{Msg: "toFixed() digits argument must be between 0 and 100"}
			}
			if math.Abs(f) >= 1e21 || math.IsNaN(f) {
				return FormatNumber(f), nil
			}
			return strconv.FormatFloat(f, 'f', digits, 64), nil
		},
		"toString": func(f float64, args []Value) (Value, error) {
			radix := Arg(args, 0)
			if radix == Undefined || ToInteger(radix) == 10 {
				return FormatNumber(f), nil
			}
			r := ToInteger(radix)
			if r < 2 || r > 36 {
				return nil, &TypeError{Msg: "toString() radix must be between 2 and 36"}
			}
			if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
				return FormatNumber(f), nil
			}
			return strconv.FormatInt(int64(f), r), nil
		},
	}
}

func callback(args []Value, method string) (Callable, error) {
	fn, ok := Arg(args, 0).(Callable)
	if !ok {
		return nil, typeErrorf("%s callback %s is not a function", method, ToString(Arg(args, 0)))
	}
	return fn, nil
}

func arrayJoin(this []Value, args []Value) (Value, error) {
	sep := ","
	if s := Arg(args, 0); s != Undefined {
		sep = ToString(s)
	}
	parts := make([]string, len(this))
	for i, el := range this {
		if !Nullish(el) {
			parts[i] = ToString(el)
		}
	}
	return strings.Join(parts, sep), nil
}

func arrayIncludes(this []Value, args []Value) (Value, error) {
	x := Arg(args, 0)
	return slices.ContainsFunc(this, func(el Value) bool { return SameValueZero(el, x) }), nil
}

func arrayIndexOf(this []Value, args []Value) (Value, error) {
	x := Arg(args, 0)
	return float64(slices.IndexFunc(this, func(el Value) bool { return StrictEquals(el, x) })), nil
}

func arrayLastIndexOf(this []Value, args []Value) (Value, error) {
	x := Arg(args, 0)
	for i := len(this) - 1; i >= 0; i-- {
		if StrictEquals(this[i], x) {
			return float64(i), nil
		}
	}
	return float64(-1), nil
}

func arraySlice(this []Value, args []Value) (Value, error) {
	start := relative(Arg(args, 0), len(this), 0)
	end := relative(Arg(args, 1), len(this), len(this))
	if end < start {
		end = start
	}
	return slices.Clone(this[start:end]), nil
}

func arrayConcat(this []Value, args []Value) (Value, error) {
	out := slices.Clone(this)
	for _, a := range args {
		if arr, ok := a.([]Value); ok {
			out = append(out, arr...)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// arrayReverse returns a reversed copy; arrays reachable from bindings are
// shared between environments and are never reordered in place.
func arrayReverse(this []Value, _ []Value) (Value, error) {
	out := slices.Clone(this)
	slices.Reverse(out)
	return out, nil
}

func arrayAt(this []Value, args []Value) (Value, error) {
	i := ToInteger(Arg(args, 0))
	if i < 0 {
		i += len(this)
	}
	if i < 0 || i >= len(this) {
		return Undefined, nil
	}
	return this[i], nil
}

func arrayFlat(this []Value, args []Value) (Value, error) {
	depth := 1
	if d := Arg(args, 0); d != Undefined {
		depth = ToInteger(d)
	}
	return flatten(this, depth), nil
}

func flatten(arr []Value, depth int) []Value {
	out := NewArray(len(arr))
	for _, el := range arr {
		if inner, ok := el.([]Value); ok && depth > 0 {
			out = append(out, flatten(inner, depth-1)...)
			continue
		}
		out = append(out, el)
	}
	return out
}

// each calls fn for every element until visit returns false.
func each(this []Value, args []Value, method string, visit func(i int, el, result Value) bool) error {
	fn, err := callback(args, method)
	if err != nil {
		return err
	}
	for i, el := range this {
		r, err := fn.Call(Undefined, []Value{el, float64(i), this})
		if err != nil {
			return err
		}
		if !visit(i, el, r) {
			return nil
		}
	}
	return nil
}

func arrayMap(this []Value, args []Value) (Value, error) {
	out := NewArray(len(this))[:len(this)]
	err := each(this, args, "map", func(i int, _, r Value) bool {
		out[i] = r
		return true
	})
	return out, err
}

func arrayFilter(this []Value, args []Value) (Value, error) {
	out := NewArray(0)
	err := each(this, args, "filter", func(_ int, el, r Value) bool {
		if Truthy(r) {
			out = append(out, el)
		}
		return true
	})
	return out, err
}

func arrayFind(this []Value, args []Value) (Value, error) {
	found := Undefined
	err := each(this, args, "find", func(_ int, el, r Value) bool {
		if Truthy(r) {
			found = el
			return false
		}
		return true
	})
	return found, err
}

func arrayFindIndex(this []Value, args []Value) (Value, error) {
	found := -1
	err := each(this, args, "findIndex", func(i int, _, r Value) bool {
		if Truthy(r) {
			found = i
			return false
		}
		return true
	})
	return float64(found), err
}

func arraySome(this []Value, args []Value) (Value, error) {
	found := false
	err := each(this, args, "some", func(_ int, _, r Value) bool {
		found = Truthy(r)
		return !found
	})
	return found, err
}

func arrayEvery(this []Value, args []Value) (Value, error) {
	all := true
	err := each(this, args, "every", func(_ int, _, r Value) bool {
		all = Truthy(r)
		return all
	})
	return all, err
}

func arrayReduce(this []Value, args []Value) (Value, error) {
	fn, err := callback(args, "reduce")
	if err != nil {
		return nil, err
	}
	items := this
	var acc Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(items) == 0 {
			return nil, &TypeError{Msg: "reduce of empty array with no initial value"}
		}
		acc, items = items[0], items[1:]
	}
	offset := len(this) - len(items)
	for i, el := range items {
		acc, err = fn.Call(Undefined, []Value{acc, el, float64(i + offset), this})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// arraySort returns a sorted copy. Without a comparator elements compare
// by their string form, with undefined last.
func arraySort(this []Value, args []Value) (Value, error) {
	out := slices.Clone(this)
	cmp := func(a, b Value) (int, error) {
		switch {
		case a == Undefined && b == Undefined:
			return 0, nil
		case a == Undefined:
			return 1, nil
		case b == Undefined:
			return -1, nil
		}
		return strings.Compare(ToString(a), ToString(b)), nil
	}
	if fn, ok := Arg(args, 0).(Callable); ok {
		cmp = func(a, b Value) (int, error) {
			r, err := fn.Call(Undefined, []Value{a, b})
			if err != nil {
				return 0, err
			}
			n := ToNumber(r)
			switch {
			case n < 0:
				return -1, nil
			case n > 0:
				return 1, nil
			}
			return 0, nil
		}
	}
	var failed error
	slices.SortStableFunc(out, func(a, b Value) int {
		if failed != nil {
			return 0
		}
		n, err := cmp(a, b)
		if err != nil {
			failed = err
		}
		return n
	})
	return out, failed
}

func stringSplit(s string, args []Value) (Value, error) {
	sepArg := Arg(args, 0)
	limit := -1
	if l := Arg(args, 1); l != Undefined {
		limit = int(ToUint32(l))
	}
	var parts []string
	switch {
	case sepArg == Undefined:
		parts = []string{s}
	case ToString(sepArg) == "":
		for _, r := range s {
			parts = append(parts, string(r))
		}
	default:
		parts = strings.Split(s, ToString(sepArg))
	}
	if limit >= 0 && limit < len(parts) {
		parts = parts[:limit]
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func stringIndexOf(s string, args []Value) (Value, error) {
	i := strings.Index(s, ToString(Arg(args, 0)))
	if i < 0 {
		return float64(-1), nil
	}
	return float64(len([]rune(s[:i]))), nil
}

func stringLastIndexOf(s string, args []Value) (Value, error) {
	i := strings.LastIndex(s, ToString(Arg(args, 0)))
	if i < 0 {
		return float64(-1), nil
	}
	return float64(len([]rune(s[:i]))), nil
}

func stringSlice(s string, args []Value) (Value, error) {
	rs := []rune(s)
	start := relative(Arg(args, 0), len(rs), 0)
	end := relative(Arg(args, 1), len(rs), len(rs))
	if end < start {
		return "", nil
	}
	return string(rs[start:end]), nil
}

func stringSubstring(s string, args []Value) (Value, error) {
	rs := []rune(s)
	clamp := func(v Value, def int) int {
		if v == Undefined {
			return def
		}
		return max(0, min(ToInteger(v), len(rs)))
	}
	start, end := clamp(Arg(args, 0), 0), clamp(Arg(args, 1), len(rs))
	if start > end {
		start, end = end, start
	}
	return string(rs[start:end]), nil
}

func pad(s string, args []Value, start bool) string {
	target := ToInteger(Arg(args, 0))
	filler := " "
	if f := Arg(args, 1); f != Undefined {
		filler = ToString(f)
	}
	n := len([]rune(s))
	if target <= n || filler == "" {
		return s
	}
	fill := []rune(strings.Repeat(filler, target-n))[:target-n]
	if start {
		return string(fill) + s
	}
	return s + string(fill)
}

// MethodNames lists the built-in array, string and number methods, sorted
// and without duplicates.
func MethodNames() []string {
	var out []string
	for k := range arrayMethods {
		out = append(out, k)
	}
	for k := range stringMethods {
		out = append(out, k)
	}
	for k := range numberMethods {
		out = append(out, k)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
