package value

import (
	"math"
	"strconv"
	"strings"
)

// NaN returns the not-a-number value.
func NaN() float64 { return math.NaN() }

// Truthy reports whether v converts to true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	return true
}

// ToNumber converts v to a number.
func ToNumber(v Value) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case undefined:
		return math.NaN()
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return parseNumeric(x)
	case []Value:
		return parseNumeric(ToString(x))
	}
	return math.NaN()
}

func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString converts v to a string.
func ToString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case string:
		return x
	case []Value:
		parts := make([]string, len(x))
		for i, el := range x {
			if !Nullish(el) {
				parts[i] = ToString(el)
			}
		}
		return strings.Join(parts, ",")
	case Callable:
		return "function () { [native code] }"
	}
	return "[object Object]"
}

// FormatNumber prints f the way JavaScript does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		return strings.Replace(s, "e-0", "e-", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToPrimitive converts objects and arrays to their string form and leaves
// primitives unchanged.
func ToPrimitive(v Value) Value {
	switch v.(type) {
	case nil, undefined, bool, float64, string:
		return v
	}
	return ToString(v)
}

// ToInt32 converts v to a signed 32-bit integer with wrap-around.
func ToInt32(v Value) int32 {
	return int32(ToUint32(v))
}

// ToUint32 converts v to an unsigned 32-bit integer with wrap-around.
func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Mod(math.Trunc(f), 1<<32)))
}

// ToInteger truncates v toward zero, mapping NaN to 0.
func ToInteger(v Value) int {
	f := ToNumber(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(f))
}
