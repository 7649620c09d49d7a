package value

import (
	"math"
)

// Binary applies an infix operator. The logical operators && || and ?? are
// evaluated eagerly here; callers that need short-circuiting handle them
// before evaluating the right operand.
func Binary(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		pa, pb := ToPrimitive(a), ToPrimitive(b)
		_, sa := pa.(string)
		_, sb := pb.(string)
		if sa || sb {
			return ToString(pa) + ToString(pb), nil
		}
		return ToNumber(pa) + ToNumber(pb), nil
	case "-":
		return ToNumber(a) - ToNumber(b), nil
	case "*":
		return ToNumber(a) * ToNumber(b), nil
	case "/":
		return ToNumber(a) / ToNumber(b), nil
	case "%":
		return math.Mod(ToNumber(a), ToNumber(b)), nil
	case "**":
		return math.Pow(ToNumber(a), ToNumber(b)), nil
	case "<<":
		return float64(ToInt32(a) << (ToUint32(b) & 31)), nil
	case ">>":
		return float64(ToInt32(a) >> (ToUint32(b) & 31)), nil
	case ">>>":
		return float64(ToUint32(a) >> (ToUint32(b) & 31)), nil
	case "&":
		return float64(ToInt32(a) & ToInt32(b)), nil
	case "|":
		return float64(ToInt32(a) | ToInt32(b)), nil
	case "^":
		return float64(ToInt32(a) ^ ToInt32(b)), nil
	case "<":
		lt, ok := less(a, b)
		return ok && lt, nil
	case ">":
		lt, ok := less(b, a)
		return ok && lt, nil
	case "<=":
		lt, ok := less(b, a)
		return ok && !lt, nil
	case ">=":
		lt, ok := less(a, b)
		return ok && !lt, nil
	case "==":
		return LooseEquals(a, b), nil
	case "!=":
		return !LooseEquals(a, b), nil
	case "===":
		return StrictEquals(a, b), nil
	case "!==":
		return !StrictEquals(a, b), nil
	case "in":
		return hasProperty(b, a)
	case "instanceof":
		return instanceOf(a, b)
	case "&&":
		if !Truthy(a) {
			return a, nil
		}
		return b, nil
	case "||":
		if Truthy(a) {
			return a, nil
		}
		return b, nil
	case "??":
		if Nullish(a) {
			return b, nil
		}
		return a, nil
	}
	return nil, typeErrorf("unknown operator %s", op)
}

// Unary applies a prefix operator other than delete.
func Unary(op string, v Value) (Value, error) {
	switch op {
	case "!":
		return !Truthy(v), nil
	case "-":
		return -ToNumber(v), nil
	case "+":
		return ToNumber(v), nil
	case "~":
		return float64(^ToInt32(v)), nil
	case "typeof":
		return TypeOf(v), nil
	case "void":
		return Undefined, nil
	}
	return nil, typeErrorf("unknown operator %s", op)
}

// less implements the abstract relational comparison a < b. ok is false
// when either side converts to NaN.
func less(a, b Value) (lt, ok bool) {
	pa, pb := ToPrimitive(a), ToPrimitive(b)
	sa, aIsStr := pa.(string)
	sb, bIsStr := pb.(string)
	if aIsStr && bIsStr {
		return sa < sb, true
	}
	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false, false
	}
	return na < nb, true
}

// Compare orders a and b for sorting: -1 if a < b, 1 if a > b, else 0.
func Compare(a, b Value) int {
	if lt, _ := less(a, b); lt {
		return -1
	}
	if gt, _ := less(b, a); gt {
		return 1
	}
	return 0
}

// StrictEquals implements ===. Objects, arrays and functions compare by
// identity.
func StrictEquals(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case undefined:
		return b == Undefined
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []Value:
		y, ok := b.([]Value)
		return ok && SameArray(x, y)
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Grouping:
		y, ok := b.(*Grouping)
		return ok && x == y
	case Callable:
		y, ok := b.(Callable)
		return ok && x == y
	}
	return false
}

// SameValueZero is StrictEquals except that NaN equals NaN.
func SameValueZero(a, b Value) bool {
	if x, ok := a.(float64); ok && math.IsNaN(x) {
		y, ok := b.(float64)
		return ok && math.IsNaN(y)
	}
	return StrictEquals(a, b)
}

// LooseEquals implements ==.
func LooseEquals(a, b Value) bool {
	if Classify(a) == Classify(b) {
		return StrictEquals(a, b)
	}
	if Nullish(a) || Nullish(b) {
		return Nullish(a) && Nullish(b)
	}
	switch x := a.(type) {
	case float64:
		if s, ok := b.(string); ok {
			return x == parseNumeric(s)
		}
	case string:
		if y, ok := b.(float64); ok {
			return parseNumeric(x) == y
		}
	case bool:
		return LooseEquals(ToNumber(x), b)
	}
	if y, ok := b.(bool); ok {
		return LooseEquals(a, ToNumber(y))
	}
	if isPrimitive(a) != isPrimitive(b) {
		return LooseEquals(ToPrimitive(a), ToPrimitive(b))
	}
	return false
}

func isPrimitive(v Value) bool {
	switch v.(type) {
	case nil, undefined, bool, float64, string:
		return true
	}
	return false
}

func hasProperty(container, key Value) (Value, error) {
	k := ToString(key)
	switch c := container.(type) {
	case *Object:
		return c.Has(k), nil
	case []Value:
		if i, ok := arrayIndex(key); ok {
			return i < len(c), nil
		}
		return k == "length", nil
	case *Grouping:
		return k == "key" || k == "values", nil
	case *Constructor:
		return c.Statics != nil && c.Statics.Has(k), nil
	}
	return nil, typeErrorf("cannot use 'in' operator to search for '%s' in %s", k, ToString(container))
}

func instanceOf(v, ctor Value) (Value, error) {
	switch c := ctor.(type) {
	case *Constructor:
		return c.Instance != nil && c.Instance(v), nil
	case Callable:
		return false, nil
	}
	return nil, typeErrorf("right-hand side of 'instanceof' is not callable")
}
