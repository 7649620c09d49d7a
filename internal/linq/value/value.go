// Package value is the runtime value model of query expressions. Values
// follow JavaScript semantics: null and undefined are distinct, every
// number is a float64 and objects keep insertion order.
package value

import "reflect"

// Value is any of: nil (null), Undefined, bool, float64, string, []Value,
// *Object, *Grouping or a Callable.
type Value = any

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the value of missing properties and unset arguments.
var Undefined Value = undefined{}

// Nullish reports whether v is null or undefined.
func Nullish(v Value) bool {
	return v == nil || v == Undefined
}

// Type classifies a value, or a host value before conversion.
type Type int

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeFunction
)

// Classify reports the type of v, which may be a converted Value or any
// host Go value accepted by Of.
func Classify(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNull
	case undefined:
		return TypeUndefined
	case bool:
		return TypeBoolean
	case float64:
		return TypeNumber
	case string:
		return TypeString
	case []Value:
		return TypeArray
	case *Object, *Grouping:
		return TypeObject
	case Callable:
		return TypeFunction
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return TypeNull
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.String:
		return TypeString
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return TypeString
		}
		return TypeArray
	case reflect.Array:
		return TypeArray
	case reflect.Func:
		return TypeFunction
	}
	return TypeObject
}

// TypeOf returns the result of the typeof operator.
func TypeOf(v Value) string {
	switch Classify(v) {
	case TypeUndefined:
		return "undefined"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeFunction:
		return "function"
	}
	return "object"
}

// Object is a string-keyed map that remembers insertion order.
type Object struct {
	keys  []string
	props map[string]Value
}

// NewArray returns an empty array with room for n elements. Its backing
// store is never shared, so the array keeps an identity while empty.
func NewArray(n int) []Value { return make([]Value, 0, max(n, 1)) }

// arrayID identifies the backing store of an array. Arrays without one
// have no identity.
func arrayID(x []Value) (*Value, bool) {
	if cap(x) == 0 {
		return nil, false
	}
	return &x[:1][0], true
}

// SameArray reports whether x and y are the same array.
func SameArray(x, y []Value) bool {
	px, ok := arrayID(x)
	py, _ := arrayID(y)
	return ok && px == py && len(x) == len(y)
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{props: map[string]Value{}}
}

// Get returns the property k.
func (o *Object) Get(k string) (Value, bool) {
	v, ok := o.props[k]
	return v, ok
}

// Has reports whether o has property k.
func (o *Object) Has(k string) bool {
	_, ok := o.props[k]
	return ok
}

// Set assigns property k, appending it to the key order if new.
func (o *Object) Set(k string, v Value) {
	if _, ok := o.props[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.props[k] = v
}

// Delete removes property k and reports whether it existed.
func (o *Object) Delete(k string) bool {
	if _, ok := o.props[k]; !ok {
		return false
	}
	delete(o.props, k)
	for i, key := range o.keys {
		if key == k {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.keys) }

// Assign copies every property of src into o.
func (o *Object) Assign(src *Object) {
	for _, k := range src.keys {
		o.Set(k, src.props[k])
	}
}

// ObjectOf builds an object from alternating key, value arguments.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), Of(kv[i+1]))
	}
	return o
}

// Grouping is one group produced by a group clause: the key and the values
// of the grouped binding, in arrival order.
type Grouping struct {
	Key    Value
	Values []Value
}

// Callable is a function value.
type Callable interface {
	Call(this Value, args []Value) (Value, error)
}

// Func is a native function.
type Func struct {
	Name string
	Fn   func(this Value, args []Value) (Value, error)
}

// NewFunc returns a named native function.
func NewFunc(name string, fn func(this Value, args []Value) (Value, error)) *Func {
	return &Func{Name: name, Fn: fn}
}

// Call invokes the function.
func (f *Func) Call(this Value, args []Value) (Value, error) {
	return f.Fn(this, args)
}

// Arg returns args[i], or Undefined when absent.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
