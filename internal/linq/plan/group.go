package plan

import (
	"math"
	"reflect"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// group is one partition: a key and the members that produced it, in
// arrival order.
type group[T any] struct {
	key     value.Value
	members []T
}

type nanKey struct{}

// sliceKey identifies an array by its backing storage.
type sliceKey struct {
	first *value.Value
	n     int
}

// hashKey maps v to a comparable Go value such that two keys are equal
// exactly when the values are SameValueZero. Arrays without storage and
// values of incomparable Go types report false.
func hashKey(v value.Value) (any, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return nanKey{}, true
		}
		if x == 0 {
			return 0.0, true
		}
		return x, true
	case []value.Value:
		if cap(x) == 0 {
			return nil, false
		}
		return sliceKey{first: &x[:1][0], n: len(x)}, true
	case nil:
		return nil, true
	}
	if !reflect.TypeOf(v).Comparable() {
		return nil, false
	}
	return v, true
}

// partition splits items by key. Keys appear in first-seen order and every
// group keeps the arrival order of its members.
func partition[T any](items []T, key func(T) (value.Value, error)) ([]*group[T], error) {
	var (
		groups   []*group[T]
		index    = map[any]*group[T]{}
		unhashed []*group[T]
	)
	for _, item := range items {
		k, err := key(item)
		if err != nil {
			return nil, err
		}
		var g *group[T]
		h, ok := hashKey(k)
		if ok {
			g = index[h]
		} else {
			for _, u := range unhashed {
				if value.SameValueZero(u.key, k) {
					g = u
					break
				}
			}
		}
		if g == nil {
			g = &group[T]{key: k}
			groups = append(groups, g)
			if ok {
				index[h] = g
			} else {
				unhashed = append(unhashed, g)
			}
		}
		g.members = append(g.members, item)
	}
	return groups, nil
}
