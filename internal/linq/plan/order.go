package plan

import (
	"slices"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// directive is one sort key of an orderby clause.
type directive[T any] struct {
	key        func(T) (value.Value, error)
	descending bool
}

func ascending(a, b value.Value) int  { return value.Compare(a, b) }
func descending(a, b value.Value) int { return value.Compare(b, a) }

// order sorts items by ds, most significant first. Items are grouped by
// the first key, the groups are sorted, and each group is ordered by the
// remaining keys. Items with equal keys keep their arrival order.
func order[T any](items []T, ds []directive[T]) ([]T, error) {
	if len(ds) == 0 {
		return items, nil
	}
	groups, err := partition(items, ds[0].key)
	if err != nil {
		return nil, err
	}
	cmp := ascending
	if ds[0].descending {
		cmp = descending
	}
	slices.SortStableFunc(groups, func(a, b *group[T]) int { return cmp(a.key, b.key) })
	out := make([]T, 0, len(items))
	for _, g := range groups {
		sorted, err := order(g.members, ds[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, sorted...)
	}
	return out, nil
}
