package feed

import (
	"reflect"
	"sort"
)

// Keyed is a record with a stable identity.
type Keyed interface {
	EntityID() string
}

// Equal reports whether a and b hold the same records regardless of order.
//
// Both sets are sorted by key and compared element by element with value
// equality, so reordering by the store never registers as a change.
func Equal[T Keyed](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := sortedByKey(a), sortedByKey(b)
	for i := range sa {
		if !reflect.DeepEqual(sa[i], sb[i]) {
			return false
		}
	}
	return true
}

func sortedByKey[T Keyed](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntityID() < out[j].EntityID()
	})
	return out
}

// Dedup remembers the last delivered set of one subscription.
//
// Each subscription owns its own Dedup; it is not safe for concurrent use.
type Dedup[T Keyed] struct {
	last      []T
	delivered bool
}

// Offer reports whether next differs from the last delivered set. When it
// does, next becomes the new last delivered set. The first offer always
// reports true, even for an empty set.
func (d *Dedup[T]) Offer(next []T) bool {
	if d.delivered && Equal(d.last, next) {
		return false
	}
	d.last = append(make([]T, 0, len(next)), next...)
	d.delivered = true
	return true
}

// Last returns the last delivered set and whether anything was delivered yet.
func (d *Dedup[T]) Last() ([]T, bool) {
	return d.last, d.delivered
}
