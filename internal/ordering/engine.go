// Package ordering computes sparse numeric sort keys for drag-reorder
// operations within one board column. Keys are deliberately non-contiguous
// so that inserting between two neighbors never rewrites other rows.
package ordering

import (
	"math"
	"time"
)

// Gap is the spacing between a boundary insertion and the current
// head/tail key. Large enough that many midpoint insertions fit between
// two adjacent keys before they collide.
const Gap = 2000

// Between returns the sort key for a task dropped between two neighbors.
// A nil argument means the corresponding side is the column boundary.
// A neighbor that exists but has never been ordered carries key 0: callers
// pass the resolved key, not the raw nullable column.
func Between(left, right *float64) float64 {
	switch {
	case left == nil && right == nil:
		return 0
	case left == nil:
		return *right - Gap
	case right == nil:
		return *left + Gap
	default:
		return math.Round((*left + *right) / 2)
	}
}

// Compare orders two tasks within a column: keyed tasks first by ascending
// key, unkeyed tasks after all keyed ones by ascending creation time. The
// creation-time tiebreak also breaks equal keys, so the order is total and
// deterministic before any manual reordering has occurred.
func Compare(aKey *float64, aCreatedAt time.Time, bKey *float64, bCreatedAt time.Time) int {
	switch {
	case aKey != nil && bKey == nil:
		return -1
	case aKey == nil && bKey != nil:
		return 1
	case aKey != nil && bKey != nil && *aKey != *bKey:
		if *aKey < *bKey {
			return -1
		}
		return 1
	}
	return aCreatedAt.Compare(bCreatedAt)
}
