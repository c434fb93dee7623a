package utils

import (
	"liftsim/src/types"
)

// ForEachCall is a helper function that reduces indentation when visiting every call flag.
// Floors are reported 1-based.
func ForEachCall(left, right []bool, action func(floor int, side types.Side, active bool)) {
	for i := range left {
		action(i+1, types.Left, left[i])
	}
	for i := range right {
		action(i+1, types.Right, right[i])
	}
}

// CountCalls returns the number of active call flags.
func CountCalls(left, right []bool) (count int) {
	ForEachCall(left, right, func(_ int, _ types.Side, active bool) {
		if active {
			count++
		}
	})
	return count
}
