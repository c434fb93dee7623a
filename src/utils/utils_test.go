package utils

import (
	"testing"

	"liftsim/src/types"
)

func TestForEachCallVisitsBothSides(t *testing.T) {
	left := []bool{true, false, false}
	right := []bool{false, false, true}
	var visited []string
	ForEachCall(left, right, func(floor int, side types.Side, active bool) {
		if active {
			visited = append(visited, side.String()+string(rune('0'+floor)))
		}
	})
	if len(visited) != 2 || visited[0] != "Left1" || visited[1] != "Right3" {
		t.Errorf("visited = %v, expected [Left1 Right3]", visited)
	}
	if n := CountCalls(left, right); n != 2 {
		t.Errorf("CountCalls() = %d, expected 2", n)
	}
}
