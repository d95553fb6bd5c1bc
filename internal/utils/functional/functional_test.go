package functional_test

import (
	"strconv"
	"testing"

	"github.com/janhq/provider-sync/internal/utils/functional"
)

func TestMap(t *testing.T) {
	got := functional.Map([]int{1, 2, 3}, strconv.Itoa)
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("Map() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Map()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMap_Empty(t *testing.T) {
	got := functional.Map([]int{}, strconv.Itoa)
	if len(got) != 0 {
		t.Errorf("Map() on empty slice = %v, want empty", got)
	}
}

func TestFilter(t *testing.T) {
	got := functional.Filter([]int{1, 2, 3, 4, 5}, func(n int) bool { return n%2 == 0 })
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("Filter() = %v, want [2 4]", got)
	}
}

func TestAny(t *testing.T) {
	if !functional.Any([]int{1, 2, 3}, func(n int) bool { return n > 2 }) {
		t.Error("Any() = false, want true")
	}
	if functional.Any([]int{1, 2, 3}, func(n int) bool { return n > 10 }) {
		t.Error("Any() = true, want false")
	}
}
