package practice

import "testing"

func TestNextDifficulty(t *testing.T) {
	tests := []struct {
		current int
		correct bool
		want    int
	}{
		{3, true, 2},
		{3, false, 4},
		{1, true, 1},
		{5, false, 5},
		{2, true, 1},
		{4, false, 5},
		{0, true, 1},
		{9, false, 5},
	}

	for _, tt := range tests {
		if got := NextDifficulty(tt.current, tt.correct); got != tt.want {
			t.Errorf("NextDifficulty(%d, %v) = %d, want %d", tt.current, tt.correct, got, tt.want)
		}
	}
}
