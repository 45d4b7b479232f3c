package loyalty

import "testing"

func TestPoints(t *testing.T) {
	cases := []struct {
		durationMins int
		want         int
	}{
		{0, 0},
		{-5, 0},
		{9, 0},
		{10, 1},
		{19, 1},
		{30, 3},
		{45, 4},
		{90, 9},
	}
	for _, tc := range cases {
		if got := Points(tc.durationMins); got != tc.want {
			t.Fatalf("Points(%d) = %d, want %d", tc.durationMins, got, tc.want)
		}
	}
}
