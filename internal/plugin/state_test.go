package plugin

import "testing"

func TestCanTransitionMonotonic(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{Discovered, Validated, true},
		{Validated, Loaded, true},
		{Stopped, Started, false},
		{Stopped, Unloaded, true},
		{Discovered, Started, false},
		{Started, Failed, true},
		{Unloaded, Failed, true},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
