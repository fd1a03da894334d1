package solver

import (
	"errors"
	"testing"
	"time"
)

// square returns a visibility function that is true in [on, off) of every
// period, starting at 0.
func square(period, on, off int64) VisibilityFunc {
	return func(t int64) (bool, error) {
		p := t % period
		if p < 0 {
			p += period
		}
		return p >= on && p < off, nil
	}
}

// startsTransition reports whether t is the first second of a new state.
func startsTransition(f VisibilityFunc, t int64) bool {
	prev, _ := f(t - 1)
	cur, _ := f(t)
	return prev != cur
}

func TestSearchTransition(t *testing.T) {
	day := int64(86400)
	f := square(day, 25000, 60000)

	tests := []struct {
		name    string
		start   int64
		step    int64
		visible bool
		want    int64
	}{
		{"forward to set", 30000, 4 * 3600, true, 60000},
		{"backward to rise", 30000, -4 * 3600, true, 25000},
		{"forward to rise", 70000, 3600, false, day + 25000},
		{"backward to set", 70000, -3600, false, 60000},
		{"fine step", 24000, 600, false, 25000},
		{"one second step", 24990, 1, false, 25000},
		{"one second step backward", 25010, -1, true, 25000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SearchTransition(f, tt.start, tt.step, tt.visible, 0)
			if err != nil {
				t.Fatalf("SearchTransition() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SearchTransition() = %d, want %d", got, tt.want)
			}
			if !startsTransition(f, got) {
				t.Errorf("SearchTransition() = %d does not start a new state", got)
			}
		})
	}
}

// Every edge must be found exactly whatever the step and direction.
func TestSearchTransitionEdges(t *testing.T) {
	for edge := int64(1000); edge < 1400; edge++ {
		f := func(x int64) (bool, error) { return x >= edge, nil }
		for _, step := range []int64{3600, 600, 7, 14400} {
			got, err := SearchTransition(f, 0, step, false, 0)
			if err != nil || got != edge {
				t.Fatalf("edge %d step %d forward: got %d, %v", edge, step, got, err)
			}
			got, err = SearchTransition(f, 5000, -step, true, 0)
			if err != nil || got != edge {
				t.Fatalf("edge %d step %d backward: got %d, %v", edge, step, got, err)
			}
		}
	}
}

func TestSearchTransitionNoRepeatedEvaluation(t *testing.T) {
	f := square(86400, 25000, 60000)
	last, calls := int64(-1), 0
	counting := func(x int64) (bool, error) {
		if calls > 0 && x == last {
			t.Errorf("evaluated %d twice in a row", x)
		}
		last = x
		calls++
		return f(x)
	}
	got, err := SearchTransition(counting, 30000, 4*3600, true, 0)
	if err != nil || got != 60000 {
		t.Fatalf("SearchTransition() = %d, %v; want 60000", got, err)
	}
}

func TestSearchTransitionExhausted(t *testing.T) {
	always := func(int64) (bool, error) { return true, nil }
	_, err := SearchTransition(always, 0, 3600, true, 0)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("SearchTransition() error = %v, want ErrExhausted", err)
	}

	calls := 0
	counting := func(int64) (bool, error) {
		calls++
		return false, nil
	}
	_, err = SearchTransition(counting, 0, 60, false, 10)
	if !errors.Is(err, ErrExhausted) || calls != 10 {
		t.Errorf("SearchTransition() = %v after %d calls, want ErrExhausted after 10", err, calls)
	}
}

func TestSearchTransitionZeroStep(t *testing.T) {
	f := square(86400, 25000, 60000)
	if _, err := SearchTransition(f, 0, 0, false, 0); err == nil {
		t.Error("SearchTransition() accepted a zero step")
	}
}

func TestSearchTransitionOracleError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(int64) (bool, error) { return false, boom }
	if _, err := SearchTransition(failing, 0, 60, false, 0); !errors.Is(err, boom) {
		t.Errorf("SearchTransition() error = %v, want %v", err, boom)
	}
}

func TestDefaultStep(t *testing.T) {
	tests := []struct {
		lat  float64
		want time.Duration
	}{
		{0, 4 * time.Hour},
		{51.45, 4 * time.Hour},
		{-59.9, 4 * time.Hour},
		{60, time.Hour},
		{-63.9, time.Hour},
		{64, 10 * time.Minute},
		{-89, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := DefaultStep(tt.lat); got != tt.want {
			t.Errorf("DefaultStep(%v) = %v, want %v", tt.lat, got, tt.want)
		}
	}
}

func TestMaxEvaluations(t *testing.T) {
	if got := MaxEvaluations(-3600); got != MaxEvaluations(3600) {
		t.Errorf("MaxEvaluations is not symmetric: %d vs %d", got, MaxEvaluations(3600))
	}
	if got := MaxEvaluations(600); got < 366*24*6 {
		t.Errorf("MaxEvaluations(600) = %d cannot cover a year", got)
	}
}
