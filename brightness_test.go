package sunglide_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/thurmanmarka/sunglide"
)

func TestBrightness(t *testing.T) {
	params := sunglide.BrightnessParams{Night: 50, Day: 90, Transition: 2 * time.Hour, Sensitivity: 1}
	rise := utc(2018, 11, 1, 8, 0)
	set := utc(2018, 11, 1, 17, 0)

	tests := []struct {
		name        string
		at          time.Time
		visible     bool
		rise, set   time.Time
		wantPercent int
		wantExpiry  time.Duration // zero means only check it is positive
	}{
		{"sunrise", rise, true, rise, set, 70, time.Second},
		{"mid transition from sunrise", utc(2018, 11, 1, 8, 30), true, rise, set, 84, 0},
		{"end of transition from sunrise", utc(2018, 11, 1, 9, 0), true, rise, set, 90, 7 * time.Hour},
		{"begin transition to sunset", utc(2018, 11, 1, 16, 0), true, rise, set, 90, 0},
		{"mid transition to sunset", utc(2018, 11, 1, 16, 30), true, rise, set, 84, 0},
		{"sunset", set, true, rise, set, 70, time.Second},
		{"night", utc(2018, 11, 1, 22, 0), false, rise.AddDate(0, 0, 1), set, 50, 9 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sunglide.Visibility{Time: tt.at, Rise: tt.rise, Set: tt.set, Visible: tt.visible}
			got, err := sunglide.Brightness(params, v)
			if err != nil {
				t.Fatalf("Brightness() error = %v", err)
			}
			if got.Percent != tt.wantPercent {
				t.Errorf("Percent = %d (%.3f), want %d", got.Percent, got.Level, tt.wantPercent)
			}
			if got.Expiry <= 0 {
				t.Errorf("Expiry = %v, want > 0", got.Expiry)
			}
			if tt.wantExpiry != 0 && got.Expiry != tt.wantExpiry {
				t.Errorf("Expiry = %v, want %v", got.Expiry, tt.wantExpiry)
			}
			if got.Expiry%time.Second != 0 {
				t.Errorf("Expiry = %v is not whole seconds", got.Expiry)
			}
		})
	}
}

// Following the expiries through a whole day must visit every level once
// and never stall.
func TestBrightnessCycle(t *testing.T) {
	params := sunglide.BrightnessParams{Night: 50, Day: 90, Transition: 30 * time.Minute, Sensitivity: 1}
	start := utc(2018, 11, 18, 12, 0)
	end := start.Add(24 * time.Hour)

	prev := -1.0
	steps := 0
	for at := start; !at.After(end); steps++ {
		v, err := sunglide.Around(bristol, at)
		if err != nil {
			t.Fatalf("Around(%v) error = %v", at, err)
		}
		b, err := sunglide.Brightness(params, v)
		if err != nil {
			t.Fatalf("Brightness(%v) error = %v", at, err)
		}
		if b.Expiry <= 0 {
			t.Fatalf("Expiry %v at %v", b.Expiry, at)
		}
		if b.Level < 50 || b.Level > 90 {
			t.Fatalf("Level %.3f out of range at %v", b.Level, at)
		}
		if prev >= 0 && math.Abs(b.Level-prev) > 1.5 {
			t.Errorf("Level jumped from %.3f to %.3f at %v", prev, b.Level, at)
		}
		prev = b.Level
		at = at.Add(b.Expiry)
	}
	// Two ramps of 40 one-percent steps plus the plateaus.
	if steps < 70 || steps > 200 {
		t.Errorf("cycle took %d steps", steps)
	}
}

func TestBrightnessValidate(t *testing.T) {
	tests := []struct {
		name   string
		params sunglide.BrightnessParams
		ok     bool
	}{
		{"valid", sunglide.BrightnessParams{Night: 10, Day: 100, Transition: time.Hour}, true},
		{"equal levels", sunglide.BrightnessParams{Night: 60, Day: 60, Transition: time.Hour}, true},
		{"night above day", sunglide.BrightnessParams{Night: 80, Day: 60, Transition: time.Hour}, false},
		{"day above 100", sunglide.BrightnessParams{Night: 0, Day: 101, Transition: time.Hour}, false},
		{"negative night", sunglide.BrightnessParams{Night: -1, Day: 50, Transition: time.Hour}, false},
		{"no transition", sunglide.BrightnessParams{Night: 10, Day: 90}, false},
		{"negative sensitivity", sunglide.BrightnessParams{Night: 10, Day: 90, Transition: time.Hour, Sensitivity: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, sunglide.ErrInvalidBrightness) {
				t.Errorf("Validate() error = %v, want ErrInvalidBrightness", err)
			}
		})
	}

	if _, err := sunglide.Brightness(sunglide.BrightnessParams{Night: 80, Day: 60}, sunglide.Visibility{}); err == nil {
		t.Error("Brightness() accepted invalid parameters")
	}
}

func TestBrightnessFlat(t *testing.T) {
	params := sunglide.BrightnessParams{Night: 60, Day: 60, Transition: time.Hour}
	rise := utc(2018, 11, 1, 8, 0)
	set := utc(2018, 11, 1, 17, 0)
	v := sunglide.Visibility{Time: rise, Rise: rise, Set: set, Visible: true}
	b, err := sunglide.Brightness(params, v)
	if err != nil {
		t.Fatal(err)
	}
	if b.Percent != 60 || b.Expiry != 30*time.Minute {
		t.Errorf("Brightness() = %d%% for %v, want 60%% for 30m", b.Percent, b.Expiry)
	}
}
