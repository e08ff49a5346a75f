package unit

import (
	"errors"
	"math"
	"testing"
)

func TestNewRejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		units []Unit
	}{
		{"no units", nil},
		{"no base unit", []Unit{
			{Name: "thousand", Magnitude: 1e3},
			{Name: "million", Magnitude: 1e6},
		}},
		{"zero magnitude", []Unit{
			{Name: "zero", Magnitude: 0},
			{Name: "one", Magnitude: 1},
		}},
		{"negative magnitude", []Unit{
			{Name: "neg", Magnitude: -1e3},
			{Name: "one", Magnitude: 1},
		}},
		{"duplicate magnitude", []Unit{
			{Name: "one", Magnitude: 1},
			{Name: "k", Magnitude: 1e3},
			{Name: "kilo", Magnitude: 1e3},
		}},
		{"duplicate name", []Unit{
			{Name: "one", Magnitude: 1},
			{Name: "one", Magnitude: 1e3},
		}},
		{"empty unit name", []Unit{
			{Name: "", Magnitude: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("test", tt.units...); err == nil {
				t.Errorf("New(%q) = nil error, want error", tt.name)
			}
		})
	}
}

func TestBuiltinInvariants(t *testing.T) {
	for _, d := range []Domain{Count, Duration, Bytes} {
		t.Run(d.Name(), func(t *testing.T) {
			base := d.Base()
			if base.Magnitude != 1 {
				t.Errorf("Base().Magnitude = %v, want 1", base.Magnitude)
			}
			baseCount := 0
			prev := 0.0
			for _, u := range d.Units() {
				if u.Magnitude <= 0 {
					t.Errorf("unit %q has magnitude %v, want > 0", u.Name, u.Magnitude)
				}
				if u.Magnitude <= prev {
					t.Errorf("unit %q out of ascending order", u.Name)
				}
				prev = u.Magnitude
				if u.Magnitude == 1 {
					baseCount++
					if u.Name != base.Name {
						t.Errorf("magnitude-1 unit %q != Base() %q", u.Name, base.Name)
					}
				}
			}
			if baseCount != 1 {
				t.Errorf("found %d units of magnitude 1, want exactly 1", baseCount)
			}
		})
	}
}

func TestScaleBestFit(t *testing.T) {
	tests := []struct {
		d         Domain
		raw       float64
		wantValue float64
		wantUnit  string
	}{
		{Count, 0, 0, "one"},
		{Count, 0.5, 0.5, "one"},
		{Count, 1, 1, "one"},
		{Count, 999, 999, "one"},
		{Count, 1000, 1, "thousand"}, // exact threshold takes the larger unit
		{Count, 1001, 1.001, "thousand"},
		{Count, 1000001, 1.000001, "million"},
		{Count, 2.5e9, 2.5, "billion"},
		{Count, 7e12, 7, "trillion"},
		{Duration, 1, 1, "nanosecond"},
		{Duration, 1500, 1.5, "microsecond"},
		{Duration, 3e9, 3, "second"},
		{Duration, 9e10, 1.5, "minute"},
		{Duration, 7.2e12, 2, "hour"},
		{Bytes, 512, 512, "byte"},
		{Bytes, 1024, 1, "kilobyte"},
		{Bytes, 3 << 20, 3, "megabyte"},
	}
	for _, tt := range tests {
		v, u := tt.d.Scale(tt.raw)
		if u.Name != tt.wantUnit || math.Abs(v-tt.wantValue) > 1e-9 {
			t.Errorf("%s.Scale(%v) = (%v, %q), want (%v, %q)",
				tt.d.Name(), tt.raw, v, u.Name, tt.wantValue, tt.wantUnit)
		}
	}
}

func TestScaleMinimality(t *testing.T) {
	// the chosen unit is the largest one still scaling to >= 1, so no
	// smaller non-base unit may be skipped
	for _, raw := range []float64{0, 0.1, 1, 42, 999, 1000, 999999, 1e6, 1e9, 5e11} {
		_, picked := Count.Scale(raw)
		if picked.Name != Count.Base().Name && raw/picked.Magnitude < 1 {
			t.Errorf("Scale(%v) picked %q with scaled value < 1", raw, picked.Name)
		}
		for _, u := range Count.Units() {
			if u.Magnitude > picked.Magnitude && raw/u.Magnitude >= 1 {
				t.Errorf("Scale(%v) picked %q, but larger unit %q also fits", raw, picked.Name, u.Name)
			}
		}
	}
}

func TestScaleNegativeFallsThroughToBase(t *testing.T) {
	v, u := Count.Scale(-5)
	if u.Name != "one" || v != -5 {
		t.Errorf("Scale(-5) = (%v, %q), want (-5, %q)", v, u.Name, "one")
	}
}

func TestScaleToRoundTrip(t *testing.T) {
	for _, d := range []Domain{Count, Duration, Bytes} {
		for _, raw := range []float64{0, 1, 3.14, 999, 1e3, 123456789} {
			for _, u := range d.Units() {
				v, err := d.ScaleTo(raw, u.Name)
				if err != nil {
					t.Fatalf("%s.ScaleTo(%v, %q): %v", d.Name(), raw, u.Name, err)
				}
				if got := v * u.Magnitude; math.Abs(got-raw) > 1e-9*math.Max(1, raw) {
					t.Errorf("%s: %v scaled to %q and back = %v", d.Name(), raw, u.Name, got)
				}
			}
		}
	}
}

func TestUnknownUnit(t *testing.T) {
	if _, err := Count.ScaleTo(1, "parsec"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("ScaleTo unknown unit: err = %v, want ErrUnknownUnit", err)
	}
	if _, err := Count.Magnitude("parsec"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("Magnitude unknown unit: err = %v, want ErrUnknownUnit", err)
	}
}

func TestSet(t *testing.T) {
	s := Default()
	for _, name := range []string{"count", "duration", "bytes"} {
		if _, ok := s.Lookup(name); !ok {
			t.Errorf("Default() missing domain %q", name)
		}
	}
	if _, ok := s.Lookup("nope"); ok {
		t.Error("Lookup(nope) = ok, want miss")
	}
	if err := s.Add(Count); err == nil {
		t.Error("Add(duplicate) = nil error, want error")
	}
	want := []string{"bytes", "count", "duration"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
