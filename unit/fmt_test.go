package unit

import "testing"

func TestFmtCount(t *testing.T) {
	tests := []struct {
		count uint32
		want  string
	}{
		{0, "0"},
		{42, "42"},
		{999, "999"},
		{1000, "1.0K"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
		{3000000000, "3.0G"},
	}
	for _, tt := range tests {
		if got := FmtCount(tt.count); got != tt.want {
			t.Errorf("FmtCount(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestFmtFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{5 << 20, "5.0MB"},
		{3 << 30, "3.0GB"},
	}
	for _, tt := range tests {
		if got := FmtFileSize(tt.size); got != tt.want {
			t.Errorf("FmtFileSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ns   float64
		want string
	}{
		{0, "0ns"},
		{512, "512ns"},
		{1500, "1.5µs"},
		{2.5e6, "2.5ms"},
		{3e9, "3.0s"},
	}
	for _, tt := range tests {
		if got := Format(Duration, tt.ns); got != tt.want {
			t.Errorf("Format(Duration, %v) = %q, want %q", tt.ns, got, tt.want)
		}
	}
}
