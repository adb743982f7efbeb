package units

import "testing"

// TestParseClock verifies parsing of the three supported clock formats
// and that malformed input defaults to 0.
func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"01:30:15", 5415},
		{"45:20", 2720},
		{"90", 90},
		{"", 0},
		{"abc", 0},
		{"1:xx", 0},
	}
	for _, tt := range tests {
		if got := ParseClock(tt.in); got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestFormatClock verifies formatting drops a zero hour component.
func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{5415, "01:30:15"},
		{2720, "45:20"},
		{59, "00:59"},
		{0, ""},
		{-5, ""},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestPaceFunctions verifies the pace triangle: pace, distance, and time
// are mutually consistent, and non-positive inputs return 0.
func TestPaceFunctions(t *testing.T) {
	pace := Pace(5, 1500) // 5 km in 25 min
	if pace != 300 {
		t.Fatalf("Pace(5, 1500) = %v, want 300", pace)
	}
	if got := PaceDistance(1500, pace); got != 5 {
		t.Errorf("PaceDistance(1500, %v) = %v, want 5", pace, got)
	}
	if got := PaceTime(5, pace); got != 1500 {
		t.Errorf("PaceTime(5, %v) = %v, want 1500", pace, got)
	}

	if Pace(0, 100) != 0 || PaceDistance(0, 10) != 0 || PaceTime(-1, 10) != 0 {
		t.Error("non-positive inputs should return 0")
	}
}
