package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseClock parses "HH:MM:SS", "MM:SS", or "SS" into total seconds.
// Empty or malformed input returns 0.
func ParseClock(s string) int {
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FormatClock renders seconds as "HH:MM:SS", dropping the hour part when
// zero. Non-positive input returns the empty string.
func FormatClock(totalSeconds int) string {
	if totalSeconds <= 0 {
		return ""
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Pace returns seconds per distance unit. Returns 0 unless both inputs
// are positive.
func Pace(distance float64, timeSeconds int) float64 {
	if distance <= 0 || timeSeconds <= 0 {
		return 0
	}
	return float64(timeSeconds) / distance
}

// PaceDistance returns the distance covered in timeSeconds at paceSeconds
// per unit.
func PaceDistance(timeSeconds int, paceSeconds float64) float64 {
	if timeSeconds <= 0 || paceSeconds <= 0 {
		return 0
	}
	return float64(timeSeconds) / paceSeconds
}

// PaceTime returns the seconds needed to cover distance at paceSeconds
// per unit.
func PaceTime(distance, paceSeconds float64) int {
	if distance <= 0 || paceSeconds <= 0 {
		return 0
	}
	return int(math.Round(distance * paceSeconds))
}
