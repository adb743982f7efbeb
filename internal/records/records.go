// Package records derives read-only views from the workout history:
// personal records ranked by estimated one-rep max, per-exercise progress
// points, and weekly training-volume buckets.
package records

import (
	"sort"
	"time"

	"github.com/lostmarbl3/f-ai/internal/models"
)

// PersonalRecord is one qualifying set from the history. Weight is in
// kilograms.
type PersonalRecord struct {
	ExerciseName string  `json:"exerciseName"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	EstimatedMax float64 `json:"estimatedMax"`
	Date         string  `json:"date"`
	WorkoutID    string  `json:"workoutId"`
}

// ProgressPoint is the heaviest completed set of an exercise within one
// workout, used for progress charts.
type ProgressPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// VolumeBucket is the summed training volume for one ISO week.
type VolumeBucket struct {
	WeekStart string  `json:"weekStart"`
	Volume    float64 `json:"volume"`
}

// EstimatedMax returns the Epley one-rep max estimate for a set.
// A single rep is the lift itself; a zero weight or zero reps estimates
// nothing.
func EstimatedMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

func qualifies(set models.LoggedSet) bool {
	return set.Completed && set.Weight > 0 && set.Reps > 0
}

// PersonalRecords returns the top records per exercise across the given
// history, ranked by estimated one-rep max. perExercise caps how many
// records each exercise contributes; values below 1 default to 3.
func PersonalRecords(history []models.LoggedWorkout, perExercise int) []PersonalRecord {
	if perExercise < 1 {
		perExercise = 3
	}

	byExercise := make(map[string][]PersonalRecord)
	for _, w := range history {
		for _, ex := range w.LoggedExercises {
			for _, set := range ex.Sets {
				if !qualifies(set) {
					continue
				}
				byExercise[ex.ExerciseName] = append(byExercise[ex.ExerciseName], PersonalRecord{
					ExerciseName: ex.ExerciseName,
					Weight:       set.Weight,
					Reps:         set.Reps,
					EstimatedMax: EstimatedMax(set.Weight, set.Reps),
					Date:         w.Date,
					WorkoutID:    w.ID.String(),
				})
			}
		}
	}

	names := make([]string, 0, len(byExercise))
	for name := range byExercise {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []PersonalRecord
	for _, name := range names {
		recs := byExercise[name]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].EstimatedMax > recs[j].EstimatedMax
		})
		if len(recs) > perExercise {
			recs = recs[:perExercise]
		}
		result = append(result, recs...)
	}
	return result
}

// Progress returns one point per workout containing the exercise: the
// heaviest completed set that day, ordered oldest first.
func Progress(history []models.LoggedWorkout, exerciseName string) []ProgressPoint {
	var points []ProgressPoint
	for _, w := range history {
		best := 0.0
		found := false
		for _, ex := range w.LoggedExercises {
			if ex.ExerciseName != exerciseName {
				continue
			}
			for _, set := range ex.Sets {
				if qualifies(set) && set.Weight > best {
					best = set.Weight
					found = true
				}
			}
		}
		if found {
			points = append(points, ProgressPoint{Date: w.Date, Weight: best})
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// weekStart returns the Monday of the week containing t, at midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeeklyVolume buckets each workout's total volume by the week it
// happened in, ordered oldest first. Workouts with unparseable dates are
// skipped.
func WeeklyVolume(history []models.LoggedWorkout) []VolumeBucket {
	byWeek := make(map[string]float64)
	for _, w := range history {
		t, err := time.Parse(time.RFC3339, w.Date)
		if err != nil {
			continue
		}
		key := weekStart(t).Format("2006-01-02")
		byWeek[key] += w.TotalVolume
	}

	keys := make([]string, 0, len(byWeek))
	for k := range byWeek {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]VolumeBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, VolumeBucket{WeekStart: k, Volume: byWeek[k]})
	}
	return buckets
}
