package models

import "github.com/google/uuid"

type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

type DistanceUnit string

const (
	DistKm    DistanceUnit = "km"
	DistMi    DistanceUnit = "mi"
	DistM     DistanceUnit = "m"
	DistYd    DistanceUnit = "yd"
)

// Section identifies which exercise list of a program an index refers to.
// Mutations never address across sections.
type Section string

const (
	SectionWarmup   Section = "warmup"
	SectionMain     Section = "main"
	SectionCooldown Section = "cooldown"
)

type GoalType string

const (
	GoalTime     GoalType = "time"
	GoalDistance GoalType = "distance"
)

// Feeling is the client's post-workout self-assessment. It defaults to
// "none" at finalization and may be updated afterwards.
type Feeling string

const (
	FeelingNone      Feeling = "none"
	FeelingDifficult Feeling = "difficult"
	FeelingOkay      Feeling = "okay"
	FeelingGreat     Feeling = "great"
)

// Exercise is one prescribed strength exercise within a program section.
// Reps is a display string like "8-12"; Rest is a duration string like "90s".
type Exercise struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Sets             int    `json:"sets"`
	Reps             string `json:"reps"`
	Rest             string `json:"rest"`
	VideoURL         string `json:"videoUrl,omitempty"`
	Cues             string `json:"cues,omitempty"`
	PrescribedWeight string `json:"prescribedWeight,omitempty"`
	PrescribedRPE    string `json:"prescribedRpe,omitempty"`
}

type CardioExercise struct {
	ID           string       `json:"id"`
	Activity     string       `json:"activity"`
	GoalType     GoalType     `json:"goalType"`
	GoalValue    float64      `json:"goalValue"`
	DistanceUnit DistanceUnit `json:"distanceUnit,omitempty"`
	Intensity    string       `json:"intensity,omitempty"`
}

// Program is a trainer- or self-authored workout template. It is read-only
// input to the session tracker.
type Program struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	ProgramNotes string           `json:"programNotes,omitempty"`
	Warmup       []Exercise       `json:"warmup,omitempty"`
	Exercises    []Exercise       `json:"exercises"`
	Cardio       []CardioExercise `json:"cardio,omitempty"`
	Cooldown     []Exercise       `json:"cooldown,omitempty"`
	OwnerID      string           `json:"ownerId,omitempty"`
}

// SectionExercises returns the exercise list for a section, nil for an
// unknown section.
func (p *Program) SectionExercises(s Section) []Exercise {
	switch s {
	case SectionWarmup:
		return p.Warmup
	case SectionMain:
		return p.Exercises
	case SectionCooldown:
		return p.Cooldown
	}
	return nil
}

type Client struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AssignedProgramIDs []string `json:"assignedProgramIds"`
	Notes              string   `json:"notes,omitempty"`
	Status             string   `json:"status"`
}

// LoggedSet is one logged set of an exercise. Weight is always stored in
// kilograms regardless of the display unit in effect when it was entered.
type LoggedSet struct {
	SetNumber int     `json:"setNumber"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	RPE       float64 `json:"rpe"`
	Completed bool    `json:"completed"`
}

type LoggedExercise struct {
	ExerciseID   string      `json:"exerciseId"`
	ExerciseName string      `json:"exerciseName"`
	Sets         []LoggedSet `json:"sets"`
	Notes        string      `json:"notes"`
}

type LoggedCardio struct {
	CardioID       string       `json:"cardioId"`
	Activity       string       `json:"activity"`
	GoalType       GoalType     `json:"goalType"`
	GoalValue      float64      `json:"goalValue"`
	ActualTime     float64      `json:"actualTime,omitempty"`
	ActualDistance float64      `json:"actualDistance,omitempty"`
	DistanceUnit   DistanceUnit `json:"distanceUnit,omitempty"`
}

// InProgressWorkout is the durable, resumable snapshot of a partially
// completed session, keyed uniquely by (ClientID, ProgramID).
type InProgressWorkout struct {
	ClientID        string           `json:"clientId"`
	ProgramID       string           `json:"programId"`
	LoggedExercises []LoggedExercise `json:"loggedExercises"`
	LoggedCardio    []LoggedCardio   `json:"loggedCardio,omitempty"`
	LastUpdated     string           `json:"lastUpdated"`
}

// LoggedWorkout is the immutable historical record produced when a session
// finishes. Only Feeling may change after creation.
type LoggedWorkout struct {
	ID              uuid.UUID        `json:"id"`
	ProgramID       string           `json:"programId"`
	ProgramName     string           `json:"programName"`
	ClientID        string           `json:"clientId"`
	Date            string           `json:"date"`
	LoggedExercises []LoggedExercise `json:"loggedExercises"`
	LoggedCardio    []LoggedCardio   `json:"loggedCardio,omitempty"`
	DurationSeconds int              `json:"durationSeconds"`
	TotalVolume     float64          `json:"totalVolume"`
	Feeling         Feeling          `json:"feeling"`
	PRsAchieved     []string         `json:"prsAchieved"`
}
