package session

import "github.com/lostmarbl3/f-ai/internal/models"

// Mutation is the closed set of edits a client can make to an in-progress
// session. Each variant addresses one exercise or set by section and
// index; there is no cross-section addressing and no dynamic field names.
type Mutation interface {
	isMutation()
}

// SetWeight records the weight of one set. Value is the raw input string
// in the given display unit; it is converted to kilograms before storage.
type SetWeight struct {
	Section  models.Section
	Exercise int
	Set      int
	Value    string
	Unit     models.WeightUnit
}

// SetReps records the rep count of one set, rounded to an integer.
type SetReps struct {
	Section  models.Section
	Exercise int
	Set      int
	Value    string
}

// SetRPE records the rate of perceived exertion of one set.
type SetRPE struct {
	Section  models.Section
	Exercise int
	Set      int
	Value    string
}

// SetNote overwrites the free-text note of one exercise.
type SetNote struct {
	Section  models.Section
	Exercise int
	Text     string
}

// ToggleComplete flips a set's completed flag. Toggling to complete
// starts the rest timer from the exercise's configured rest duration;
// toggling back never cancels a running timer.
type ToggleComplete struct {
	Section  models.Section
	Exercise int
	Set      int
}

// SetCardioTime records the actual time (minutes) of a cardio activity.
type SetCardioTime struct {
	Cardio int
	Value  string
}

// SetCardioDistance records the actual distance of a cardio activity.
type SetCardioDistance struct {
	Cardio int
	Value  string
}

// SetCardioUnit records the distance unit of a cardio activity.
type SetCardioUnit struct {
	Cardio int
	Unit   models.DistanceUnit
}

func (SetWeight) isMutation()         {}
func (SetReps) isMutation()           {}
func (SetRPE) isMutation()            {}
func (SetNote) isMutation()           {}
func (ToggleComplete) isMutation()    {}
func (SetCardioTime) isMutation()     {}
func (SetCardioDistance) isMutation() {}
func (SetCardioUnit) isMutation()     {}

// Result reports whether a mutation was applied. Mutations addressing a
// missing section, exercise, or set index are ignored rather than
// erroring, but the drop is observable here instead of vanishing.
type Result struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

func applied() Result {
	return Result{Applied: true}
}

func dropped(reason string) Result {
	return Result{Applied: false, Reason: reason}
}
