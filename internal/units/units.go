// Package units holds the pure unit conversions used at the UI boundary.
// All persisted weights are kilograms; conversion to and from the display
// unit happens only here.
package units

import (
	"math"

	"github.com/lostmarbl3/f-ai/internal/models"
)

// KgToLbsFactor is the fixed conversion factor: 1 kg = 2.20462 lbs.
const KgToLbsFactor = 2.20462

// LbsToKg converts pounds to kilograms. Non-finite or zero input returns 0.
func LbsToKg(lbs float64) float64 {
	if !isUsable(lbs) {
		return 0
	}
	return lbs / KgToLbsFactor
}

// KgToLbs converts kilograms to pounds. Non-finite or zero input returns 0.
func KgToLbs(kg float64) float64 {
	if !isUsable(kg) {
		return 0
	}
	return kg * KgToLbsFactor
}

func isUsable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

var metersIn = map[models.DistanceUnit]float64{
	models.DistKm: 1000,
	models.DistMi: 1609.34,
	models.DistM:  1,
	models.DistYd: 0.9144,
}

// ConvertDistance converts a distance between units via meters as the
// common intermediate. Identical units short-circuit; unknown units
// return 0.
func ConvertDistance(value float64, from, to models.DistanceUnit) float64 {
	if from == to {
		return value
	}
	fromM, ok := metersIn[from]
	if !ok {
		return 0
	}
	toM, ok := metersIn[to]
	if !ok {
		return 0
	}
	return value * fromM / toM
}
