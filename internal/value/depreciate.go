package value

// Assumed production lead: a stockpile item was built about half its useful
// life before the send year, capped so very long-lived systems are not
// written off entirely.
const maxAssumedAgeYears = 12

// Depreciate applies the stockpile discount: straight-line decay of the
// value over the item's useful life, floored at zero residual.
//
// Invariants: the result never exceeds the input value; a zero life class
// (munitions) always retains full value; an unknown send year retains full
// value. Callers gate on the stockpile flag; new production is never
// depreciated.
func Depreciate(v float64, lifeYears int, sendYear int) (float64, float64) {
	if lifeYears <= 0 || sendYear <= 0 || v <= 0 {
		return v, 1.0
	}

	assumedAge := lifeYears / 2
	if assumedAge < 1 {
		assumedAge = 1
	}
	if assumedAge > maxAssumedAgeYears {
		assumedAge = maxAssumedAgeYears
	}

	residual := 1.0 - float64(assumedAge)/float64(lifeYears)
	if residual < 0 {
		residual = 0
	}
	return v * residual, residual
}
