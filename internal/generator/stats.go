package generator

import (
	"math"
	"math/rand/v2"
)

// Prior history bounds.
const (
	priorHoursMin = 15
	priorHoursMax = 60
	priorGPAMin   = 3.2
	priorGPAMax   = 4.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(points, hours float64) float64 {
	if hours == 0 {
		return 0
	}
	return round2(points / hours)
}

// AggregateTerm computes the statistics of one term.
// Every attempted hour counts as earned; failing grades are not modelled.
// A term with no attempted hours has a GPA of 0.
func AggregateTerm(courses []GradedCourse) TermTotals {
	var hours, points float64
	for _, c := range courses {
		hours += c.Hours
		points += c.QualityPoints
	}
	return TermTotals{
		Attempted:     hours,
		Earned:        hours,
		QualityPoints: round2(points),
		GPA:           ratio(points, hours),
	}
}

// Cumulative blends prior history with the given terms, weighting each by
// its attempted hours.
func Cumulative(prior PriorHistory, terms ...TermTotals) TermTotals {
	hours := float64(prior.Hours)
	points := prior.Points
	for _, t := range terms {
		hours += t.Attempted
		points += t.QualityPoints
	}
	return TermTotals{
		Attempted:     hours,
		Earned:        hours,
		QualityPoints: round2(points),
		GPA:           ratio(points, hours),
	}
}

// drawPriorHistory synthesizes the enrollment history preceding the current term.
func drawPriorHistory(r *rand.Rand) PriorHistory {
	hours := priorHoursMin + r.IntN(priorHoursMax-priorHoursMin+1)
	gpa := priorGPAMin + r.Float64()*(priorGPAMax-priorGPAMin)
	return PriorHistory{
		Hours:  hours,
		GPA:    gpa,
		Points: float64(hours) * gpa,
	}
}
