package generator

import (
	"math/rand/v2"
	"strings"

	"github.com/garyellow/docmock/internal/data"
)

// Differential returns the differential tuition for a college.
// "Business" is checked before "Science"; anything else pays the default.
func Differential(college string) int {
	switch {
	case strings.Contains(college, "Business"):
		return data.DifferentialBusiness
	case strings.Contains(college, "Science"):
		return data.DifferentialScience
	default:
		return data.DifferentialDefault
	}
}

// ComputeCharges totals a statement from a base tuition and fee schedule.
func ComputeCharges(college string, base int, fees data.Fees) Charges {
	diff := Differential(college)
	return Charges{
		Base:         base,
		Differential: diff,
		Fees:         fees,
		Total:        base + diff + fees.Sum(),
	}
}

func drawBaseTuition(r *rand.Rand) int {
	return data.BaseTuitionMin + r.IntN(data.BaseTuitionMax-data.BaseTuitionMin+1)
}
