package generator

import (
	"math/rand/v2"

	"github.com/garyellow/docmock/internal/data"
)

// Grade is a letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// gradeWeights maps a grade to its quality-point weight per credit hour.
var gradeWeights = map[Grade]float64{
	GradeA: 4,
	GradeB: 3,
	GradeC: 2,
	GradeD: 1,
}

// Weight returns the quality-point weight of g. Unknown grades weigh 0.
func (g Grade) Weight() float64 {
	return gradeWeights[g]
}

// GradeWeight is one outcome of a categorical grade distribution.
type GradeWeight struct {
	Grade  Grade
	Weight int
}

// GradeDistribution is a weighted categorical distribution over grades.
// Entries with zero weight are never drawn.
type GradeDistribution []GradeWeight

// DefaultGradeDistribution draws A twice as often as B. C and D carry zero
// weight, so every generated term has a GPA between 3.0 and 4.0.
var DefaultGradeDistribution = GradeDistribution{
	{GradeA, 4},
	{GradeB, 2},
	{GradeC, 0},
	{GradeD, 0},
}

// Draw samples one grade. It panics if the distribution has no positive weight.
func (d GradeDistribution) Draw(r *rand.Rand) Grade {
	total := 0
	for _, w := range d {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	if total == 0 {
		panic("generator: grade distribution has no positive weight")
	}

	n := r.IntN(total)
	for _, w := range d {
		if w.Weight <= 0 {
			continue
		}
		if n < w.Weight {
			return w.Grade
		}
		n -= w.Weight
	}
	panic("unreachable")
}

// gradeCourses assigns each offering a grade and its quality points.
func gradeCourses(r *rand.Rand, dist GradeDistribution, offerings []data.Course) []GradedCourse {
	graded := make([]GradedCourse, len(offerings))
	for i, c := range offerings {
		grade := dist.Draw(r)
		hours := float64(c.Hours)
		graded[i] = GradedCourse{
			Code:          c.Code,
			Name:          c.Name,
			Hours:         hours,
			Grade:         grade,
			QualityPoints: round2(hours * grade.Weight()),
		}
	}
	return graded
}
