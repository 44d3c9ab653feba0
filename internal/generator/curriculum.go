package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/garyellow/docmock/internal/data"
)

// Term shape.
const (
	coursesPerTerm  = 5
	majorCoursesMin = 2
	majorCoursesMax = 3
)

// Catalog is the set of tables the curriculum stage draws from.
type Catalog struct {
	Majors       []data.Major
	MajorCourses map[string][]data.Course
	Common       []data.Course
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Majors:       data.AllMajors,
		MajorCourses: data.MajorCourses,
		Common:       data.CommonCourses,
	}
}

// pickMajor draws one whole (major, college, program) entry.
func pickMajor(r *rand.Rand, c Catalog) data.Major {
	if len(c.Majors) == 0 {
		panic("generator: catalog has no majors")
	}
	return c.Majors[r.IntN(len(c.Majors))]
}

// termCourses draws one term's schedule: 2-3 courses from the major pool
// followed by general-education courses, never repeating a course.
func termCourses(r *rand.Rand, c Catalog, major data.Major) []data.Course {
	pool := c.MajorCourses[major.Prefix]
	k := majorCoursesMin + r.IntN(majorCoursesMax-majorCoursesMin+1)
	if len(pool) < k {
		panic(fmt.Sprintf("generator: major pool %q has %d courses, need %d", major.Prefix, len(pool), k))
	}
	if len(c.Common) < coursesPerTerm-k {
		panic(fmt.Sprintf("generator: common pool has %d courses, need %d", len(c.Common), coursesPerTerm-k))
	}

	courses := make([]data.Course, 0, coursesPerTerm)
	courses = append(courses, sample(r, pool, k)...)
	courses = append(courses, sample(r, c.Common, coursesPerTerm-k)...)
	return courses
}

// sample returns n distinct elements of pool in random order.
func sample[T any](r *rand.Rand, pool []T, n int) []T {
	out := make([]T, n)
	for i, idx := range r.Perm(len(pool))[:n] {
		out[i] = pool[idx]
	}
	return out
}
