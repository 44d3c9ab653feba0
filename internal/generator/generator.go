// Package generator produces self-consistent synthetic student records.
//
// A record is built by a fixed pipeline of stages: identity and dates,
// curriculum, academic performance, finances and assembly. Each stage takes
// the outputs of the earlier stages as parameters, and numeric values stay
// numeric until assembly formats them for display.
package generator

import (
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/garyellow/docmock/internal/data"
)

// Generator owns a random source and produces records from it.
// A Generator is not safe for concurrent use; build one per goroutine.
type Generator struct {
	rng        *rand.Rand
	faker      *gofakeit.Faker
	now        func() time.Time
	university string
	catalog    Catalog
	grades     GradeDistribution
	fees       data.Fees
}

type options struct {
	seed       uint64
	seeded     bool
	now        func() time.Time
	university string
	catalog    *Catalog
	grades     GradeDistribution
}

// Option configures a Generator.
type Option func(*options)

// WithSeed makes the generator deterministic. Together with WithClock the
// same seed reproduces the same record sequence.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithClock sets the time source dates are anchored to.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithUniversity overrides the university name printed on documents.
func WithUniversity(name string) Option {
	return func(o *options) { o.university = name }
}

// WithCatalog replaces the built-in majors and course pools.
func WithCatalog(c Catalog) Option {
	return func(o *options) { o.catalog = &c }
}

// WithGradeDistribution replaces the default grade distribution.
func WithGradeDistribution(d GradeDistribution) Option {
	return func(o *options) { o.grades = d }
}

// New creates a Generator. Without WithSeed it is seeded from the runtime's
// random source, so independent generators never share a sequence.
func New(opts ...Option) *Generator {
	o := options{
		now:        time.Now,
		university: data.DefaultUniversityName,
		grades:     DefaultGradeDistribution,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
	}
	if o.university == "" {
		o.university = data.DefaultUniversityName
	}
	catalog := DefaultCatalog()
	if o.catalog != nil {
		catalog = *o.catalog
	}

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	// gofakeit treats seed 0 as "seed randomly"; keep the faker deterministic.
	fakerSeed := rng.Uint64() | 1

	return &Generator{
		rng:        rng,
		faker:      gofakeit.New(fakerSeed),
		now:        o.now,
		university: o.university,
		catalog:    catalog,
		grades:     o.grades,
		fees:       data.DefaultFees,
	}
}

// GenerateRecord produces one complete record from a fresh random source.
// It takes no input and always succeeds.
func GenerateRecord() StudentRecord {
	return New().Generate()
}

// Regenerate produces a fresh record that keeps the uploaded logo and photo
// of prev.
func Regenerate(prev StudentRecord) StudentRecord {
	return New().Regenerate(prev)
}

// Regenerate produces the next record, carrying over prev's logo and photo.
func (g *Generator) Regenerate(prev StudentRecord) StudentRecord {
	rec := g.Generate()
	if prev.UniversityLogo != "" {
		rec.UniversityLogo = prev.UniversityLogo
	}
	rec.StudentPhoto = prev.StudentPhoto
	return rec
}

// Generate runs every stage in dependency order and assembles the record.
func (g *Generator) Generate() StudentRecord {
	now := g.now()

	timeline := drawTimeline(g.rng, now)
	identity := drawIdentity(g.rng, g.faker)

	major := pickMajor(g.rng, g.catalog)
	current := gradeCourses(g.rng, g.grades, termCourses(g.rng, g.catalog, major))
	next := gradeCourses(g.rng, g.grades, termCourses(g.rng, g.catalog, major))

	prior := drawPriorHistory(g.rng)
	totals := TermTotalsSet{
		Current: AggregateTerm(current),
		Next:    AggregateTerm(next),
	}
	totals.Cumulative = Cumulative(prior, totals.Current, totals.Next)

	charges := ComputeCharges(major.College, drawBaseTuition(g.rng), g.fees)
	cardColor := data.CardColors[g.rng.IntN(len(data.CardColors))]

	return assemble(assembly{
		university: g.university,
		identity:   identity,
		timeline:   timeline,
		major:      major,
		current:    current,
		next:       next,
		totals:     totals,
		prior:      prior,
		charges:    charges,
		cardColor:  cardColor,
		now:        now,
	})
}
