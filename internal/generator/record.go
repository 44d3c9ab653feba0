package generator

import (
	"time"

	"github.com/garyellow/docmock/internal/data"
)

// StudentRecord is the complete generated record as consumed by templates.
// Monetary, decimal and date fields are display strings; the numeric values
// they were formatted from are kept in Figures.
type StudentRecord struct {
	UniversityName    string `json:"universityName"`
	UniversityAddress string `json:"universityAddress"`
	UniversityLogo    string `json:"universityLogo"`

	StudentName    string `json:"studentName"`
	StudentID      string `json:"studentID"`
	PassportNumber string `json:"passportNumber"`
	Address        string `json:"address"`

	Major   string `json:"major"`
	Program string `json:"program"`
	College string `json:"college"`

	Term     string `json:"term"`
	NextTerm string `json:"nextTerm"`

	StatementDate string `json:"statementDate"`
	DueDate       string `json:"dueDate"`
	IssueDate     string `json:"issueDate"`
	AdmissionDate string `json:"admissionDate"`
	CardIssueDate string `json:"cardIssueDate"`
	CardValidDate string `json:"cardValidDate"`

	Officials Officials   `json:"officials"`
	Tuition   Tuition     `json:"tuition"`
	Courses   CourseTerms `json:"courses"`
	Stats     StatsTerms  `json:"stats"`

	CardColor    string  `json:"cardColor"`
	CardSubtitle string  `json:"cardSubtitle"`
	CardNotice   string  `json:"cardNotice"`
	StudentPhoto *string `json:"studentPhoto"`

	// Figures holds the pre-format numeric values. It is only populated on
	// records produced by a Generator; records decoded from JSON leave it zero.
	Figures Figures `json:"-"`
}

// Officials are the signatories printed on letters and certificates.
type Officials struct {
	Dean      string `json:"dean"`
	Registrar string `json:"registrar"`
}

// Tuition is the formatted tuition statement.
type Tuition struct {
	Base         string       `json:"base"`
	Differential string       `json:"differential"`
	Fees         FeeBreakdown `json:"fees"`
	Total        string       `json:"total"`
}

// FeeBreakdown is the formatted fee schedule.
type FeeBreakdown struct {
	StudentService  string `json:"studentService"`
	ComputerService string `json:"computerService"`
	Library         string `json:"library"`
	Medical         string `json:"medical"`
	Other           string `json:"other"`
	IntlOps         string `json:"intlOps"`
	Insurance       string `json:"insurance"`
}

// CourseTerms holds the course lists of the two generated terms.
type CourseTerms struct {
	Current []Course `json:"current"`
	Next    []Course `json:"next"`
}

// Course is one transcript line.
type Course struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Hours         string `json:"hours"`
	Grade         string `json:"grade"`
	QualityPoints string `json:"qualityPoints"`
}

// StatsTerms holds per-term and cumulative statistics.
type StatsTerms struct {
	Current    TermStats `json:"current"`
	Next       TermStats `json:"next"`
	Cumulative TermStats `json:"cumulative"`
}

// TermStats is a formatted statistics block.
type TermStats struct {
	Attempted     string `json:"attempted"`
	Earned        string `json:"earned"`
	QualityPoints string `json:"qualityPoints"`
	GPA           string `json:"gpa"`
}

// Figures are the numeric stage outputs a record was assembled from.
type Figures struct {
	Major    data.Major
	Current  []GradedCourse
	Next     []GradedCourse
	Totals   TermTotalsSet
	Prior    PriorHistory
	Charges  Charges
	Timeline Timeline
	Now      time.Time // instant the timeline was anchored to
}

// TermTotalsSet groups the numeric statistics of both terms and the cumulative record.
type TermTotalsSet struct {
	Current    TermTotals
	Next       TermTotals
	Cumulative TermTotals
}

// GradedCourse is a course with its drawn grade and quality points.
type GradedCourse struct {
	Code          string
	Name          string
	Hours         float64
	Grade         Grade
	QualityPoints float64
}

// TermTotals are numeric term statistics. GPA is rounded to 2 decimals.
type TermTotals struct {
	Attempted     float64
	Earned        float64
	QualityPoints float64
	GPA           float64
}

// PriorHistory is the synthesized enrollment history before the current term.
type PriorHistory struct {
	Hours  int
	GPA    float64
	Points float64
}

// Charges are the numeric tuition figures in whole dollars.
type Charges struct {
	Base         int
	Differential int
	Fees         data.Fees
	Total        int
}

// Timeline is the chronological skeleton of a record.
type Timeline struct {
	Statement time.Time
	Due       time.Time
	Issue     time.Time
	Admission time.Time
	CardIssue time.Time
	CardValid time.Time
}
