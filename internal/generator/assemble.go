package generator

import (
	"time"

	"github.com/garyellow/docmock/internal/data"
)

// assembly collects every stage output needed to build a record.
type assembly struct {
	university string
	identity   Identity
	timeline   Timeline
	major      data.Major
	current    []GradedCourse
	next       []GradedCourse
	totals     TermTotalsSet
	prior      PriorHistory
	charges    Charges
	cardColor  string
	now        time.Time
}

// assemble formats the stage outputs into the display record.
func assemble(a assembly) StudentRecord {
	term, nextTerm := semestersForDate(a.timeline.Statement)
	fees := a.charges.Fees

	return StudentRecord{
		UniversityName:    a.university,
		UniversityAddress: a.identity.UniversityAddress,
		UniversityLogo:    data.DefaultUniversityLogo,

		StudentName:    a.identity.StudentName,
		StudentID:      a.identity.StudentID,
		PassportNumber: a.identity.PassportNumber,
		Address:        a.identity.Address,

		Major:   a.major.Name,
		Program: a.major.Program,
		College: a.major.College,

		Term:     term.String(),
		NextTerm: nextTerm.String(),

		StatementDate: FormatDate(a.timeline.Statement),
		DueDate:       FormatDate(a.timeline.Due),
		IssueDate:     FormatDate(a.timeline.Issue),
		AdmissionDate: FormatDate(a.timeline.Admission),
		CardIssueDate: FormatDate(a.timeline.CardIssue),
		CardValidDate: FormatDate(a.timeline.CardValid),

		Officials: Officials{
			Dean:      a.identity.Dean,
			Registrar: a.identity.Registrar,
		},
		Tuition: Tuition{
			Base:         FormatCurrency(a.charges.Base),
			Differential: FormatCurrency(a.charges.Differential),
			Fees: FeeBreakdown{
				StudentService:  FormatCurrency(fees.StudentService),
				ComputerService: FormatCurrency(fees.ComputerService),
				Library:         FormatCurrency(fees.Library),
				Medical:         FormatCurrency(fees.Medical),
				Other:           FormatCurrency(fees.Other),
				IntlOps:         FormatCurrency(fees.IntlOps),
				Insurance:       FormatCurrency(fees.Insurance),
			},
			Total: FormatCurrency(a.charges.Total),
		},
		Courses: CourseTerms{
			Current: formatCourses(a.current),
			Next:    formatCourses(a.next),
		},
		Stats: StatsTerms{
			Current:    formatStats(a.totals.Current),
			Next:       formatStats(a.totals.Next),
			Cumulative: formatStats(a.totals.Cumulative),
		},

		CardColor:    a.cardColor,
		CardSubtitle: data.CardSubtitle,
		CardNotice:   data.CardNotice,

		Figures: Figures{
			Major:    a.major,
			Current:  a.current,
			Next:     a.next,
			Totals:   a.totals,
			Prior:    a.prior,
			Charges:  a.charges,
			Timeline: a.timeline,
			Now:      a.now,
		},
	}
}

func formatCourses(courses []GradedCourse) []Course {
	out := make([]Course, len(courses))
	for i, c := range courses {
		out[i] = Course{
			Code:          c.Code,
			Name:          c.Name,
			Hours:         FormatDecimal(c.Hours),
			Grade:         string(c.Grade),
			QualityPoints: FormatDecimal(c.QualityPoints),
		}
	}
	return out
}

func formatStats(t TermTotals) TermStats {
	return TermStats{
		Attempted:     FormatDecimal(t.Attempted),
		Earned:        FormatDecimal(t.Earned),
		QualityPoints: FormatDecimal(t.QualityPoints),
		GPA:           FormatDecimal(t.GPA),
	}
}
