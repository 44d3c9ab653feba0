package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Identity is the output of the identity stage.
type Identity struct {
	StudentName       string
	Address           string
	UniversityAddress string
	StudentID         string
	PassportNumber    string
	Dean              string
	Registrar         string
}

const passportAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// admissionMonths are the intake months: January, February, August, September.
var admissionMonths = []time.Month{time.January, time.February, time.August, time.September}

func drawIdentity(r *rand.Rand, f *gofakeit.Faker) Identity {
	return Identity{
		StudentName: f.LastName() + " " + f.FirstName(),
		Address:     fmt.Sprintf("%s, %s, %s", f.Street(), f.City(), f.State()),
		UniversityAddress: fmt.Sprintf("%d University Blvd, %s, %s, %s",
			100+r.IntN(9900), f.City(), f.StateAbr(), f.Zip()),
		StudentID:      digits(r, 6) + "-" + digits(r, 4),
		PassportNumber: randomString(r, passportAlphabet, 9),
		Dean:           fmt.Sprintf("%s, %s (PhD)", f.LastName(), f.FirstName()),
		Registrar:      fmt.Sprintf("%s, %s", f.LastName(), f.FirstName()),
	}
}

// drawTimeline builds the record dates relative to now. All dates are at
// midnight in now's location.
func drawTimeline(r *rand.Rand, now time.Time) Timeline {
	today := dateOnly(now)

	statement := today.AddDate(0, 0, -r.IntN(183))
	due := statement.AddDate(0, 0, 14+r.IntN(17))
	issue := today.AddDate(0, 0, -r.IntN(6))

	admission := time.Date(
		now.Year()-(1+r.IntN(3)),
		admissionMonths[r.IntN(len(admissionMonths))],
		15+r.IntN(14),
		0, 0, 0, 0, now.Location(),
	)
	cardIssue := admission.AddDate(0, 0, 7+r.IntN(22))

	return Timeline{
		Statement: statement,
		Due:       due,
		Issue:     issue,
		Admission: admission,
		CardIssue: cardIssue,
		CardValid: cardIssue.AddDate(4, 0, 0),
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func digits(r *rand.Rand, n int) string {
	return randomString(r, "0123456789", n)
}

func randomString(r *rand.Rand, alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[r.IntN(len(alphabet))])
	}
	return b.String()
}
