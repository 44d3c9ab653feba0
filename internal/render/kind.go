package render

import (
	"fmt"
	"strings"

	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/sliceutil"
)

// Kind identifies one of the document templates.
type Kind string

const (
	KindTuition    Kind = "tuition"
	KindTranscript Kind = "transcript"
	KindSchedule   Kind = "schedule"
	KindAdmission  Kind = "admission"
	KindEnrollment Kind = "enrollment"
	KindCardFront  Kind = "card-front"
	KindCardBack   Kind = "card-back"
)

type kindInfo struct {
	title    string
	filename string
}

var kinds = map[Kind]kindInfo{
	KindTuition:    {"Tuition Statement", "Tuition_Statement.png"},
	KindTranscript: {"Transcript", "Transcript.png"},
	KindSchedule:   {"Course Schedule", "Schedule.png"},
	KindAdmission:  {"Admission Letter", "Admission_Letter.png"},
	KindEnrollment: {"Enrollment Certificate", "Enrollment_Certificate.png"},
	KindCardFront:  {"Student ID (Front)", "Student_ID_Front.png"},
	KindCardBack:   {"Student ID (Back)", "Student_ID_Back.png"},
}

// AllKinds lists every document in preview order.
var AllKinds = []Kind{
	KindTuition,
	KindTranscript,
	KindSchedule,
	KindAdmission,
	KindEnrollment,
	KindCardFront,
	KindCardBack,
}

// CoreKinds are the documents exported when no selection is given.
var CoreKinds = []Kind{KindTuition, KindTranscript, KindSchedule}

// Title returns the caption shown above the document in the preview.
func (k Kind) Title() string { return kinds[k].title }

// Filename returns the export file name of the document.
func (k Kind) Filename() string { return kinds[k].filename }

// Valid reports whether k names a known document.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// ParseKind validates a document name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", domerrors.NewValidationError("documents", fmt.Sprintf("unknown document kind %q", s))
	}
	return k, nil
}

// ParseKinds parses a comma separated document list. An empty list yields CoreKinds.
func ParseKinds(s string) ([]Kind, error) {
	if strings.TrimSpace(s) == "" {
		return CoreKinds, nil
	}
	var out []Kind
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return CoreKinds, nil
	}
	return sliceutil.Unique(out), nil
}
