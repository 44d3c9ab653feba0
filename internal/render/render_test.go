package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/generator"
)

func testRecord(t *testing.T) generator.StudentRecord {
	t.Helper()
	now := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)
	return generator.New(generator.WithSeed(11), generator.WithClock(func() time.Time { return now })).Generate()
}

func parse(t *testing.T, html []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDocument_AllKinds(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	rec := testRecord(t)

	for _, kind := range AllKinds {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			html, err := r.Document(kind, rec)
			require.NoError(t, err)

			doc := parse(t, html)
			root := doc.Find(".document")
			require.Equal(t, 1, root.Length())
			assert.Equal(t, string(kind), root.AttrOr("data-kind", ""))
			assert.Contains(t, root.Text(), rec.StudentName)
			assert.Zero(t, doc.Find(".doc-label").Length())
		})
	}
}

func TestDocument_TuitionFigures(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	rec := testRecord(t)

	html, err := r.Document(KindTuition, rec)
	require.NoError(t, err)
	text := parse(t, html).Text()

	for _, want := range []string{rec.Tuition.Base, rec.Tuition.Differential, rec.Tuition.Total, rec.DueDate, "$1,650.00"} {
		assert.Contains(t, text, want)
	}
}

func TestDocument_TranscriptRows(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	rec := testRecord(t)

	html, err := r.Document(KindTranscript, rec)
	require.NoError(t, err)
	doc := parse(t, html)

	// Two header rows plus ten course rows.
	assert.Equal(t, 12, doc.Find("tr").Length())
	assert.Contains(t, doc.Text(), rec.Stats.Cumulative.GPA)
	assert.Contains(t, doc.Text(), rec.Term)
	assert.Contains(t, doc.Text(), rec.NextTerm)
}

func TestDocument_UnknownKind(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	_, err = r.Document(Kind("diploma"), testRecord(t))
	assert.Error(t, err)
}

func TestDocument_ImageSources(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	tests := []struct {
		name  string
		photo *string
		want  string
	}{
		{"no photo", nil, ""},
		{"asset ref", ptr("asset:0b6f"), "/api/assets/0b6f"},
		{"data url", ptr("data:image/png;base64,AAAA"), "data:image/png;base64,AAAA"},
		{"script url", ptr("javascript:alert(1)"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := testRecord(t)
			rec.StudentPhoto = tt.photo

			html, err := r.Document(KindCardFront, rec)
			require.NoError(t, err)
			src := parse(t, html).Find("img").AttrOr("src", "missing")
			assert.Equal(t, tt.want, src)
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)
	rec := testRecord(t)

	html, err := r.Preview(rec, PreviewOptions{Interactive: true})
	require.NoError(t, err)
	doc := parse(t, html)

	assert.Equal(t, len(AllKinds), doc.Find(".document").Length())
	assert.Equal(t, len(AllKinds), doc.Find(".doc-label").Length())
	assert.Equal(t, "Tuition Statement", doc.Find(".doc-label").First().Text())

	raw, ok := doc.Find(`input[name="record"]`).Attr("value")
	require.True(t, ok)
	assert.Contains(t, raw, rec.StudentID)
}

func TestParseKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    []Kind
		wantErr bool
	}{
		{"", CoreKinds, false},
		{"transcript", []Kind{KindTranscript}, false},
		{"card-front, CARD-BACK", []Kind{KindCardFront, KindCardBack}, false},
		{"tuition,tuition", []Kind{KindTuition}, false},
		{" , ", CoreKinds, false},
		{"tuition,diploma", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKinds(tt.in)
			if tt.wantErr {
				assert.True(t, domerrors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindFilenames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Tuition_Statement.png", KindTuition.Filename())
	assert.Equal(t, "Student_ID_Back.png", KindCardBack.Filename())
	for _, k := range AllKinds {
		assert.NotEmpty(t, k.Filename())
		assert.NotEmpty(t, k.Title())
	}
}

func ptr(s string) *string { return &s }
