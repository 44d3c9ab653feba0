package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/generator"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/render"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "json", []string{"json"}},
		{"with spaces", "json, zipped , stitched", []string{"json", "zipped", "stitched"}},
		{"empty string", "", []string{}},
		{"only commas", ",,,", []string{}},
		{"mixed case", "JSON,Zipped", []string{"json", "zipped"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseList(tt.input))
		})
	}
}

func TestParseOptions(t *testing.T) {
	t.Run("json only", func(t *testing.T) {
		opts, err := parseOptions(0, "", "json", "", "", 2)
		require.NoError(t, err)
		assert.True(t, opts.writeJSON)
		assert.Empty(t, opts.modes)
		assert.Empty(t, opts.outDir)
		assert.Equal(t, render.CoreKinds, opts.kinds)
	})

	t.Run("all expands", func(t *testing.T) {
		opts, err := parseOptions(0, "", "all", "tuition", "", 2)
		require.NoError(t, err)
		assert.False(t, opts.writeJSON)
		assert.Equal(t, []export.Mode{export.ModeStitched, export.ModeHorizontal, export.ModeZipped}, opts.modes)
		assert.Equal(t, ".", opts.outDir)
		assert.Equal(t, []render.Kind{render.KindTuition}, opts.kinds)
	})

	for _, bad := range []struct {
		name, mode, docs string
		scale            float64
	}{
		{"unknown mode", "pdf", "", 2},
		{"no mode", ",", "", 2},
		{"unknown document", "json", "diploma", 2},
		{"scale too big", "json", "", 9},
	} {
		t.Run(bad.name, func(t *testing.T) {
			_, err := parseOptions(0, "", bad.mode, bad.docs, "", bad.scale)
			assert.Error(t, err)
		})
	}
}

func TestRun_JSON(t *testing.T) {
	opts, err := parseOptions(42, "", "json", "", "Example State University", 2)
	require.NoError(t, err)

	var first, second bytes.Buffer
	log := logger.NewWithWriter("error", io.Discard)
	require.NoError(t, run(context.Background(), opts, &first, log))
	require.NoError(t, run(context.Background(), opts, &second, log))

	var rec generator.StudentRecord
	require.NoError(t, json.Unmarshal(first.Bytes(), &rec))
	assert.Equal(t, "Example State University", rec.UniversityName)
	assert.Len(t, rec.Courses.Current, 5)
	// Same seed, same student; dates move with the clock.
	var again generator.StudentRecord
	require.NoError(t, json.Unmarshal(second.Bytes(), &again))
	assert.Equal(t, rec.StudentName, again.StudentName)
	assert.Equal(t, rec.StudentID, again.StudentID)
}

func TestRun_Zipped(t *testing.T) {
	dir := t.TempDir()
	opts, err := parseOptions(7, dir, "zipped", "tuition,card-back", "", 1)
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &stdout, logger.NewWithWriter("error", io.Discard)))
	assert.Zero(t, stdout.Len())

	raw, err := os.ReadFile(filepath.Join(dir, export.ArchiveFilename))
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "Tuition_Statement.png", zr.File[0].Name)
	assert.Equal(t, "Student_ID_Back.png", zr.File[1].Name)
}
