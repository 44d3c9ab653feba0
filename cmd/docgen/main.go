// Package main is a command line generator that prints a student record as
// JSON and optionally writes its exported documents to disk.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/garyellow/docmock/internal/assets"
	"github.com/garyellow/docmock/internal/config"
	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/generator"
	"github.com/garyellow/docmock/internal/logger"
	"github.com/garyellow/docmock/internal/raster"
	"github.com/garyellow/docmock/internal/render"
)

// CLI flags
var (
	seedFlag       = flag.Uint64("seed", 0, "Random seed (0 = random)")
	outFlag        = flag.String("out", "", "Directory for exported files (default: current directory when exporting)")
	modeFlag       = flag.String("mode", "json", "Output: json, stitched, stitched-horizontal, zipped or all (comma separated)")
	documentsFlag  = flag.String("documents", "", "Comma-separated documents to export (default: tuition,transcript,schedule)")
	universityFlag = flag.String("university", "", "University name printed on documents")
	scaleFlag      = flag.Float64("scale", raster.DefaultScale, "Device pixel ratio of exported images")
	logLevelFlag   = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
)

// options is the parsed command line.
type options struct {
	seed       uint64
	outDir     string
	modes      []export.Mode
	writeJSON  bool
	kinds      []render.Kind
	university string
	scale      float64
}

func main() {
	flag.Parse()

	opts, err := parseOptions(*seedFlag, *outFlag, *modeFlag, *documentsFlag, *universityFlag, *scaleFlag)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, config.ExportProcessing)
	defer cancel()

	log := logger.NewWithWriter(*logLevelFlag, os.Stderr).WithModule("docgen")
	if err := run(ctx, opts, os.Stdout, log); err != nil {
		log.WithError(err).Error("Generation failed")
		_, _ = fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// parseOptions validates the flags. A mode list may mix json with export
// modes; "all" selects every export mode.
func parseOptions(seed uint64, outDir, modes, documents, university string, scale float64) (options, error) {
	opts := options{seed: seed, outDir: outDir, university: university, scale: scale}

	for _, m := range parseList(modes) {
		switch m {
		case "json":
			opts.writeJSON = true
		case "all":
			opts.modes = append(opts.modes, export.ModeStitched, export.ModeHorizontal, export.ModeZipped)
		default:
			mode, err := export.ParseMode(m)
			if err != nil {
				return options{}, err
			}
			opts.modes = append(opts.modes, mode)
		}
	}
	if !opts.writeJSON && len(opts.modes) == 0 {
		return options{}, errors.New("no output mode selected")
	}

	kinds, err := render.ParseKinds(documents)
	if err != nil {
		return options{}, err
	}
	opts.kinds = kinds

	if scale <= 0 || scale > 4 {
		return options{}, fmt.Errorf("scale %.2f is out of range (0, 4]", scale)
	}
	if len(opts.modes) > 0 && opts.outDir == "" {
		opts.outDir = "."
	}
	return opts, nil
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(strings.ToLower(part)); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// run generates one record, prints it when requested and writes each export.
func run(ctx context.Context, opts options, stdout io.Writer, log *logger.Logger) error {
	genOpts := []generator.Option{generator.WithUniversity(opts.university)}
	if opts.seed != 0 {
		genOpts = append(genOpts, generator.WithSeed(opts.seed))
	}
	rec := generator.New(genOpts...).Generate()
	log.WithField("student_id", rec.StudentID).WithField("major", rec.Major).Info("Record generated")

	if opts.writeJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if len(opts.modes) == 0 {
		return nil
	}

	if err := os.MkdirAll(opts.outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	rasterizer, err := raster.New()
	if err != nil {
		return err
	}
	exporter := export.New(renderer, rasterizer, export.Config{
		Scale:  opts.scale,
		Assets: assets.NewResolver(nil),
	}, log)

	start := time.Now()
	for _, mode := range opts.modes {
		artifact, err := exporter.Export(ctx, rec, mode, opts.kinds)
		if err != nil {
			return fmt.Errorf("%s export: %w", mode, err)
		}
		name := artifact.Name
		if mode == export.ModeHorizontal && len(opts.modes) > 1 {
			// Keep the grid and the horizontal composite apart.
			name = "Documents_Combined_Horizontal.png"
		}
		path := filepath.Join(opts.outDir, name)
		if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.WithField("mode", mode).WithField("path", path).WithField("bytes", len(artifact.Data)).Info("Export written")
		_, _ = fmt.Fprintf(os.Stderr, "✓ %s → %s\n", mode, path)
	}

	_, _ = fmt.Fprintf(os.Stderr, "✅ %d export(s) written in %v\n", len(opts.modes), time.Since(start).Round(time.Millisecond))
	return nil
}
