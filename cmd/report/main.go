package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/floor_report/backend/internal/config"
	"github.com/floor_report/backend/internal/db"
	"github.com/floor_report/backend/internal/feeds"
	"github.com/floor_report/backend/internal/report"
	"github.com/floor_report/backend/internal/service"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitFailure = 2
	exitUsage   = 64
)

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run exits with exitInvalid when an input file fails validation.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var assignments multiFlag
	var (
		audit   = fs.String("audit", "", "Validation export (CSV)")
		window  = fs.String("window", cfg.DefaultWindow, "Current window key")
		notes   = fs.String("notes", "", "Closing notes appended to the report")
		out     = fs.String("out", cfg.ReportOutputDir, "Output directory for the CSV report")
		asJSON  = fs.Bool("json", false, "Print the report as JSON on stdout")
		verbose = fs.Bool("v", false, "Debug logging")
	)
	fs.Var(&assignments, "assignment", "Assignment export (CSV, repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()

	if len(assignments) == 0 || *audit == "" {
		fs.Usage()
		return exitUsage
	}

	windows, err := config.LoadWindows(cfg.WindowsFile)
	if err != nil {
		logger.Error().Err(err).Str("file", cfg.WindowsFile).Msg("failed to load windows")
		return exitFailure
	}
	policy, err := service.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return exitFailure
	}

	processor := &service.ProcessingService{
		Store:           db.NewMemoryStore(),
		Logger:          logger,
		Windows:         windows,
		DefaultWindow:   cfg.DefaultWindow,
		Location:        cfg.Location(),
		VehicleColumns:  service.NewKeywordColumnResolver(cfg.Keywords()),
		DuplicatePolicy: policy,
		Workers:         cfg.ParseWorkers,
	}

	req := service.ProcessRequest{
		Audit:  feeds.FileSource(*audit),
		Window: strings.ToUpper(strings.TrimSpace(*window)),
		Notes:  *notes,
	}
	for _, path := range assignments {
		req.Assignments = append(req.Assignments, feeds.FileSource(path))
	}

	_, rep, err := processor.Process(context.Background(), req)
	if err != nil {
		var verr *feeds.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(stderr, verr.Error())
			return exitInvalid
		}
		logger.Error().Err(err).Msg("report failed")
		return exitFailure
	}

	path, err := report.WriteFile(*out, rep, rep.GeneratedAt)
	if err != nil {
		logger.Error().Err(err).Str("dir", *out).Msg("failed to write report")
		return exitFailure
	}
	logger.Info().Str("file", path).Msg("report written")

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Error().Err(err).Msg("failed to encode report")
			return exitFailure
		}
	}
	return exitOK
}
