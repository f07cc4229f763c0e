package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/spielplan/internal/calendar"
	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/fetch"
	"github.com/pfrederiksen/spielplan/internal/filter"
	"github.com/pfrederiksen/spielplan/internal/loader"
	"github.com/pfrederiksen/spielplan/internal/logger"
	"github.com/pfrederiksen/spielplan/internal/normalize"
	"github.com/pfrederiksen/spielplan/internal/schedule"
)

// ErrNoData is returned when no source yields a single club row.
var ErrNoData = errors.New("no schedule rows found")

// Metric names recorded by a run.
const (
	MetricRowsLoaded     = "rows.loaded"
	MetricRowsKept       = "rows.kept"
	MetricRowsSkipped    = "rows.skipped"
	MetricSourcesSkipped = "sources.skipped"
	MetricRowsEmitted    = "rows.emitted"
	MetricSourceLoad     = "source.load"
)

// Source statuses
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
)

// Report describes the outcome for one source
type Report struct {
	Source    string        `json:"source"`
	Format    string        `json:"format"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Encoding  string        `json:"encoding,omitempty"`
	Lenient   bool          `json:"lenient,omitempty"` // Broken quoting forced the line-by-line pass
	Loaded    int           `json:"loaded"`
	Malformed int           `json:"malformed"`
	Kept      int           `json:"kept"`
	Other     int           `json:"other,omitempty"` // Calendar events that are not home games
	Duration  time.Duration `json:"duration"`
}

// Result is the output of a run
type Result struct {
	Rows      []*schedule.Row `json:"rows"`
	Reports   []Report        `json:"reports"`
	Teams     []config.Team   `json:"teams"`
	Generated time.Time       `json:"generated"`
}

// Runner executes a generation run
type Runner struct {
	Config  *config.Config
	Fetcher fetch.Fetcher
	Metrics *logger.Metrics
	Now     func() time.Time
}

// Run generates the schedule with the default metrics tracker.
func Run(ctx context.Context, cfg *config.Config, fetcher fetch.Fetcher) (*Result, error) {
	r := &Runner{Config: cfg, Fetcher: fetcher, Metrics: logger.DefaultMetrics()}
	return r.Run(ctx)
}

// Run loads every source and returns the merged, sorted schedule.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	metrics := r.Metrics
	if metrics == nil {
		metrics = logger.NewMetrics()
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	norm, err := normalize.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating normalizer: %w", err)
	}
	clubFilter := filter.New(cfg.Club.Keywords...)
	logger.Debug("Filter ready", logger.Fields{"filter": clubFilter.String()})

	result := &Result{Teams: cfg.Teams, Generated: now()}
	for _, src := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		rows, report, err := r.loadSource(ctx, src)
		report.Duration = time.Since(start)
		metrics.RecordTiming(MetricSourceLoad, report.Duration)
		metrics.AddCounter(MetricRowsSkipped, int64(report.Malformed))

		if err != nil {
			// Missing columns skip the table even for a required source.
			if src.Required && !errors.Is(err, loader.ErrMissingColumns) {
				logger.Error("Required source failed", logger.Fields{"source": src.ID}, err)
				return nil, fmt.Errorf("loading required source %s: %w", src.ID, err)
			}
			report.Status = StatusSkipped
			report.Reason = err.Error()
			metrics.IncrCounter(MetricSourcesSkipped)
			logger.Warn("Source skipped", logger.Fields{"source": src.ID, "reason": report.Reason})
			result.Reports = append(result.Reports, report)
			continue
		}
		report.Loaded = len(rows)
		metrics.AddCounter(MetricRowsLoaded, int64(len(rows)))

		assign, err := normalize.NewAssigner(src, cfg.Club)
		if err != nil {
			return nil, err
		}
		kept := clubFilter.Apply(rows)
		norm.Normalize(kept, assign)

		report.Status = StatusOK
		report.Kept = len(kept)
		metrics.AddCounter(MetricRowsKept, int64(len(kept)))
		for _, row := range kept {
			row.Source = src.ID
		}
		result.Rows = append(result.Rows, kept...)
		result.Reports = append(result.Reports, report)

		logger.Info("Source loaded", logger.Fields{
			"source":    src.ID,
			"loaded":    report.Loaded,
			"kept":      report.Kept,
			"malformed": report.Malformed,
			"encoding":  report.Encoding,
			"lenient":   report.Lenient,
			"other":     report.Other,
		})
	}

	schedule.Sort(result.Rows)
	if cfg.DropUndated {
		result.Rows = schedule.DropUndated(result.Rows)
	}
	metrics.SetGauge(MetricRowsEmitted, float64(len(result.Rows)))

	if len(result.Rows) == 0 {
		return result, ErrNoData
	}
	return result, nil
}

// loadSource reads and parses one source. The report is filled as far as
// loading got, even on error.
func (r *Runner) loadSource(ctx context.Context, src config.Source) ([]*schedule.Row, Report, error) {
	report := Report{Source: src.ID, Format: src.Format}

	data, name, err := r.read(ctx, src)
	if err != nil {
		return nil, report, err
	}

	switch src.Format {
	case config.FormatICS:
		return r.parseCalendar(data, src, report)
	default:
		table, err := loader.LoadBytes(name, data, loader.Options{
			Comma:     r.Config.Comma(),
			Encodings: r.Config.Encodings,
		})
		if err != nil {
			return nil, report, err
		}
		report.Encoding = table.Encoding
		report.Malformed = table.Skipped
		report.Lenient = table.Lenient

		rows, err := loader.DefaultColumns().Merge(r.Config.Columns).Rows(table)
		if err != nil {
			return nil, report, err
		}
		return rows, report, nil
	}
}

func (r *Runner) parseCalendar(data []byte, src config.Source, report Report) ([]*schedule.Row, Report, error) {
	loc, err := r.Config.Location()
	if err != nil {
		return nil, report, err
	}
	feed, err := calendar.Parse(bytes.NewReader(data), calendar.Options{
		Separators: src.Calendar.Separators,
		HomeTeam:   src.Calendar.HomeTeam,
		OpenPhrase: src.Calendar.OpenPhrase,
		OpenMarker: r.Config.Time.OpenMarker,
		Round:      src.Calendar.Round,
		Host:       src.Calendar.Host,
		Location:   loc,
	})
	if err != nil {
		return nil, report, &loader.SourceError{Source: src.ID, Err: err}
	}
	report.Malformed = feed.Skipped
	report.Other = feed.Other
	return feed.Rows, report, nil
}

// read returns the bytes of a source and the name used in diagnostics.
func (r *Runner) read(ctx context.Context, src config.Source) ([]byte, string, error) {
	if src.URL != "" {
		if r.Fetcher == nil {
			return nil, src.URL, fmt.Errorf("source %s: no fetcher for url", src.ID)
		}
		data, err := r.Fetcher.Fetch(ctx, src.URL)
		if err != nil {
			return nil, src.URL, &loader.SourceError{Source: src.ID, Err: err}
		}
		return data, src.ID, nil
	}

	path, err := r.Config.ResolvePath(src)
	if err != nil {
		return nil, src.Path, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, &loader.SourceError{Source: src.ID, Err: fmt.Errorf("reading file: %w", err)}
	}
	return data, src.ID, nil
}
