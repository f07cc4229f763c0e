package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/loader"
	"github.com/pfrederiksen/spielplan/internal/logger"
)

const header = "Datum;Uhrzeit;Mannschaft 1;Mannschaft 2;Schiedsgericht;Gastgeber;Austragungsort;Spielrunde\n"

func testConfig(t *testing.T, sources ...config.Source) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.DataDir = t.TempDir()
	cfg.Timezone = "UTC"
	cfg.Sources = sources
	return cfg
}

func writeSource(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, name), []byte(content), 0644))
}

func csvSource(id, path, code string) config.Source {
	return config.Source{ID: id, Path: path, Format: config.FormatCSV, TeamCode: code, Rule: config.Rule{Kind: config.RuleFixed}}
}

func testRunner(cfg *config.Config) *Runner {
	return &Runner{
		Config:  cfg,
		Metrics: logger.NewMetrics(),
		Now:     func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRun_MergesAndSorts(t *testing.T) {
	cfg := testConfig(t,
		csvSource("1bl", "1bl.csv", "USC1"),
		config.Source{
			ID: "bzk26", Path: "bzk26.csv", Format: config.FormatCSV,
			Rule: config.Rule{
				Kind:     config.RuleNumeral,
				Combined: "USC5/USC6",
				Numerals: []config.NumeralCode{{Numeral: "VI", Code: "USC6"}, {Numeral: "V", Code: "USC5"}},
			},
		},
	)
	writeSource(t, cfg, "1bl.csv", header+
		"04.10.2025;19:00:00;Dresdner SC;USC Münster;;Dresdner SC;Margon Arena;1. Bundesliga\n"+
		"20.09.2025;15:00:00;USC Münster;SC Potsdam;;USC Münster;Berg Fidel;1. Bundesliga\n"+
		"21.09.2025;15:00:00;SSC Schwerin;VC Wiesbaden;;SSC Schwerin;Palais;1. Bundesliga\n")
	writeSource(t, cfg, "bzk26.csv", header+
		"tba;;USC Münster V;TV Gladbeck;;USC Münster V;Halle Ost;Bezirksklasse 26\n"+
		"20.09.2025;11:00:00;USC Münster VI;SV Ibbenbüren;;USC Münster VI;Halle Ost;Bezirksklasse 26\n"+
		"27.09.2025;00:00:00;TV Gladbeck;USC Münster V;USC MÜNSTER VI;TV Gladbeck;Halle Nord;Bezirksklasse 26\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)

	var got []string
	for _, row := range result.Rows {
		got = append(got, row.Date+" "+row.Time+" "+row.TeamCode+" "+row.Home+"-"+row.Away)
	}
	assert.Equal(t, []string{
		"20.09.2025 11:00 USC6 USC6-SV Ibbenbüren",
		"20.09.2025 15:00 USC1 USC1-SC Potsdam",
		"27.09.2025 undetermined USC5/USC6 TV Gladbeck-USC5",
		"04.10.2025 19:00 USC1 Dresdner SC-USC1",
		"tba  USC5 USC5-TV Gladbeck",
	}, got)

	assert.Equal(t, "bzk26", result.Rows[0].Source)
	assert.Equal(t, "Sa", result.Rows[0].Weekday)
	assert.Equal(t, "USC6", result.Rows[2].Referee)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, Report{Source: "1bl", Format: "csv", Status: StatusOK, Encoding: "utf-8-sig", Loaded: 3, Kept: 2},
		withoutDuration(result.Reports[0]))
	assert.Equal(t, 3, result.Reports[1].Kept)
	assert.Equal(t, cfg.Teams, result.Teams)
	assert.Equal(t, time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC), result.Generated)
}

func withoutDuration(r Report) Report {
	r.Duration = 0
	return r
}

func TestRun_DropUndated(t *testing.T) {
	cfg := testConfig(t, csvSource("1bl", "1bl.csv", "USC1"))
	cfg.DropUndated = true
	writeSource(t, cfg, "1bl.csv", header+
		"tba;;USC Münster;SC Potsdam;;;;\n"+
		"20.09.2025;15:00;USC Münster;Dresdner SC;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Dresdner SC", result.Rows[0].Away)
}

func TestRun_SkipsHTMLSource(t *testing.T) {
	cfg := testConfig(t,
		csvSource("bzk26", "bzk26.csv", "USC5"),
		csvSource("1bl", "1bl.csv", "USC1"),
	)
	writeSource(t, cfg, "bzk26.csv", "<!DOCTYPE html><html><head><title>Wartungsarbeiten</title></head></html>")
	writeSource(t, cfg, "1bl.csv", header+"20.09.2025;15:00;USC Münster;SC Potsdam;;;;\n")

	runner := testRunner(cfg)
	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Rows, 1)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, StatusSkipped, result.Reports[0].Status)
	assert.Contains(t, result.Reports[0].Reason, "Wartungsarbeiten")
	assert.Equal(t, StatusOK, result.Reports[1].Status)
	assert.Equal(t, int64(1), runner.Metrics.Counter(MetricSourcesSkipped))
}

func TestRun_SkipsMissingColumns(t *testing.T) {
	cfg := testConfig(t,
		csvSource("old", "old.csv", "USC3"),
		csvSource("1bl", "1bl.csv", "USC1"),
	)
	writeSource(t, cfg, "old.csv", "Datum;Heim\n20.09.2025;USC Münster III\n")
	writeSource(t, cfg, "1bl.csv", header+"20.09.2025;15:00;USC Münster;SC Potsdam;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Reports[0].Status)
	assert.Contains(t, result.Reports[0].Reason, loader.ErrMissingColumns.Error())
}

func TestRun_RequiredSourceMissingColumns(t *testing.T) {
	old := csvSource("old", "old.csv", "USC3")
	old.Required = true
	cfg := testConfig(t, old, csvSource("1bl", "1bl.csv", "USC1"))
	writeSource(t, cfg, "old.csv", "Datum;Heim\n20.09.2025;USC Münster III\n")
	writeSource(t, cfg, "1bl.csv", header+"20.09.2025;15:00;USC Münster;SC Potsdam;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Reports[0].Status)
	assert.Len(t, result.Rows, 1)
}

func TestRun_ReportsBrokenQuoting(t *testing.T) {
	cfg := testConfig(t, csvSource("1bl", "1bl.csv", "USC1"))
	writeSource(t, cfg, "1bl.csv", header+
		"20.09.2025;15:00;\"USC Münster;SC Potsdam;;;;\n"+
		"27.09.2025;19:00;USC Münster;Dresdner SC;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.True(t, result.Reports[0].Lenient)
	assert.Equal(t, "USC1", result.Rows[0].Home)
	assert.Equal(t, "Dresdner SC", result.Rows[1].Away)
}

func TestRun_RequiredSourceFails(t *testing.T) {
	src := csvSource("1bl", "missing.csv", "USC1")
	src.Required = true
	cfg := testConfig(t, src)

	_, err := testRunner(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "1bl")
}

func TestRun_OptionalMissingFile(t *testing.T) {
	cfg := testConfig(t,
		csvSource("gone", "gone.csv", "USC4"),
		csvSource("1bl", "1bl.csv", "USC1"),
	)
	writeSource(t, cfg, "1bl.csv", header+"20.09.2025;15:00;USC Münster;SC Potsdam;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, result.Reports[0].Status)
	assert.Len(t, result.Rows, 1)
}

func TestRun_NoData(t *testing.T) {
	cfg := testConfig(t, csvSource("1bl", "1bl.csv", "USC1"))
	writeSource(t, cfg, "1bl.csv", header+"20.09.2025;15:00;SSC Schwerin;SC Potsdam;;;;\n")

	result, err := testRunner(cfg).Run(context.Background())
	assert.True(t, errors.Is(err, ErrNoData))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Reports[0].Kept)
}

func TestRun_Metrics(t *testing.T) {
	cfg := testConfig(t, csvSource("1bl", "1bl.csv", "USC1"))
	writeSource(t, cfg, "1bl.csv", header+
		"20.09.2025;15:00;USC Münster;SC Potsdam;;;;\n"+
		"21.09.2025;15:00;A;B;;;;;\n"+
		"22.09.2025;15:00;SSC Schwerin;SC Potsdam;;;;\n")

	runner := testRunner(cfg)
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	snap := runner.Metrics.GetSnapshot()
	assert.Equal(t, int64(2), snap.Counters[MetricRowsLoaded])
	assert.Equal(t, int64(1), snap.Counters[MetricRowsKept])
	assert.Equal(t, int64(1), snap.Counters[MetricRowsSkipped])
	assert.Equal(t, float64(1), snap.Gauges[MetricRowsEmitted])
	assert.Equal(t, 1, snap.Timings[MetricSourceLoad].Count)
}

type stubFetcher struct {
	data map[string]string
	err  error
}

func (f stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.data[url]), nil
}

func TestRun_URLSource(t *testing.T) {
	cfg := testConfig(t, config.Source{
		ID: "2bl-nord", URL: "https://example.org/2bl.csv", Format: config.FormatCSV,
		TeamCode: "USC2", Rule: config.Rule{Kind: config.RuleFixed},
	})
	runner := testRunner(cfg)
	runner.Fetcher = stubFetcher{data: map[string]string{
		"https://example.org/2bl.csv": header + "20.09.2025;16:00;USC Münster II;BBSC Berlin;;;;\n",
	}}

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "USC2", result.Rows[0].Home)
	assert.Equal(t, "USC2", result.Rows[0].TeamCode)
}

func TestRun_URLSourceFetchError(t *testing.T) {
	src := config.Source{
		ID: "2bl-nord", URL: "https://example.org/2bl.csv", Format: config.FormatCSV,
		TeamCode: "USC2", Required: true, Rule: config.Rule{Kind: config.RuleFixed},
	}
	cfg := testConfig(t, src)
	runner := testRunner(cfg)
	runner.Fetcher = stubFetcher{err: errors.New("connection refused")}

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_CalendarSource(t *testing.T) {
	cfg := testConfig(t, config.Source{
		ID: "1bl-ics", Path: "usc1.ics", Format: config.FormatICS, TeamCode: "USC1",
		Rule:     config.Rule{Kind: config.RuleFixed},
		Calendar: config.CalendarConfig{Round: "1. Bundesliga", OpenPhrase: "nicht festgelegt"},
	})
	writeSource(t, cfg, "usc1.ics", strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:1@test",
		"SUMMARY:USC Münster - SC Potsdam",
		"DTSTART:20250920T150000",
		"LOCATION:Berg Fidel",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:2@test",
		"SUMMARY:Dresdner SC - USC Münster",
		"DTSTART;VALUE=DATE:20250913",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:3@test",
		"SUMMARY:SSC Schwerin - VC Wiesbaden",
		"DTSTART:20250914T180000",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")+"\r\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, "13.09.2025", result.Rows[0].Date)
	assert.Equal(t, "undetermined", result.Rows[0].Time)
	assert.Equal(t, "Dresdner SC", result.Rows[0].Home)
	assert.Equal(t, "USC1", result.Rows[0].Away)
	assert.Equal(t, "15:00", result.Rows[1].Time)
	assert.Equal(t, "Berg Fidel", result.Rows[1].Venue)
	assert.Equal(t, "1. Bundesliga", result.Rows[1].Round)
	assert.Equal(t, 3, result.Reports[0].Loaded)
}

func TestRun_CalendarHomeTeam(t *testing.T) {
	cfg := testConfig(t, config.Source{
		ID: "1bl-ics", Path: "usc1.ics", Format: config.FormatICS, TeamCode: "USC1",
		Rule:     config.Rule{Kind: config.RuleFixed},
		Calendar: config.CalendarConfig{HomeTeam: "USC Münster"},
	})
	writeSource(t, cfg, "usc1.ics", strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:1@test",
		"SUMMARY:USC Münster - SC Potsdam",
		"DTSTART:20250920T150000",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:2@test",
		"SUMMARY:Dresdner SC - USC Münster",
		"DTSTART:20250913T190000",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")+"\r\n")

	result, err := testRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "USC1", result.Rows[0].Home)
	assert.Equal(t, 1, result.Reports[0].Other)
	assert.Equal(t, 1, result.Reports[0].Loaded)
}

func TestRun_Canceled(t *testing.T) {
	cfg := testConfig(t, csvSource("1bl", "1bl.csv", "USC1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner(cfg).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
