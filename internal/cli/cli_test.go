package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundesligaCSV = "Datum;Uhrzeit;Mannschaft 1;Mannschaft 2;Schiedsgericht;Gastgeber;Austragungsort;Spielrunde;Ergebnis\n" +
	"04.10.2025;18:00:00;USC Münster;SC Potsdam;;USC Münster;Berg Fidel;1. Bundesliga Frauen;\n" +
	"20.09.2025;00:00:00;Allianz MTV Stuttgart;USC Münster;;Allianz MTV Stuttgart;Scharrena;1. Bundesliga Frauen;\n" +
	"27.09.2025;19:00:00;Dresdner SC;SSC Schwerin;;Dresdner SC;Margon Arena;1. Bundesliga Frauen;\n"

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "csvdata"), 0755))
	path := filepath.Join(dir, "csvdata", "Spielplan_1._Bundesliga_Frauen.csv")
	require.NoError(t, os.WriteFile(path, []byte(bundesligaCSV), 0644))
	return dir
}

func TestRun_WritesCSV(t *testing.T) {
	dataDir := writeDataDir(t)
	outPath := filepath.Join(t.TempDir(), "spielplan.csv")

	opts := &options{dataDir: dataDir, format: "csv", output: outPath, logLevel: "error"}
	var stdout, stderr bytes.Buffer
	code, err := run(context.Background(), opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "\ufeffDatum;Uhrzeit;Tag"))
	assert.Equal(t, "20.09.2025;undetermined;Sa;Allianz MTV Stuttgart;USC1;;Allianz MTV Stuttgart;;Scharrena;1. Bundesliga Frauen;USC1", lines[1])
	assert.Equal(t, "04.10.2025;18:00;Sa;USC1;SC Potsdam;;USC1;;Berg Fidel;1. Bundesliga Frauen;USC1", lines[2])
	assert.Empty(t, stdout.String())
}

func TestRun_JSONToStdout(t *testing.T) {
	opts := &options{dataDir: writeDataDir(t), format: "JSON", logLevel: "error"}
	var stdout, stderr bytes.Buffer
	code, err := run(context.Background(), opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), `"row_count": 2`)
	assert.Contains(t, stdout.String(), `"code": "USC-U13"`)
}

func TestRun_TeamFilter(t *testing.T) {
	opts := &options{dataDir: writeDataDir(t), format: "text", team: "USC2", logLevel: "error"}
	var stdout, stderr bytes.Buffer
	_, err := run(context.Background(), opts, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No matches found.")
}

func TestRun_InvalidFormat(t *testing.T) {
	opts := &options{format: "xml", logLevel: "warn"}
	code, err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Equal(t, ExitError, code)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	opts := &options{format: "text", logLevel: "loud"}
	code, err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Equal(t, ExitError, code)
}

func TestRun_Changes(t *testing.T) {
	dataDir := writeDataDir(t)
	snapDir := t.TempDir()
	opts := &options{dataDir: dataDir, format: "text", changes: true, snapshotDir: snapDir, logLevel: "error"}

	// Every row is new on the first run.
	var first bytes.Buffer
	code, err := run(context.Background(), opts, &first, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitChanges, code)
	assert.Contains(t, first.String(), "Changes since last run (2)")

	var second bytes.Buffer
	code, err = run(context.Background(), opts, &second, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.NotContains(t, second.String(), "Changes since last run")

	moved := strings.Replace(bundesligaCSV, "04.10.2025;18:00:00", "04.10.2025;19:30:00", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "csvdata", "Spielplan_1._Bundesliga_Frauen.csv"), []byte(moved), 0644))

	var third bytes.Buffer
	code, err = run(context.Background(), opts, &third, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitChanges, code)
	assert.Contains(t, third.String(), "time: 18:00 -> 19:30")
}

func TestRun_ChangesKeepSnapshotWithoutRows(t *testing.T) {
	dataDir := writeDataDir(t)
	source := filepath.Join(dataDir, "csvdata", "Spielplan_1._Bundesliga_Frauen.csv")
	opts := &options{dataDir: dataDir, format: "text", changes: true, snapshotDir: t.TempDir(), logLevel: "error"}

	code, err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitChanges, code)

	// Every source is skipped, the snapshot must survive
	require.NoError(t, os.Remove(source))
	var empty bytes.Buffer
	code, err = run(context.Background(), opts, &empty, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.NotContains(t, empty.String(), "Changes since last run")

	require.NoError(t, os.WriteFile(source, []byte(bundesligaCSV), 0644))
	var restored bytes.Buffer
	code, err = run(context.Background(), opts, &restored, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.NotContains(t, restored.String(), "Changes since last run")
}

func TestRun_UnknownTeam(t *testing.T) {
	opts := &options{dataDir: writeDataDir(t), format: "text", team: "USC9", logLevel: "error"}
	code, err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, err.Error(), "unknown team code")
}

func TestRun_SQLiteExport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spielplan.db")
	opts := &options{dataDir: writeDataDir(t), format: "text", sqlitePath: dbPath, logLevel: "error"}
	code, err := run(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)
	assert.FileExists(t, dbPath)
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config", "data-dir", "format", "output", "sqlite", "drop-undated", "team", "changes", "snapshot-dir", "verbose", "log-level"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
}
