package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"WCSPull/internal/domain/models"
)

func sampleReports() []*models.Report {
	res := func(m models.Method, epoch, dist float64) models.EpochResult {
		return models.EpochResult{
			EpochMinutes: epoch,
			Threshold:    "Default",
			Method:       m,
			WCS: models.WCSResult{
				Found: true, Distance: dist, Duration: epoch * 60,
				StartTime: 0, EndTime: epoch * 60, CenterTime: epoch * 30,
			},
		}
	}
	return []*models.Report{
		{
			Source: "a.csv", Player: "A",
			Results: []models.EpochResult{
				res(models.MethodRolling, 1, 300),
				res(models.MethodContiguous, 1, 280),
			},
		},
		{
			Source: "b.csv", Player: "B",
			Results: []models.EpochResult{
				res(models.MethodRolling, 1, 350),
				res(models.MethodContiguous, 1, 260),
				// oversized epoch: never emitted as a row value
				{EpochMinutes: 10, Threshold: "Default", Method: models.MethodRolling},
			},
		},
	}
}

func TestBuildTableLayout(t *testing.T) {
	table := BuildTable(sampleReports())

	want := []string{
		"file", "player", "epoch_min",
		"contiguous_Default_distance_m", "contiguous_Default_duration_s",
		"contiguous_Default_start_s", "contiguous_Default_end_s", "contiguous_Default_center_s",
		"rolling_Default_distance_m", "rolling_Default_duration_s",
		"rolling_Default_start_s", "rolling_Default_end_s", "rolling_Default_center_s",
	}
	if len(table.Columns) != len(want) {
		t.Fatalf("columns: got %v", table.Columns)
	}
	for i, c := range want {
		if table.Columns[i] != c {
			t.Fatalf("column %d: got %q want %q", i, table.Columns[i], c)
		}
	}

	// one row per (file, epoch) that produced any result: 2 files x 1 epoch
	// (the 10 min epoch has found=false everywhere and is dropped)
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(table.Rows))
	}
	if table.Rows[0][0] != "a.csv" || table.Rows[0][2] != "1" {
		t.Fatalf("first row: %v", table.Rows[0])
	}
}

func TestBuildSummaryMaxima(t *testing.T) {
	summary := BuildSummary(sampleReports())
	if len(summary) != 2 {
		t.Fatalf("got %d entries, want 2", len(summary))
	}
	// sorted: contiguous before rolling
	if summary[0].Method != models.MethodContiguous || summary[0].Source != "a.csv" || summary[0].Distance != 280 {
		t.Fatalf("contiguous max: %+v", summary[0])
	}
	if summary[1].Method != models.MethodRolling || summary[1].Source != "b.csv" || summary[1].Distance != 350 {
		t.Fatalf("rolling max: %+v", summary[1])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildTable(sampleReports())); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "file,player,epoch_min,") {
		t.Fatalf("header: %q", lines[0])
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReports()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var b Bundle
	if err := json.Unmarshal(buf.Bytes(), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(b.Reports) != 2 || len(b.Summary) != 2 || b.Table == nil {
		t.Fatalf("bundle: %+v", b)
	}
}

func TestWriterWriteBatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "out"))
	paths, err := w.WriteBatch("job1", sampleReports())
	if err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths: %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestSanitise(t *testing.T) {
	if got := sanitise("High-speed (5+)"); got != "High_speed__5__" {
		t.Fatalf("got %q", got)
	}
}
