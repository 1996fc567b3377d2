package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"WCSPull/internal/domain/models"
)

// WriteCSV streams the table in RFC 4180 form.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

// Bundle is the JSON export shape: the flat table, the cross-file
// maxima, and the full reports.
type Bundle struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Table       *Table           `json:"table"`
	Summary     []MaxEntry       `json:"summary"`
	Reports     []*models.Report `json:"reports"`
}

// WriteJSON serialises the full bundle.
func WriteJSON(w io.Writer, reports []*models.Report) error {
	b := Bundle{
		GeneratedAt: time.Now().UTC(),
		Table:       BuildTable(reports),
		Summary:     BuildSummary(reports),
		Reports:     reports,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

// Writer persists batch results into an output directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteBatch writes <id>_wcs.csv, <id>_summary.csv and <id>.json for one
// finished batch and returns the paths written.
func (w *Writer) WriteBatch(id string, reports []*models.Report) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	table := BuildTable(reports)
	paths := []string{
		filepath.Join(w.dir, id+"_wcs.csv"),
		filepath.Join(w.dir, id+"_summary.csv"),
		filepath.Join(w.dir, id+".json"),
	}

	if err := writeFile(paths[0], func(f io.Writer) error { return WriteCSV(f, table) }); err != nil {
		return nil, err
	}
	if err := writeFile(paths[1], func(f io.Writer) error {
		return WriteCSV(f, summaryTable(BuildSummary(reports)))
	}); err != nil {
		return nil, err
	}
	if err := writeFile(paths[2], func(f io.Writer) error { return WriteJSON(f, reports) }); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func summaryTable(entries []MaxEntry) *Table {
	t := &Table{Columns: []string{"method", "threshold", "epoch_min", "file", "player", "max_distance_m"}}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			string(e.Method), e.Threshold, formatFloat(e.EpochMinutes),
			e.Source, e.Player, formatFloat(e.Distance),
		})
	}
	return t
}
