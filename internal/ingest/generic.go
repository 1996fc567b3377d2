package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	"WCSPull/internal/domain/models"
	"WCSPull/pkg/util"
)

// readGeneric parses a plain Timestamp+Velocity CSV with no vendor
// metadata.
func readGeneric(lines []string, source string) (*models.Session, error) {
	rec, err := csv.NewReader(strings.NewReader(strings.Join(lines, "\n"))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest %s: csv: %w", source, err)
	}
	if len(rec) < 2 {
		return nil, fmt.Errorf("ingest %s: file has no data rows", source)
	}

	velIdx := findColumn(rec[0], velocityHeaders...)
	if velIdx < 0 {
		return nil, fmt.Errorf("ingest %s: no velocity/speed column (columns: %s)", source, strings.Join(rec[0], ", "))
	}

	s := &models.Session{
		Source: source,
		Format: string(FormatGeneric),
	}
	for rowNum, row := range rec[1:] {
		if velIdx >= len(row) {
			continue
		}
		v, ok := util.ParseFloat(row[velIdx])
		if !ok {
			return nil, fmt.Errorf("ingest %s: non-numeric velocity %q at row %d", source, row[velIdx], rowNum+2)
		}
		s.Velocity = append(s.Velocity, v)
	}
	return s, nil
}
