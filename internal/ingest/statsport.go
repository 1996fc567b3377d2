package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	"WCSPull/internal/domain/models"
	"WCSPull/pkg/util"
)

// velocityHeaders are the column names StatSport exports have been seen
// to use for speed, in priority order. Leading/trailing spaces in real
// exports are handled by trimming before comparison.
var velocityHeaders = []string{"Speed m/s", "Velocity", "Speed"}

// readStatSport parses a StatSport export: a plain CSV with player
// metadata columns and one speed column.
func readStatSport(lines []string, source string) (*models.Session, error) {
	rec, err := csv.NewReader(strings.NewReader(strings.Join(lines, "\n"))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest %s: statsport csv: %w", source, err)
	}
	if len(rec) < 2 {
		return nil, fmt.Errorf("ingest %s: statsport file has no data rows", source)
	}

	header := rec[0]
	velIdx := findColumn(header, velocityHeaders...)
	if velIdx < 0 {
		return nil, fmt.Errorf("ingest %s: no velocity/speed column (columns: %s)", source, strings.Join(header, ", "))
	}
	playerIdx := findColumn(header, "Player Display Name")
	deviceIdx := findColumn(header, "Player Id")

	s := &models.Session{
		Source: source,
		Format: string(FormatStatSport),
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

		if s.Player == "" && playerIdx >= 0 && playerIdx < len(row) {
			s.Player = strings.TrimSpace(row[playerIdx])
		}
		if s.Device == "" && deviceIdx >= 0 && deviceIdx < len(row) {
			s.Device = strings.TrimSpace(row[deviceIdx])
		}
	}
	return s, nil
}

// findColumn locates the first header cell matching any candidate,
// comparing trimmed names case-insensitively.
func findColumn(header []string, candidates ...string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}
