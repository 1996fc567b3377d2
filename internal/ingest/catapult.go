package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	"WCSPull/internal/domain/models"
	"WCSPull/pkg/util"
)

// readCatapult parses an OpenField export: '#'-prefixed metadata lines
// followed by a normal CSV block starting at the Timestamp header.
func readCatapult(lines []string, source string) (*models.Session, error) {
	s := &models.Session{
		Source: source,
		Format: string(FormatCatapult),
	}

	dataStart := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			parseCatapultMeta(s, line)
			continue
		}
		if strings.Contains(line, "Timestamp") && strings.Contains(line, ",") {
			dataStart = i
			break
		}
	}
	if dataStart < 0 {
		return nil, fmt.Errorf("ingest %s: catapult file has no Timestamp header", source)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[dataStart:], "\n")))
	reader.FieldsPerRecord = -1 // OpenField rows occasionally vary in width
	rec, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest %s: catapult csv: %w", source, err)
	}
	if len(rec) < 2 {
		return nil, fmt.Errorf("ingest %s: catapult file has no data rows", source)
	}

	velIdx := findColumn(rec[0], "Velocity", "Speed m/s", "Speed")
	if velIdx < 0 {
		return nil, fmt.Errorf("ingest %s: no velocity column (columns: %s)", source, strings.Join(rec[0], ", "))
	}

	for rowNum, row := range rec[1:] {
		if velIdx >= len(row) {
			continue
		}
		v, ok := util.ParseFloat(row[velIdx])
		if !ok {
			return nil, fmt.Errorf("ingest %s: non-numeric velocity %q at row %d", source, row[velIdx], dataStart+rowNum+2)
		}
		s.Velocity = append(s.Velocity, v)
	}
	return s, nil
}

// parseCatapultMeta extracts athlete/device/period fields from one
// '#' metadata line. Quoted values win over the raw remainder.
func parseCatapultMeta(s *models.Session, line string) {
	value := func() string {
		if i := strings.Index(line, `"`); i >= 0 {
			rest := line[i+1:]
			if j := strings.Index(rest, `"`); j >= 0 {
				return rest[:j]
			}
		}
		if i := strings.Index(line, ":"); i >= 0 {
			return strings.TrimSpace(line[i+1:])
		}
		return ""
	}

	switch {
	case strings.Contains(line, "Athlete:"):
		s.Player = value()
	case strings.Contains(line, "DeviceId:"):
		s.Device = value()
	case strings.Contains(line, "Period:"):
		s.Period = value()
	}
}
