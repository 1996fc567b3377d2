// Package ingest reads GPS velocity exports (StatSport, Catapult and
// generic CSV) into sessions the analysis layer can consume.
package ingest

import "strings"

// Format identifies a supported export layout.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatStatSport Format = "statsport"
	FormatCatapult  Format = "catapult"
	FormatGeneric   Format = "generic"
	FormatUnknown   Format = "unknown"
)

// DetectFormat inspects the leading lines of a file and returns the
// matched format with a confidence score.
func DetectFormat(lines []string) (Format, float64) {
	head := lines
	if len(head) > 10 {
		head = head[:10]
	}

	for _, line := range firstN(head, 3) {
		if strings.Contains(line, "Player Id") && strings.Contains(line, "Player Display Name") {
			return FormatStatSport, 0.95
		}
	}

	hasMeta := false
	for _, line := range head {
		if strings.HasPrefix(line, "#") {
			hasMeta = true
			break
		}
	}
	if hasMeta {
		for _, line := range head {
			if strings.Contains(line, "OpenField Export") || strings.Contains(line, "Athlete:") {
				return FormatCatapult, 0.90
			}
		}
		return FormatCatapult, 0.85
	}

	for _, line := range firstN(head, 3) {
		if strings.Contains(line, "Timestamp") && (strings.Contains(line, "Velocity") || strings.Contains(line, "Speed")) {
			return FormatGeneric, 0.80
		}
	}

	return FormatUnknown, 0
}

func firstN(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
