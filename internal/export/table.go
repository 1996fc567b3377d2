// Package export renders analysis reports into the flat table layout the
// downstream MATLAB tooling expects, one row per (file, epoch).
package export

import (
	"fmt"
	"sort"
	"strconv"

	"WCSPull/internal/domain/models"
)

// Table is a rendered report grid ready for CSV or JSON serialisation.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// metricSuffixes are the per-combination columns, in output order.
var metricSuffixes = []string{"distance_m", "duration_s", "start_s", "end_s", "center_s"}

// BuildTable flattens reports into one row per (file, epoch). For each
// (method, threshold) combination present anywhere in the batch it emits
// the five metric columns; skipped combinations render as empty cells.
func BuildTable(reports []*models.Report) *Table {
	epochs, combos := collectAxes(reports)

	cols := []string{"file", "player", "epoch_min"}
	for _, c := range combos {
		for _, suffix := range metricSuffixes {
			cols = append(cols, fmt.Sprintf("%s_%s_%s", c.method, sanitise(c.label), suffix))
		}
	}

	t := &Table{Columns: cols}
	for _, rep := range reports {
		for _, epoch := range epochs {
			row := []string{rep.Source, rep.Player, formatFloat(epoch)}
			present := false
			for _, c := range combos {
				res, ok := rep.Lookup(c.method, epoch, c.label)
				if !ok || !res.Found {
					row = append(row, "", "", "", "", "")
					continue
				}
				present = true
				row = append(row,
					formatFloat(res.Distance),
					formatFloat(res.Duration),
					formatFloat(res.StartTime),
					formatFloat(res.EndTime),
					formatFloat(res.CenterTime),
				)
			}
			if present {
				t.Rows = append(t.Rows, row)
			}
		}
	}
	return t
}

// MaxEntry is one row of the cross-file summary: the single largest WCS
// distance seen for a (method, threshold, epoch) combination.
type MaxEntry struct {
	Method       models.Method `json:"method"`
	Threshold    string        `json:"threshold"`
	EpochMinutes float64       `json:"epoch_minutes"`
	Source       string        `json:"source"`
	Player       string        `json:"player,omitempty"`
	Distance     float64       `json:"distance_m"`
}

// BuildSummary returns the per-combination maxima across all reports,
// ordered by method, threshold, epoch.
func BuildSummary(reports []*models.Report) []MaxEntry {
	best := make(map[string]MaxEntry)
	for _, rep := range reports {
		for _, er := range rep.Results {
			if !er.WCS.Found {
				continue
			}
			key := fmt.Sprintf("%s|%s|%g", er.Method, er.Threshold, er.EpochMinutes)
			cur, ok := best[key]
			if !ok || er.WCS.Distance > cur.Distance {
				best[key] = MaxEntry{
					Method:       er.Method,
					Threshold:    er.Threshold,
					EpochMinutes: er.EpochMinutes,
					Source:       rep.Source,
					Player:       rep.Player,
					Distance:     er.WCS.Distance,
				}
			}
		}
	}

	out := make([]MaxEntry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		if out[i].Threshold != out[j].Threshold {
			return out[i].Threshold < out[j].Threshold
		}
		return out[i].EpochMinutes < out[j].EpochMinutes
	})
	return out
}

type combo struct {
	method models.Method
	label  string
}

// collectAxes gathers the distinct epochs and (method, threshold)
// combinations present in the batch, in stable order.
func collectAxes(reports []*models.Report) ([]float64, []combo) {
	epochSet := make(map[float64]struct{})
	comboSet := make(map[combo]struct{})
	for _, rep := range reports {
		for _, er := range rep.Results {
			epochSet[er.EpochMinutes] = struct{}{}
			comboSet[combo{er.Method, er.Threshold}] = struct{}{}
		}
	}

	epochs := make([]float64, 0, len(epochSet))
	for e := range epochSet {
		epochs = append(epochs, e)
	}
	sort.Float64s(epochs)

	combos := make([]combo, 0, len(comboSet))
	for c := range comboSet {
		combos = append(combos, c)
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].method != combos[j].method {
			return combos[i].method < combos[j].method
		}
		return combos[i].label < combos[j].label
	})
	return epochs, combos
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sanitise makes a threshold label usable inside a column name.
func sanitise(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
