package models

import (
	"fmt"
	"time"
)

// Signal selects which series a threshold is evaluated against.
type Signal string

const (
	SignalVelocity     Signal = "velocity"
	SignalAcceleration Signal = "acceleration" // evaluated on |a|
)

// TieBreak controls which window wins when two windows accumulate the
// same distance in a rolling search.
type TieBreak string

const (
	TieEarliest TieBreak = "earliest"
	TieLatest   TieBreak = "latest"
)

// ThresholdSpec is a named inclusion range for one signal. Samples whose
// control value falls outside [Min, Max] are zeroed before the search.
type ThresholdSpec struct {
	Label  string  `json:"label" yaml:"label"`
	Signal Signal  `json:"signal" yaml:"signal"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// Validate rejects inverted ranges and unknown signals before any
// computation starts.
func (t ThresholdSpec) Validate() error {
	if t.Label == "" {
		return fmt.Errorf("threshold label must not be empty")
	}
	if t.Min > t.Max {
		return fmt.Errorf("threshold %q: min %g > max %g", t.Label, t.Min, t.Max)
	}
	switch t.Signal {
	case SignalVelocity, SignalAcceleration, "":
	default:
		return fmt.Errorf("threshold %q: unknown signal %q", t.Label, t.Signal)
	}
	return nil
}

// Params carries every setting one analysis run needs. There is no
// ambient configuration: concurrent runs with different Params cannot
// interfere.
type Params struct {
	SamplingRate float64         `json:"sampling_rate"`
	Epochs       []float64       `json:"epochs_minutes"`
	Thresholds   []ThresholdSpec `json:"thresholds"`
	TieBreak     TieBreak        `json:"tie_break,omitempty"`
	KeepProfile  bool            `json:"keep_profile,omitempty"` // include full kinematic arrays in the report
}

// Validate checks the configuration contract: positive rate and epochs,
// well-formed thresholds.
func (p Params) Validate() error {
	if p.SamplingRate <= 0 {
		return fmt.Errorf("sampling rate must be positive, got %g", p.SamplingRate)
	}
	if len(p.Epochs) == 0 {
		return fmt.Errorf("at least one epoch duration is required")
	}
	for _, e := range p.Epochs {
		if e <= 0 {
			return fmt.Errorf("epoch duration must be positive, got %g", e)
		}
	}
	if len(p.Thresholds) == 0 {
		return fmt.Errorf("at least one threshold spec is required")
	}
	seen := make(map[string]struct{}, len(p.Thresholds))
	for _, t := range p.Thresholds {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.Label]; dup {
			return fmt.Errorf("duplicate threshold label %q", t.Label)
		}
		seen[t.Label] = struct{}{}
	}
	switch p.TieBreak {
	case "", TieEarliest, TieLatest:
	default:
		return fmt.Errorf("unknown tie break %q", p.TieBreak)
	}
	return nil
}

// KinematicProfile holds the derived arrays, each aligned index-for-index
// with the source velocity series.
type KinematicProfile struct {
	Time               []float64 `json:"time_s"`
	Velocity           []float64 `json:"velocity_ms"`
	VelocitySmooth     []float64 `json:"velocity_smooth_ms"`
	Acceleration       []float64 `json:"acceleration_ms2"`
	AccelerationSmooth []float64 `json:"acceleration_smooth_ms2"`
	Deceleration       []float64 `json:"deceleration_ms2"`
	Jerk               []float64 `json:"jerk_ms3"`
	Power              []float64 `json:"power_wkg"`
	Distance           []float64 `json:"distance_m"` // cumulative
}

// SignalStats summarises one derived signal.
type SignalStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Std  float64 `json:"std"`
}

// Report is the result bundle for one analysed session.
type Report struct {
	SessionID         string            `json:"session_id"`
	Source            string            `json:"source"`
	Player            string            `json:"player,omitempty"`
	Format            string            `json:"format,omitempty"`
	SamplingRate      float64           `json:"sampling_rate"`
	Samples           int               `json:"samples"`
	Duration          float64           `json:"duration_s"`
	TotalDistance     float64           `json:"total_distance_m"`
	VelocityStats     SignalStats       `json:"velocity_stats"`
	AccelerationStats SignalStats       `json:"acceleration_stats"`
	PowerStats        SignalStats       `json:"power_stats"`
	Results           []EpochResult     `json:"results"`
	Profile           *KinematicProfile `json:"profile,omitempty"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// Lookup returns the result for one (method, epoch, threshold label)
// combination, or false if that combination was skipped.
func (r *Report) Lookup(method Method, epochMinutes float64, label string) (WCSResult, bool) {
	for _, er := range r.Results {
		if er.Method == method && er.EpochMinutes == epochMinutes && er.Threshold == label {
			return er.WCS, true
		}
	}
	return WCSResult{}, false
}
