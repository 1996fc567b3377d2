package models

import (
	"fmt"
	"math"
)

// Session is one ingested GPS velocity trace, uniformly sampled.
// The velocity slice is treated as immutable after ingestion: analysis
// code must copy before masking or transforming it.
type Session struct {
	ID           string
	Source       string // file name or URL the trace came from
	Format       string // "statsport", "catapult", "generic"
	Player       string
	Device       string
	Period       string
	SamplingRate float64   // Hz
	Velocity     []float64 // m/s
}

// Duration returns the total trace duration in seconds.
func (s *Session) Duration() float64 {
	if s.SamplingRate <= 0 {
		return 0
	}
	return float64(len(s.Velocity)) / s.SamplingRate
}

// Validate checks the ingestion contract: a non-empty, finite,
// non-negative velocity series with a positive sampling rate.
func (s *Session) Validate() error {
	if s.SamplingRate <= 0 {
		return fmt.Errorf("session %s: sampling rate must be positive, got %g", s.Source, s.SamplingRate)
	}
	if len(s.Velocity) == 0 {
		return fmt.Errorf("session %s: empty velocity series", s.Source)
	}
	for i, v := range s.Velocity {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("session %s: non-finite velocity at sample %d", s.Source, i)
		}
		if v < 0 {
			return fmt.Errorf("session %s: negative velocity %g at sample %d", s.Source, v, i)
		}
	}
	return nil
}
