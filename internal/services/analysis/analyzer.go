// Package analysis sequences kinematics, threshold masking and WCS
// searches for one session.
package analysis

import (
	"context"
	"fmt"
	"time"

	"WCSPull/internal/domain/models"
	"WCSPull/internal/services/kinematics"
	"WCSPull/internal/services/threshold"
	"WCSPull/internal/services/wcs"
)

// Analyzer is a pure orchestrator: all settings arrive in Params, no
// state survives between runs.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze produces the full result bundle for one session. Kinematics
// are computed once from the unthresholded series; each threshold spec
// masks a fresh copy of the original; each (epoch, threshold) pair is
// searched independently with both methods. Epochs longer than the
// series are recorded as absent without aborting siblings. An invalid
// session or Params aborts the whole run.
func (a *Analyzer) Analyze(ctx context.Context, s *models.Session, p models.Params) (*models.Report, error) {
	if s == nil {
		return nil, fmt.Errorf("analysis: nil session")
	}
	if p.SamplingRate <= 0 {
		p.SamplingRate = s.SamplingRate
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("analysis params: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("analysis input: %w", err)
	}

	profile := kinematics.Profile(s.Velocity, p.SamplingRate)
	engine := wcs.NewEngine(wcs.WithTieBreak(p.TieBreak))

	report := &models.Report{
		SessionID:         s.ID,
		Source:            s.Source,
		Player:            s.Player,
		Format:            s.Format,
		SamplingRate:      p.SamplingRate,
		Samples:           len(s.Velocity),
		Duration:          float64(len(s.Velocity)) / p.SamplingRate,
		TotalDistance:     profile.Distance[len(profile.Distance)-1],
		VelocityStats:     kinematics.Stats(profile.Velocity),
		AccelerationStats: kinematics.Stats(profile.Acceleration),
		PowerStats:        kinematics.Stats(profile.Power),
		Results:           make([]models.EpochResult, 0, 2*len(p.Epochs)*len(p.Thresholds)),
		GeneratedAt:       time.Now(),
	}
	if p.KeepProfile {
		report.Profile = profile
	}

	for _, spec := range p.Thresholds {
		masked, err := a.mask(s.Velocity, profile.Acceleration, spec)
		if err != nil {
			return nil, err
		}

		for _, epoch := range p.Epochs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report.Results = append(report.Results,
				models.EpochResult{
					EpochMinutes: epoch,
					Threshold:    spec.Label,
					Method:       models.MethodRolling,
					WCS:          engine.Rolling(masked, epoch, p.SamplingRate),
				},
				models.EpochResult{
					EpochMinutes: epoch,
					Threshold:    spec.Label,
					Method:       models.MethodContiguous,
					WCS:          engine.Contiguous(masked, epoch, p.SamplingRate),
				},
			)
		}
	}

	return report, nil
}

// mask always thresholds from the pristine original velocity series.
// Velocity thresholds use the series itself as control; acceleration
// thresholds use |a| computed once from the unthresholded series.
func (a *Analyzer) mask(velocity, acceleration []float64, spec models.ThresholdSpec) ([]float64, error) {
	rng := threshold.Range{Min: spec.Min, Max: spec.Max}
	if spec.Signal == models.SignalAcceleration {
		masked, err := threshold.Apply(velocity, threshold.Abs(acceleration), rng)
		if err != nil {
			return nil, fmt.Errorf("threshold %q: %w", spec.Label, err)
		}
		return masked, nil
	}
	return threshold.ApplyVelocity(velocity, rng), nil
}
