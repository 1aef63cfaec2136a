/*
Copyright © 2025 the sensim authors.
This file is part of sensim.

sensim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

sensim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with sensim.  If not, see <http://www.gnu.org/licenses/>.
*/

package sensim

import "github.com/ctessum/sparse"

// ProgressFunc observes pipeline progress. It is called at defined milestones
// with a monotonically increasing fraction in [0, 1]. It must not alter
// computed values; it exists for reporting only.
type ProgressFunc func(fraction float64)

// Progress milestones [fraction of total work].
const (
	progressDensity = 0.0 // current density estimation starting
	progressSpatial = 0.4 // spatial integration starting
	progressNoise   = 0.9 // noise stage starting
	progressDone    = 1.0
)

// Simulator computes sensor signal fields from optical images. The zero value
// uses the standard physical constants and strategy threshold; fields override
// them for testing or nonstandard sensors. A Simulator is stateless between
// calls and safe for concurrent use on independent image/sensor pairs.
type Simulator struct {
	// Charge is the elementary charge [C]; zero selects ElementaryCharge.
	Charge float64

	// DefaultExposure is the nominal exposure substituted for a zero scalar
	// integration time [s]; zero selects DefaultIntegrationTime.
	DefaultExposure float64

	// BulkThreshold is the flattened element count above which current
	// density estimation switches to the memory-bounded per-wavelength
	// strategy; zero selects DefaultBulkThreshold.
	BulkThreshold int

	// Progress, if non-nil, is called at pipeline milestones.
	Progress ProgressFunc
}

func (sim *Simulator) progress(fraction float64) {
	if sim.Progress != nil {
		sim.Progress(fraction)
	}
}

// ComputeMeanSignal runs the transduction pipeline without noise, returning
// the mean signal field [V] with shape [rows, cols] or [rows, cols, frames].
func (sim *Simulator) ComputeMeanSignal(oi *OpticalImage, s *Sensor) (*sparse.DenseArray, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := oi.check(); err != nil {
		return nil, err
	}

	aligned, err := s.QE.Align(oi.Wavelengths)
	if err != nil {
		return nil, err
	}

	sim.progress(progressDensity)
	estimator := &CurrentDensityEstimator{Charge: sim.Charge, BulkThreshold: sim.BulkThreshold}
	density, err := estimator.Estimate(oi, aligned)
	if err != nil {
		return nil, err
	}

	sim.progress(progressSpatial)
	n := s.Oversample
	registered, err := NewRegistration(oi, s, n).Resample(density)
	if err != nil {
		return nil, err
	}
	weighted := ApertureWeight(registered, ApertureTile(s))
	current := FilterDecimate(weighted, n, s.pixelArea())

	converter := &RadiometricConverter{Charge: sim.Charge, DefaultExposure: sim.DefaultExposure}
	return converter.Convert(current, s)
}

// ComputeSignal runs the full transduction pipeline: the mean signal field is
// computed first, then the sensor's noise mode is applied. It either returns a
// fully populated signal field [V] or fails with a typed error; it never
// returns a partially computed field.
func (sim *Simulator) ComputeSignal(oi *OpticalImage, s *Sensor) (*sparse.DenseArray, error) {
	mean, err := sim.ComputeMeanSignal(oi, s)
	if err != nil {
		return nil, err
	}
	sim.progress(progressNoise)
	signal, err := orchestrateNoise(mean, s, sim.DefaultExposure)
	if err != nil {
		return nil, err
	}
	sim.progress(progressDone)
	return signal, nil
}

// ComputeSignal runs the transduction pipeline with default settings.
func ComputeSignal(oi *OpticalImage, s *Sensor) (*sparse.DenseArray, error) {
	return new(Simulator).ComputeSignal(oi, s)
}
