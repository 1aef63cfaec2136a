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

import (
	"math"

	"github.com/ctessum/sparse"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseMode selects which noise sources perturb the mean signal field.
type NoiseMode int

const (
	// NoiseNone returns the mean field unchanged.
	NoiseNone NoiseMode = iota
	// NoisePhotonOnly adds photon shot noise.
	NoisePhotonOnly
	// NoisePhotonElectronic adds photon shot noise plus electronic noise
	// (dark signal and read noise).
	NoisePhotonElectronic
)

func (m NoiseMode) String() string {
	switch m {
	case NoiseNone:
		return "none"
	case NoisePhotonOnly:
		return "photon"
	case NoisePhotonElectronic:
		return "photon+electronic"
	default:
		return "unknown"
	}
}

// NoiseModel perturbs a fully computed mean signal field [V]. Implementations
// must not modify the mean field in place.
type NoiseModel interface {
	Apply(mean *sparse.DenseArray, s *Sensor, mode NoiseMode) (*sparse.DenseArray, error)
}

// orchestrateNoise applies the sensor's noise mode to the mean signal field.
// The noise model is invoked exactly once per call, only after the mean field
// has been fully computed and clipped, and its result is passed through
// unchanged. An empty mean field aborts without invoking the model.
// defaultExposure is the nominal exposure [s] the radiometric stage
// substituted for a zero scalar integration time, so that a default model's
// dark-signal accumulation resolves the same effective exposure.
func orchestrateNoise(mean *sparse.DenseArray, s *Sensor, defaultExposure float64) (*sparse.DenseArray, error) {
	if mean == nil || len(mean.Elements) == 0 {
		return nil, computationErrorf("noise", "mean signal field is empty")
	}
	if s.NoiseMode == NoiseNone {
		return mean, nil
	}
	model := s.NoiseModel
	if model == nil {
		model = &ShotReadNoise{DefaultExposure: defaultExposure}
	}
	return model.Apply(mean, s, s.NoiseMode)
}

// ShotReadNoise is the default noise model: Poisson photon shot noise in
// electron units, and for NoisePhotonElectronic additionally dark-signal
// accumulation and Gaussian read noise.
type ShotReadNoise struct {
	DarkVoltage float64 // dark signal accumulation rate [V/s]
	ReadNoise   float64 // read noise standard deviation [V]

	// DefaultExposure replaces a zero scalar integration time [s] when
	// accumulating dark signal; zero selects DefaultIntegrationTime. It must
	// match the default the radiometric stage used so the two stages resolve
	// the same effective exposure.
	DefaultExposure float64

	// Src is the random number source; nil uses the shared global source.
	// Supplying a seeded source makes realizations reproducible.
	Src rand.Source
}

// gaussApproxThreshold is the Poisson mean above which a Gaussian
// approximation replaces exact Poisson sampling.
const gaussApproxThreshold = 25

// poissonElectrons draws a sample with mean λ electrons.
func (n *ShotReadNoise) poissonElectrons(λ float64) float64 {
	if λ <= 0 {
		return 0
	}
	if λ < gaussApproxThreshold {
		return distuv.Poisson{Lambda: λ, Src: n.Src}.Rand()
	}
	e := math.Round(distuv.Normal{Mu: λ, Sigma: math.Sqrt(λ), Src: n.Src}.Rand())
	return math.Max(e, 0)
}

// Apply perturbs the mean field [V]. Shot noise is sampled in electron units
// using the sensor's conversion gain; dark signal is added to the Poisson mean
// before sampling so that it carries shot noise of its own; read noise is
// added in volts afterwards. The realization is clipped to the sensor's
// output range.
func (n *ShotReadNoise) Apply(mean *sparse.DenseArray, s *Sensor, mode NoiseMode) (*sparse.DenseArray, error) {
	out := mean.Copy()
	nframes := 1
	if len(mean.Shape) == 3 {
		nframes = mean.Shape[2]
	}
	times := effectiveExposures(s, n.DefaultExposure)

	gauss := distuv.Normal{Mu: 0, Sigma: 1, Src: n.Src}
	for idx, v := range mean.Elements {
		λ := v / s.ConversionGain // mean electron count
		if mode == NoisePhotonElectronic && n.DarkVoltage > 0 {
			λ += n.DarkVoltage * times[idx%nframes] / s.ConversionGain
		}
		v = n.poissonElectrons(λ) * s.ConversionGain
		if mode == NoisePhotonElectronic && n.ReadNoise > 0 {
			v += gauss.Rand() * n.ReadNoise
		}
		if v < 0 {
			v = 0
		}
		if s.VoltageSwing > 0 && v > s.VoltageSwing {
			v = s.VoltageSwing
		}
		out.Elements[idx] = v
	}
	return out, nil
}
