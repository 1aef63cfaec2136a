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

// DefaultIntegrationTime is the nominal exposure [s] substituted when a scalar
// integration time of zero is configured, which arises when an auto-exposure
// routine upstream has not yet chosen an exposure. It is a documented fallback,
// not an error.
const DefaultIntegrationTime = 0.01

// RadiometricConverter scales the area-integrated photodetector current [A]
// to output voltage, applying exposure time, conversion gain, vignetting
// correction, analog gain and offset, and clipping.
type RadiometricConverter struct {
	// Charge is the elementary charge [C]; zero selects ElementaryCharge. It
	// must match the charge constant used for current density estimation so
	// that the two cancel exactly.
	Charge float64

	// DefaultExposure replaces a zero scalar integration time [s]; zero
	// selects DefaultIntegrationTime.
	DefaultExposure float64
}

// effectiveExposures returns the per-frame integration times, substituting
// def (or DefaultIntegrationTime when def is zero) for the zero-scalar
// auto-exposure case.
func effectiveExposures(s *Sensor, def float64) []float64 {
	times := s.IntegrationTimes
	if len(times) == 1 && times[0] == 0 {
		if def == 0 {
			def = DefaultIntegrationTime
		}
		return []float64{def}
	}
	return times
}

// selectChannel collapses the per-channel current field [rows, cols, channels]
// to one value per pixel using the sensor's mosaic pattern; a single-channel
// sensor needs no pattern.
func selectChannel(current *sparse.DenseArray, s *Sensor) *sparse.DenseArray {
	rows, cols, nchan := current.Shape[0], current.Shape[1], current.Shape[2]
	out := sparse.ZerosDense(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			ch := 0
			if nchan > 1 {
				ch = s.Pattern.Get(i, j)
			}
			out.Set(current.Get(i, j, ch), i, j)
		}
	}
	return out
}

// Convert computes the mean (noise-free) signal field [V] from the
// area-integrated photodetector current [A]. The output has shape
// [rows, cols] for a single exposure or [rows, cols, frames] when the sensor
// integrates multiple exposure frames, each frame scaled by its own
// integration time. Negative values are clipped to zero and, when the sensor
// has a positive voltage swing, values are clipped to it.
func (rc *RadiometricConverter) Convert(current *sparse.DenseArray, s *Sensor) (*sparse.DenseArray, error) {
	if current == nil || len(current.Elements) == 0 {
		return nil, computationErrorf("radiometric conversion", "no photodetector current to convert")
	}
	q := rc.Charge
	if q == 0 {
		q = ElementaryCharge
	}

	pixels := selectChannel(current, s)
	rows, cols := pixels.Shape[0], pixels.Shape[1]
	times := effectiveExposures(s, rc.DefaultExposure)
	nframes := len(times)

	var volts *sparse.DenseArray
	if nframes == 1 {
		volts = sparse.ZerosDense(rows, cols)
	} else {
		volts = sparse.ZerosDense(rows, cols, nframes)
	}

	gain := s.AnalogGain
	if gain == 0 {
		gain = 1
	}
	for f, t := range times {
		// current [A] × time [s] / charge [C] = electrons; × conversion
		// gain [V/e⁻] = volts.
		k := t * s.ConversionGain / q
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := pixels.Get(i, j) * k
				if s.Vignetting != nil {
					v *= s.Vignetting.Get(i, j)
				}
				v = (v + s.AnalogOffset) / gain
				if v < 0 {
					v = 0
				}
				if s.VoltageSwing > 0 && v > s.VoltageSwing {
					v = s.VoltageSwing
				}
				if nframes == 1 {
					volts.Set(v, i, j)
				} else {
					volts.Set(v, i, j, f)
				}
			}
		}
	}
	return volts, nil
}
