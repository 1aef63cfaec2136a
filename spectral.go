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
	"fmt"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/interp"
)

// SpectralResponse holds per-channel quantum efficiency curves sampled at a
// common wavelength sequence.
type SpectralResponse struct {
	Wavelengths []float64 // sample wavelengths [nm], ascending

	// Curves holds the quantum efficiency [fraction] with shape
	// [len(Wavelengths), channels].
	Curves *sparse.DenseArray
}

// check validates the curve shape invariants.
func (r SpectralResponse) check() error {
	if r.Curves == nil || len(r.Curves.Elements) == 0 {
		return configErrorf("spectral response has no quantum efficiency data")
	}
	if len(r.Curves.Shape) != 2 {
		return configErrorf("quantum efficiency must have shape [wavelengths, channels] but has %d dimensions", len(r.Curves.Shape))
	}
	if r.Curves.Shape[0] != len(r.Wavelengths) {
		return configErrorf("quantum efficiency has %d wavelength samples but %d sample wavelengths",
			r.Curves.Shape[0], len(r.Wavelengths))
	}
	if r.Curves.Shape[1] < 1 {
		return configErrorf("spectral response must have at least one channel")
	}
	for i := 1; i < len(r.Wavelengths); i++ {
		if r.Wavelengths[i] <= r.Wavelengths[i-1] {
			return configErrorf("spectral response wavelengths must be ascending: λ[%d]=%g, λ[%d]=%g",
				i-1, r.Wavelengths[i-1], i, r.Wavelengths[i])
		}
	}
	return nil
}

// Align resamples the response onto the wavelength sequence wave [nm]. If the
// sequences already match, the response is returned unchanged. Otherwise each
// channel's curve is linearly interpolated onto wave; query wavelengths outside
// the response's own domain are assigned zero efficiency (no extrapolation).
// A single-sample response whose wavelength does not match wave cannot be
// resolved and is a configuration error.
func (r SpectralResponse) Align(wave []float64) (SpectralResponse, error) {
	if err := r.check(); err != nil {
		return SpectralResponse{}, err
	}
	if sameWavelengths(r.Wavelengths, wave) {
		return r, nil
	}
	if len(r.Wavelengths) == 1 {
		return SpectralResponse{}, configErrorf(
			"single-sample spectral response at %g nm does not match the optical image sampling",
			r.Wavelengths[0])
	}

	nchan := r.Curves.Shape[1]
	out := sparse.ZerosDense(len(wave), nchan)
	curve := make([]float64, len(r.Wavelengths))
	lo, hi := r.Wavelengths[0], r.Wavelengths[len(r.Wavelengths)-1]
	for ch := 0; ch < nchan; ch++ {
		for k := range curve {
			curve[k] = r.Curves.Get(k, ch)
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(r.Wavelengths, curve); err != nil {
			return SpectralResponse{}, fmt.Errorf("sensim: fitting quantum efficiency curve for channel %d: %w", ch, err)
		}
		for i, λ := range wave {
			if λ < lo || λ > hi {
				continue // outside the measured domain: zero efficiency
			}
			out.Set(pl.Predict(λ), i, ch)
		}
	}
	return SpectralResponse{Wavelengths: wave, Curves: out}, nil
}
