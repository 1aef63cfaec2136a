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
)

// waveTolerance is the maximum difference [nm] below which two wavelength
// samples are considered equal.
const waveTolerance = 1.e-9

// OpticalImage is the spectral irradiance field produced by an upstream optics
// model, sampled on its own spatial grid at the sensor plane.
type OpticalImage struct {
	// Photons is the spectral photon irradiance with shape
	// [rows, cols, len(Wavelengths)] [photons/m²/nm/s].
	Photons *sparse.DenseArray

	Wavelengths []float64 // sample wavelengths [nm], ascending, uniformly spaced
	BinWidth    float64   // wavelength bin width [nm]

	// SampleSpacing is the center-to-center distance between adjacent spatial
	// samples, projected onto the sensor plane [m].
	SampleSpacing float64
}

// check validates the field shape and sampling invariants.
func (oi *OpticalImage) check() error {
	if oi == nil || oi.Photons == nil || len(oi.Photons.Elements) == 0 {
		return missingDataErrorf("optical image has no photon irradiance data")
	}
	if len(oi.Photons.Shape) != 3 {
		return configErrorf("photon field must have shape [rows, cols, wavelengths] but has %d dimensions", len(oi.Photons.Shape))
	}
	if n := oi.Photons.Shape[2]; n != len(oi.Wavelengths) {
		return configErrorf("photon field has %d wavelength layers but %d sample wavelengths", n, len(oi.Wavelengths))
	}
	if oi.BinWidth <= 0 {
		return configErrorf("wavelength bin width must be positive but is %g", oi.BinWidth)
	}
	if oi.SampleSpacing <= 0 {
		return configErrorf("optical sample spacing must be positive but is %g", oi.SampleSpacing)
	}
	for i := 1; i < len(oi.Wavelengths); i++ {
		if oi.Wavelengths[i] <= oi.Wavelengths[i-1] {
			return configErrorf("wavelengths must be ascending: λ[%d]=%g, λ[%d]=%g",
				i-1, oi.Wavelengths[i-1], i, oi.Wavelengths[i])
		}
	}
	if len(oi.Wavelengths) > 2 {
		d0 := oi.Wavelengths[1] - oi.Wavelengths[0]
		for i := 2; i < len(oi.Wavelengths); i++ {
			if d := oi.Wavelengths[i] - oi.Wavelengths[i-1]; math.Abs(d-d0) > waveTolerance {
				return configErrorf("wavelength spacing is not uniform: %g at index 1, %g at index %d", d0, d, i)
			}
		}
	}
	return nil
}

// sameWavelengths reports whether two wavelength sequences are elementwise
// equal within waveTolerance.
func sameWavelengths(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > waveTolerance {
			return false
		}
	}
	return true
}
