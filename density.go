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
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/mat"
)

// ElementaryCharge is the charge of one electron [C].
const ElementaryCharge = 1.602176634e-19

// DefaultBulkThreshold is the default maximum flattened element count
// (rows × cols × wavelengths) for which the matrix-multiply estimation strategy
// is used; larger fields fall back to the memory-bounded per-wavelength
// accumulation strategy.
const DefaultBulkThreshold = 1 << 26

// densityStrategy converts a photon irradiance field [photons/m²/nm/s] with
// shape [rows, cols, λ] into a per-channel photon flux density field
// [photons/m²/s] with shape [rows, cols, channels], given per-bin channel
// weights (quantum efficiency × bin width) with shape [λ, channels]. The two
// implementations are algorithmically equivalent; both accumulate wavelength
// contributions in ascending λ order, so their results match element for
// element up to floating-point summation order.
type densityStrategy interface {
	estimate(photons, weights *sparse.DenseArray) *sparse.DenseArray
}

// bulkStrategy flattens the spatial dimensions and computes the spectral
// integration as a single [rows×cols, λ] × [λ, channels] matrix product.
type bulkStrategy struct{}

func (bulkStrategy) estimate(photons, weights *sparse.DenseArray) *sparse.DenseArray {
	rows, cols, nwave := photons.Shape[0], photons.Shape[1], photons.Shape[2]
	nchan := weights.Shape[1]
	// The row-major element layout of a [rows, cols, λ] array is exactly the
	// [rows×cols, λ] matrix, so no copy is needed.
	p := mat.NewDense(rows*cols, nwave, photons.Elements)
	w := mat.NewDense(nwave, nchan, weights.Elements)
	prod := mat.NewDense(rows*cols, nchan, nil)
	prod.Mul(p, w)

	out := sparse.ZerosDense(rows, cols, nchan)
	copy(out.Elements, prod.RawMatrix().Data)
	return out
}

// accumStrategy integrates one wavelength layer at a time, keeping only the
// running per-channel sums in memory.
type accumStrategy struct{}

func (accumStrategy) estimate(photons, weights *sparse.DenseArray) *sparse.DenseArray {
	rows, cols, nwave := photons.Shape[0], photons.Shape[1], photons.Shape[2]
	nchan := weights.Shape[1]
	out := sparse.ZerosDense(rows, cols, nchan)
	for k := 0; k < nwave; k++ {
		for ch := 0; ch < nchan; ch++ {
			w := weights.Elements[k*nchan+ch]
			if w == 0 {
				continue
			}
			for rc := 0; rc < rows*cols; rc++ {
				out.Elements[rc*nchan+ch] += photons.Elements[rc*nwave+k] * w
			}
		}
	}
	return out
}

// CurrentDensityEstimator converts a spectral photon irradiance field into a
// per-channel current density field.
type CurrentDensityEstimator struct {
	// Charge is the elementary charge [C] used to convert photon counts to
	// charge; zero selects ElementaryCharge.
	Charge float64

	// BulkThreshold is the flattened element count above which the
	// per-wavelength accumulation strategy replaces the matrix-multiply
	// strategy; zero selects DefaultBulkThreshold.
	BulkThreshold int
}

// strategy selects the execution strategy for a field of n flattened elements.
func (e *CurrentDensityEstimator) strategy(n int) densityStrategy {
	threshold := e.BulkThreshold
	if threshold == 0 {
		threshold = DefaultBulkThreshold
	}
	if n > threshold {
		return accumStrategy{}
	}
	return bulkStrategy{}
}

// Estimate computes the current density field [A/m²] with shape
// [rows, cols, channels] from the optical image and a spectral response that
// has already been aligned onto the image's wavelength sampling. Each channel's
// value is the quantum-efficiency-weighted integral of the photon irradiance
// over wavelength, multiplied by the elementary charge.
func (e *CurrentDensityEstimator) Estimate(oi *OpticalImage, aligned SpectralResponse) (*sparse.DenseArray, error) {
	if err := oi.check(); err != nil {
		return nil, err
	}
	if err := aligned.check(); err != nil {
		return nil, err
	}
	if !sameWavelengths(aligned.Wavelengths, oi.Wavelengths) {
		return nil, configErrorf("spectral response is not aligned to the optical image wavelength sampling")
	}

	// Per-bin weighting: quantum efficiency [fraction] × bin width [nm]
	// converts the per-nm photon density to a per-bin photon count.
	weights := aligned.Curves.ScaleCopy(oi.BinWidth)

	q := e.Charge
	if q == 0 {
		q = ElementaryCharge
	}
	density := e.strategy(len(oi.Photons.Elements)).estimate(oi.Photons, weights)
	density.Scale(q) // photons/m²/s → A/m²
	return density, nil
}
