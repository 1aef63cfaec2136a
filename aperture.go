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

// ApertureTile returns the [N, N] per-subcell sensitivity tile for one pixel,
// where N is the sensor's oversampling factor. If the sensor carries an
// explicit aperture mask it is used directly; otherwise the tile is the
// fractional overlap of each subcell with a centered square photodetector
// whose area is FillFactor of the pixel. The tile mean equals the fill factor,
// and for N=1 it degenerates to the single scalar FillFactor.
func ApertureTile(s *Sensor) *sparse.DenseArray {
	if s.Aperture != nil {
		return s.Aperture.Copy()
	}
	n := s.Oversample
	tile := sparse.ZerosDense(n, n)
	// Detector square side length in unit-pixel coordinates.
	h := math.Sqrt(s.FillFactor)
	lo, hi := (1-h)/2, (1+h)/2
	overlap := make([]float64, n) // 1-D subcell overlap, same in x and y
	for k := 0; k < n; k++ {
		a := math.Max(float64(k)/float64(n), lo)
		b := math.Min(float64(k+1)/float64(n), hi)
		overlap[k] = math.Max(b-a, 0)
	}
	nn := float64(n * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// Overlap area relative to the subcell's own area 1/N².
			tile.Set(overlap[i]*overlap[j]*nn, i, j)
		}
	}
	return tile
}

// ApertureWeight multiplies the registered field elementwise by the aperture
// sensitivity tile, replicated across the full array. The output has the same
// shape as the input with values scaled by the local aperture fraction ∈ [0,1].
func ApertureWeight(field, tile *sparse.DenseArray) *sparse.DenseArray {
	n := tile.Shape[0]
	out := field.Copy()
	rows, cols, nchan := out.Shape[0], out.Shape[1], out.Shape[2]
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			w := tile.Get(u%n, v%n)
			if w == 1 {
				continue
			}
			base := (u*cols + v) * nchan
			for ch := 0; ch < nchan; ch++ {
				out.Elements[base+ch] *= w
			}
		}
	}
	return out
}

// boxConvolveSame convolves each channel of field with a uniform n×n kernel
// whose taps all equal w, using same-size zero padding. The box kernel is
// separable, so the convolution runs as a row pass followed by a column pass;
// summation order is fixed, keeping results reproducible.
func boxConvolveSame(field *sparse.DenseArray, n int, w float64) *sparse.DenseArray {
	rows, cols, nchan := field.Shape[0], field.Shape[1], field.Shape[2]
	half := (n - 1) / 2

	tmp := sparse.ZerosDense(rows, cols, nchan)
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			for ch := 0; ch < nchan; ch++ {
				var sum float64
				for dv := -half; dv <= half; dv++ {
					if j := v + dv; j >= 0 && j < cols {
						sum += field.Get(u, j, ch)
					}
				}
				tmp.Set(sum, u, v, ch)
			}
		}
	}
	out := sparse.ZerosDense(rows, cols, nchan)
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			for ch := 0; ch < nchan; ch++ {
				var sum float64
				for du := -half; du <= half; du++ {
					if i := u + du; i >= 0 && i < rows {
						sum += tmp.Get(i, v, ch)
					}
				}
				out.Set(sum*w, u, v, ch)
			}
		}
	}
	return out
}

// FilterDecimate collapses an oversampled, aperture-weighted current density
// field [A/m²] to one area-integrated value per photodetector [A]. Each kernel
// tap weighs pixelArea/N², so the convolution result sampled at each pixel
// tile's center subcell is the area-weighted average of the N×N subcell
// contributions inside that pixel, the discrete equivalent of integrating the
// subpixel field over the photodetector footprint. For N=1 no convolution is
// needed and the field is scaled by the pixel area directly.
func FilterDecimate(field *sparse.DenseArray, n int, pixelArea float64) *sparse.DenseArray {
	if n == 1 {
		return field.ScaleCopy(pixelArea)
	}
	conv := boxConvolveSame(field, n, pixelArea/float64(n*n))

	rows, cols, nchan := field.Shape[0]/n, field.Shape[1]/n, field.Shape[2]
	off := (n - 1) / 2 // center subcell of each tile
	out := sparse.ZerosDense(rows, cols, nchan)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			for ch := 0; ch < nchan; ch++ {
				out.Set(conv.Get(i*n+off, j*n+off, ch), i, j, ch)
			}
		}
	}
	return out
}
