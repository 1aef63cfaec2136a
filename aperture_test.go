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
	"testing"

	"github.com/ctessum/sparse"
)

func TestApertureTileScalar(t *testing.T) {
	const testTolerance = 1.e-12

	s := &Sensor{Oversample: 1, FillFactor: 0.45}
	tile := ApertureTile(s)
	if len(tile.Shape) != 2 || tile.Shape[0] != 1 || tile.Shape[1] != 1 {
		t.Fatalf("tile shape %v, want [1, 1]", tile.Shape)
	}
	if got := tile.Get(0, 0); math.Abs(got-0.45) > testTolerance {
		t.Errorf("degenerate tile: got %g, want the fill factor 0.45", got)
	}
}

// TestApertureTileGeometry checks the subcell overlap construction: weights
// lie in [0,1], the tile is symmetric, and its mean is the fill factor.
func TestApertureTileGeometry(t *testing.T) {
	const testTolerance = 1.e-12

	s := &Sensor{Oversample: 5, FillFactor: 0.5}
	tile := ApertureTile(s)

	var sum float64
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			w := tile.Get(i, j)
			if w < 0 || w > 1+testTolerance {
				t.Errorf("tile(%d,%d)=%g outside [0,1]", i, j, w)
			}
			if d := math.Abs(w - tile.Get(4-i, 4-j)); d > testTolerance {
				t.Errorf("tile not symmetric at (%d,%d)", i, j)
			}
			sum += w
		}
	}
	if mean := sum / 25; math.Abs(mean-0.5) > testTolerance {
		t.Errorf("tile mean %g, want the fill factor 0.5", mean)
	}
	// The center subcell is fully inside the detector square.
	if got := tile.Get(2, 2); math.Abs(got-1) > testTolerance {
		t.Errorf("center subcell weight %g, want 1", got)
	}
}

func TestApertureTileExplicitMask(t *testing.T) {
	mask := sparse.ZerosDense(3, 3)
	mask.Set(1, 1, 1)
	s := &Sensor{Oversample: 3, Aperture: mask}
	tile := ApertureTile(s)
	if tile == mask {
		t.Error("tile must be a copy, not the sensor's own mask")
	}
	for i := range mask.Elements {
		if tile.Elements[i] != mask.Elements[i] {
			t.Fatalf("tile element %d differs from the mask", i)
		}
	}
}

// TestApertureWeightTiling checks that the tile is replicated, not
// interpolated, across the array.
func TestApertureWeightTiling(t *testing.T) {
	const testTolerance = 1.e-12

	tile := sparse.ZerosDense(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tile.Set(float64(i*3+j)/10, i, j)
		}
	}
	field := sparse.ZerosDense(6, 6, 1)
	for i := range field.Elements {
		field.Elements[i] = 2
	}
	out := ApertureWeight(field, tile)
	for u := 0; u < 6; u++ {
		for v := 0; v < 6; v++ {
			want := 2 * tile.Get(u%3, v%3)
			if got := out.Get(u, v, 0); math.Abs(got-want) > testTolerance {
				t.Errorf("weighted(%d,%d)=%g, want %g", u, v, got, want)
			}
		}
	}
}

// TestFilterDecimateUniform checks that the box filter and decimation
// reproduce the analytic area integral for a uniform subpixel field.
func TestFilterDecimateUniform(t *testing.T) {
	const (
		testTolerance = 1.e-12
		pixelArea     = 4.e-12 // m²
		value         = 7.
	)
	const n = 5
	field := sparse.ZerosDense(4*n, 4*n, 1)
	for i := range field.Elements {
		field.Elements[i] = value
	}
	out := FilterDecimate(field, n, pixelArea)
	if out.Shape[0] != 4 || out.Shape[1] != 4 {
		t.Fatalf("decimated shape %v, want [4, 4, 1]", out.Shape)
	}
	want := value * pixelArea
	for i, got := range out.Elements {
		if math.Abs(got-want)/want > testTolerance {
			t.Errorf("pixel %d: got %g, want %g", i, got, want)
		}
	}
}

// TestBoxConvolveSame checks the convolution against a hand-computed case:
// a single impulse spreads into an n×n block of kernel weights.
func TestBoxConvolveSame(t *testing.T) {
	const testTolerance = 1.e-12

	field := sparse.ZerosDense(5, 5, 1)
	field.Set(1, 2, 2, 0)
	out := boxConvolveSame(field, 3, 0.5)
	for u := 0; u < 5; u++ {
		for v := 0; v < 5; v++ {
			want := 0.
			if u >= 1 && u <= 3 && v >= 1 && v <= 3 {
				want = 0.5
			}
			if got := out.Get(u, v, 0); math.Abs(got-want) > testTolerance {
				t.Errorf("conv(%d,%d)=%g, want %g", u, v, got, want)
			}
		}
	}
}
