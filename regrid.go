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
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
)

// edgeTolerance absorbs floating-point error when a target sample lands
// exactly on the optical field boundary.
const edgeTolerance = 1.e-9

// Registration is the affine mapping between the optical sample grid and the
// sensor pixel grid. Both grids are expressed in a common physical coordinate
// system [m] centered on their geometric centers, so a target sample's
// position follows directly from its index, and its fractional position on the
// optical grid follows from the ratio of the two sample spacings.
type Registration struct {
	opticalSpacing           float64 // optical sample spacing [m]
	opticalRows, opticalCols int

	targetSpacing          float64 // sensor pitch / oversampling factor [m]
	targetRows, targetCols int
}

// NewRegistration builds the registration between an optical image and a
// sensor oversampled by factor n: the target grid has n× the sensor's pixel
// resolution in each dimension, with spacing pitch/n.
func NewRegistration(oi *OpticalImage, s *Sensor, n int) Registration {
	return Registration{
		opticalSpacing: oi.SampleSpacing,
		opticalRows:    oi.Photons.Shape[0],
		opticalCols:    oi.Photons.Shape[1],
		targetSpacing:  s.Pitch / float64(n),
		targetRows:     s.Rows * n,
		targetCols:     s.Cols * n,
	}
}

// opticalIndex returns the fractional optical-grid indices of target sample
// (u, v). Grid index i maps to physical coordinate (i - (n-1)/2) × spacing on
// either grid; equating the two coordinates gives the mapping.
func (g Registration) opticalIndex(u, v int) (ri, ci float64) {
	y := (float64(u) - float64(g.targetRows-1)/2) * g.targetSpacing
	x := (float64(v) - float64(g.targetCols-1)/2) * g.targetSpacing
	ri = y/g.opticalSpacing + float64(g.opticalRows-1)/2
	ci = x/g.opticalSpacing + float64(g.opticalCols-1)/2
	return ri, ci
}

// inDomain clamps a fractional index to [0, n-1], reporting false if it lies
// outside the grid by more than edgeTolerance.
func inDomain(f float64, n int) (float64, bool) {
	if f < -edgeTolerance || f > float64(n-1)+edgeTolerance {
		return 0, false
	}
	return math.Min(math.Max(f, 0), float64(n-1)), true
}

// Resample interpolates the current density field [A/m²], sampled on the
// optical grid, onto the registration's target grid. Interpolation is bilinear
// per channel; target samples outside the optical field's extent are zero.
func (g Registration) Resample(density *sparse.DenseArray) (*sparse.DenseArray, error) {
	if g.targetRows <= 0 || g.targetCols <= 0 {
		return nil, computationErrorf("grid registration", "target grid %d×%d is empty", g.targetRows, g.targetCols)
	}
	nchan := density.Shape[2]
	out := sparse.ZerosDense(g.targetRows, g.targetCols, nchan)

	// Target rows are independent; stripe them across the available
	// processors. Each goroutine writes a disjoint slice of the output, so the
	// result does not depend on scheduling.
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for u := pp; u < g.targetRows; u += nprocs {
				for v := 0; v < g.targetCols; v++ {
					ri, ci := g.opticalIndex(u, v)
					ri, rok := inDomain(ri, g.opticalRows)
					ci, cok := inDomain(ci, g.opticalCols)
					if !rok || !cok {
						continue
					}
					i0 := int(ri)
					j0 := int(ci)
					i1 := min(i0+1, g.opticalRows-1)
					j1 := min(j0+1, g.opticalCols-1)
					fr := ri - float64(i0)
					fc := ci - float64(j0)
					for ch := 0; ch < nchan; ch++ {
						val := (1-fr)*(1-fc)*density.Get(i0, j0, ch) +
							(1-fr)*fc*density.Get(i0, j1, ch) +
							fr*(1-fc)*density.Get(i1, j0, ch) +
							fr*fc*density.Get(i1, j1, ch)
						out.Set(val, u, v, ch)
					}
				}
			}
		}(pp)
	}
	wg.Wait()
	return out, nil
}
