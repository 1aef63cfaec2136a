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
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/ctessum/sparse"
)

// uniformOpticalImage returns a spatially uniform optical image with the given
// photon irradiance [photons/m²/nm/s] at every sample of every wavelength.
func uniformOpticalImage(rows, cols int, spacing float64, wave []float64, binWidth, flux float64) *OpticalImage {
	photons := sparse.ZerosDense(rows, cols, len(wave))
	for i := range photons.Elements {
		photons.Elements[i] = flux
	}
	return &OpticalImage{
		Photons:       photons,
		Wavelengths:   wave,
		BinWidth:      binWidth,
		SampleSpacing: spacing,
	}
}

// flatResponse returns a single-channel response with constant quantum
// efficiency qe at the given wavelengths.
func flatResponse(wave []float64, qe float64) SpectralResponse {
	curves := sparse.ZerosDense(len(wave), 1)
	for k := range wave {
		curves.Set(qe, k, 0)
	}
	return SpectralResponse{Wavelengths: wave, Curves: curves}
}

// TestUnitRoundTrip checks the photon-to-charge unit bookkeeping: for a
// uniform single-wavelength field with QE 1, the current density must equal
// flux × binWidth × q.
func TestUnitRoundTrip(t *testing.T) {
	const (
		testTolerance = 1.e-12
		flux          = 1.e15 // photons/m²/nm/s
		binWidth      = 10.   // nm
	)
	wave := []float64{550}
	oi := uniformOpticalImage(4, 4, 1.e-6, wave, binWidth, flux)

	var e CurrentDensityEstimator
	density, err := e.Estimate(oi, flatResponse(wave, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := flux * binWidth * ElementaryCharge
	for i, got := range density.Elements {
		if math.Abs(got-want)/want > testTolerance {
			t.Fatalf("element %d: got %g A/m², want %g A/m²", i, got, want)
		}
	}
}

// TestStrategyEquivalence checks that the bulk matrix-multiply strategy and
// the per-wavelength accumulation strategy agree element for element.
func TestStrategyEquivalence(t *testing.T) {
	const testTolerance = 1.e-9

	rng := rand.New(rand.NewSource(1))
	const rows, cols, nwave, nchan = 7, 9, 31, 3
	photons := sparse.ZerosDense(rows, cols, nwave)
	for i := range photons.Elements {
		photons.Elements[i] = rng.Float64() * 1.e15
	}
	weights := sparse.ZerosDense(nwave, nchan)
	for i := range weights.Elements {
		weights.Elements[i] = rng.Float64()
	}

	bulk := bulkStrategy{}.estimate(photons, weights)
	accum := accumStrategy{}.estimate(photons, weights)
	for i := range bulk.Elements {
		b, a := bulk.Elements[i], accum.Elements[i]
		if math.Abs(b-a) > testTolerance*math.Max(math.Abs(b), math.Abs(a)) {
			t.Errorf("element %d: bulk %g, accumulation %g", i, b, a)
		}
	}
}

// TestStrategySelection checks that the size threshold picks the
// memory-bounded strategy for large fields.
func TestStrategySelection(t *testing.T) {
	e := CurrentDensityEstimator{BulkThreshold: 100}
	if _, ok := e.strategy(99).(bulkStrategy); !ok {
		t.Error("expected the bulk strategy below the threshold")
	}
	if _, ok := e.strategy(101).(accumStrategy); !ok {
		t.Error("expected the accumulation strategy above the threshold")
	}
}

func TestMissingPhotonData(t *testing.T) {
	oi := &OpticalImage{
		Wavelengths:   []float64{550},
		BinWidth:      10,
		SampleSpacing: 1.e-6,
	}
	var e CurrentDensityEstimator
	_, err := e.Estimate(oi, flatResponse(oi.Wavelengths, 1))
	if err == nil {
		t.Fatal("expected an error for missing photon data")
	}
	var merr *MissingDataError
	if !errors.As(err, &merr) {
		t.Errorf("expected a MissingDataError but got %T: %v", err, err)
	}
}
