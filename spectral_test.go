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
	"testing"

	"github.com/ctessum/sparse"
)

func TestAlignPassThrough(t *testing.T) {
	wave := []float64{500, 510, 520}
	curves := sparse.ZerosDense(3, 1)
	for k, qe := range []float64{0.2, 0.5, 0.3} {
		curves.Set(qe, k, 0)
	}
	r := SpectralResponse{Wavelengths: wave, Curves: curves}

	aligned, err := r.Align([]float64{500, 510, 520})
	if err != nil {
		t.Fatal(err)
	}
	if aligned.Curves != curves {
		t.Error("matching wavelengths should pass the response through unchanged")
	}
}

func TestAlignInterpolation(t *testing.T) {
	const testTolerance = 1.e-12

	// A triangular curve over 500–540 nm, queried at intermediate and
	// out-of-domain wavelengths.
	r := SpectralResponse{
		Wavelengths: []float64{500, 520, 540},
		Curves:      sparse.ZerosDense(3, 1),
	}
	r.Curves.Set(0, 0, 0)
	r.Curves.Set(1, 1, 0)
	r.Curves.Set(0, 2, 0)

	aligned, err := r.Align([]float64{490, 510, 520, 530, 550})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1, 0.5, 0}
	for i, w := range want {
		if got := aligned.Curves.Get(i, 0); math.Abs(got-w) > testTolerance {
			t.Errorf("aligned QE at index %d: got %g, want %g", i, got, w)
		}
	}
}

func TestAlignSingleSampleMismatch(t *testing.T) {
	r := SpectralResponse{
		Wavelengths: []float64{550},
		Curves:      sparse.ZerosDense(1, 1),
	}
	r.Curves.Set(1, 0, 0)

	_, err := r.Align([]float64{500})
	if err == nil {
		t.Fatal("expected an error for a mismatched single-sample response")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected a ConfigError but got %T: %v", err, err)
	}
}

func TestAlignNonAscendingWavelengths(t *testing.T) {
	r := flatResponse([]float64{500, 600, 550}, 1)
	_, err := r.Align([]float64{500, 550, 600})
	if err == nil {
		t.Fatal("expected an error for non-ascending response wavelengths")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected a ConfigError but got %T: %v", err, err)
	}
}
