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

package sensimutil

import (
	"math"
	"reflect"
	"testing"

	"github.com/sensormodel/sensim"
)

func TestSensorConfigDefaults(t *testing.T) {
	const testTolerance = 1.e-12

	s, err := SensorConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Rows != 64 || s.Cols != 64 {
		t.Errorf("sensor size %d×%d, want 64×64", s.Rows, s.Cols)
	}
	if math.Abs(s.Pitch-2.e-6) > testTolerance*s.Pitch {
		t.Errorf("pitch %g m, want 2e-6 m", s.Pitch)
	}
	if len(s.IntegrationTimes) != 1 || math.Abs(s.IntegrationTimes[0]-0.01) > testTolerance {
		t.Errorf("integration times %v s, want [0.01] s", s.IntegrationTimes)
	}
	if s.NoiseMode != sensim.NoiseNone {
		t.Errorf("noise mode %v, want %v", s.NoiseMode, sensim.NoiseNone)
	}
	wantWave := []float64{400, 500, 600, 700}
	if !reflect.DeepEqual(s.QE.Wavelengths, wantWave) {
		t.Errorf("QE wavelengths %v, want %v", s.QE.Wavelengths, wantWave)
	}
	if got := s.QE.Curves.Get(1, 0); got != 0.6 {
		t.Errorf("QE at 500 nm is %g, want 0.6", got)
	}
}

func TestSceneConfigDefaults(t *testing.T) {
	oi, err := SceneConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	wantShape := []int{256, 256, 4}
	if !reflect.DeepEqual(oi.Photons.Shape, wantShape) {
		t.Errorf("scene shape %v, want %v", oi.Photons.Shape, wantShape)
	}
	for _, v := range oi.Photons.Elements[:8] {
		if v != 1.e15 {
			t.Fatalf("scene flux %g, want 1e15", v)
		}
	}
}

func TestNoiseModeParsing(t *testing.T) {
	cases := []struct {
		name string
		want sensim.NoiseMode
		ok   bool
	}{
		{"", sensim.NoiseNone, true},
		{"none", sensim.NoiseNone, true},
		{"photon", sensim.NoisePhotonOnly, true},
		{"photon+electronic", sensim.NoisePhotonElectronic, true},
		{"photons", 0, false},
	}
	for _, c := range cases {
		got, err := noiseMode(c.name)
		if c.ok && err != nil {
			t.Errorf("%q: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%q: expected an error", c.name)
		}
		if c.ok && got != c.want {
			t.Errorf("%q: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestToFloat64SliceE(t *testing.T) {
	want := []float64{1, 2.5, 3}
	cases := []interface{}{
		[]float64{1, 2.5, 3},
		[]interface{}{1, 2.5, int64(3)},
		"[1, 2.5, 3]",
	}
	for _, c := range cases {
		got, err := toFloat64SliceE(c)
		if err != nil {
			t.Fatalf("%#v: %v", c, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%#v: got %v, want %v", c, got, want)
		}
	}
	if _, err := toFloat64SliceE(42); err == nil {
		t.Error("expected an error for a scalar value")
	}
}
