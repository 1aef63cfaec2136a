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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/lnashier/viper"
	"github.com/sensormodel/sensim"
	"github.com/spf13/cast"
)

// Configuration quantities are given in laboratory units (µm, ms); the unit
// package carries the conversions to SI with dimension checks.
var (
	micro = unit.New(1.e-6, unit.Dimless)
	milli = unit.New(1.e-3, unit.Dimless)
)

// micrometersToMeters converts a length given in µm to m.
func micrometersToMeters(v float64) (float64, error) {
	u := unit.Mul(unit.New(v, unit.Meter), micro)
	if err := u.Check(unit.Meter); err != nil {
		return 0, fmt.Errorf("sensim: converting µm to m: %v", err)
	}
	return u.Value(), nil
}

// millisecondsToSeconds converts a duration given in ms to s.
func millisecondsToSeconds(v float64) (float64, error) {
	u := unit.Mul(unit.New(v, unit.Second), milli)
	if err := u.Check(unit.Second); err != nil {
		return 0, fmt.Errorf("sensim: converting ms to s: %v", err)
	}
	return u.Value(), nil
}

// SensorConfig unmarshals a viper configuration for the simulated sensor.
func SensorConfig(cfg *viper.Viper) (*sensim.Sensor, error) {
	pitch, err := micrometersToMeters(cfg.GetFloat64("Sensor.PitchUm"))
	if err != nil {
		return nil, err
	}
	exposuresMs, err := toFloat64SliceE(cfg.Get("Sensor.IntegrationTimesMs"))
	if err != nil {
		return nil, fmt.Errorf("sensim: parsing Sensor.IntegrationTimesMs: %v", err)
	}
	exposures := make([]float64, len(exposuresMs))
	for i, ms := range exposuresMs {
		if exposures[i], err = millisecondsToSeconds(ms); err != nil {
			return nil, err
		}
	}
	qeWave, err := toFloat64SliceE(cfg.Get("Sensor.QEWavelengths"))
	if err != nil {
		return nil, fmt.Errorf("sensim: parsing Sensor.QEWavelengths: %v", err)
	}
	qe, err := toFloat64SliceE(cfg.Get("Sensor.QE"))
	if err != nil {
		return nil, fmt.Errorf("sensim: parsing Sensor.QE: %v", err)
	}
	if len(qe) != len(qeWave) {
		return nil, fmt.Errorf("sensim: Sensor.QE has %d values but Sensor.QEWavelengths has %d", len(qe), len(qeWave))
	}
	curves := sparse.ZerosDense(len(qe), 1)
	copy(curves.Elements, qe)

	mode, err := noiseMode(cfg.GetString("Sensor.NoiseMode"))
	if err != nil {
		return nil, err
	}

	s := &sensim.Sensor{
		Rows:             cfg.GetInt("Sensor.Rows"),
		Cols:             cfg.GetInt("Sensor.Cols"),
		Pitch:            pitch,
		FillFactor:       cfg.GetFloat64("Sensor.FillFactor"),
		QE:               sensim.SpectralResponse{Wavelengths: qeWave, Curves: curves},
		Oversample:       cfg.GetInt("Sensor.Oversample"),
		IntegrationTimes: exposures,
		ConversionGain:   cfg.GetFloat64("Sensor.ConversionGain"),
		VoltageSwing:     cfg.GetFloat64("Sensor.VoltageSwing"),
		AnalogGain:       cfg.GetFloat64("Sensor.AnalogGain"),
		AnalogOffset:     cfg.GetFloat64("Sensor.AnalogOffset"),
		NoiseMode:        mode,
	}
	return s, nil
}

// noiseMode parses a noise mode name.
func noiseMode(name string) (sensim.NoiseMode, error) {
	switch name {
	case "", "none":
		return sensim.NoiseNone, nil
	case "photon":
		return sensim.NoisePhotonOnly, nil
	case "photon+electronic":
		return sensim.NoisePhotonElectronic, nil
	default:
		return 0, fmt.Errorf("sensim: the Sensor.NoiseMode variable must be one of "+
			"none, photon, or photon+electronic, but is `%s`", name)
	}
}

// SceneConfig unmarshals a viper configuration for the synthetic uniform test
// scene used by the command-line runner. Scene and irradiance generation
// proper are the job of an upstream optics model; this scene exists so a
// sensor configuration can be exercised standalone.
func SceneConfig(cfg *viper.Viper) (*sensim.OpticalImage, error) {
	spacing, err := micrometersToMeters(cfg.GetFloat64("Scene.SampleSpacingUm"))
	if err != nil {
		return nil, err
	}
	wave, err := toFloat64SliceE(cfg.Get("Scene.Wavelengths"))
	if err != nil {
		return nil, fmt.Errorf("sensim: parsing Scene.Wavelengths: %v", err)
	}
	rows := cfg.GetInt("Scene.Rows")
	cols := cfg.GetInt("Scene.Cols")
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("sensim: scene size %d×%d must be positive", rows, cols)
	}
	flux := cfg.GetFloat64("Scene.Flux")
	photons := sparse.ZerosDense(rows, cols, len(wave))
	for i := range photons.Elements {
		photons.Elements[i] = flux
	}
	return &sensim.OpticalImage{
		Photons:       photons,
		Wavelengths:   wave,
		BinWidth:      cfg.GetFloat64("Scene.BinWidth"),
		SampleSpacing: spacing,
	}, nil
}

// checkOutputFile makes sure the output file is specified and its directory
// exists, expanding any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`sensim: you need to specify an output file configuration variable (for example: OutputFile="signal.gob")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("sensim: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// toFloat64SliceE returns a []float64 from a viper configuration value,
// accounting for the fact that it might be a json array if it was set from a
// command line argument.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			var err error
			if o[i], err = cast.ToFloat64E(val); err != nil {
				return nil, fmt.Errorf("invalid number %#v: %v", val, err)
			}
		}
		return o, nil
	case string:
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type %T", s)
	}
}
