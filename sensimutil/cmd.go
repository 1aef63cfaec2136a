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

// Package sensimutil wires the sensim transduction pipeline to its
// command-line interface and configuration file handling.
package sensimutil

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sensormodel/sensim"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Cfg = viper.New()

	// Options are the configuration options available to sensim.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path where the computed signal field is
              written, in Gob format.`,
			shorthand:  "o",
			defaultVal: "signal.gob",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sim.BulkThreshold",
			usage: `
              Sim.BulkThreshold specifies the flattened element count above
              which current density estimation switches to the memory-bounded
              per-wavelength strategy. 0 selects the built-in default.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.Rows",
			usage: `
              Sensor.Rows specifies the number of pixel rows in the array.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.Cols",
			usage: `
              Sensor.Cols specifies the number of pixel columns in the array.`,
			defaultVal: 64,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.PitchUm",
			usage: `
              Sensor.PitchUm specifies the pixel center-to-center distance
              in micrometers.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.FillFactor",
			usage: `
              Sensor.FillFactor specifies the fraction of each pixel's area
              that is photosensitive.`,
			defaultVal: 0.9,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.Oversample",
			usage: `
              Sensor.Oversample specifies the subpixel supersampling factor;
              it must be a positive odd integer. 1 disables supersampling.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.IntegrationTimesMs",
			usage: `
              Sensor.IntegrationTimesMs specifies the exposure durations in
              milliseconds, one per output frame. A single value of 0 selects
              the nominal default exposure.`,
			defaultVal: []float64{10},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.ConversionGain",
			usage: `
              Sensor.ConversionGain specifies the output voltage per collected
              electron [V/e⁻].`,
			defaultVal: 1.0e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.VoltageSwing",
			usage: `
              Sensor.VoltageSwing specifies the saturation voltage [V];
              0 disables the upper clip.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.AnalogGain",
			usage: `
              Sensor.AnalogGain specifies the readout amplifier gain;
              0 is treated as 1.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.AnalogOffset",
			usage: `
              Sensor.AnalogOffset specifies the readout amplifier offset [V].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.NoiseMode",
			usage: `
              Sensor.NoiseMode specifies which noise sources to simulate:
              none, photon, or photon+electronic.`,
			defaultVal: "none",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.QEWavelengths",
			usage: `
              Sensor.QEWavelengths specifies the wavelengths [nm] at which the
              quantum efficiency curve is sampled.`,
			defaultVal: []float64{400, 500, 600, 700},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sensor.QE",
			usage: `
              Sensor.QE specifies the quantum efficiency [fraction] at each of
              Sensor.QEWavelengths.`,
			defaultVal: []float64{0.3, 0.6, 0.6, 0.3},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.Rows",
			usage: `
              Scene.Rows specifies the number of spatial samples per column in
              the synthetic uniform test scene.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.Cols",
			usage: `
              Scene.Cols specifies the number of spatial samples per row in
              the synthetic uniform test scene.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.SampleSpacingUm",
			usage: `
              Scene.SampleSpacingUm specifies the optical sample spacing at
              the sensor plane in micrometers.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.Wavelengths",
			usage: `
              Scene.Wavelengths specifies the scene's sample wavelengths [nm];
              they must be ascending and uniformly spaced.`,
			defaultVal: []float64{400, 500, 600, 700},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.BinWidth",
			usage: `
              Scene.BinWidth specifies the wavelength bin width [nm].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scene.Flux",
			usage: `
              Scene.Flux specifies the uniform photon irradiance
              [photons/m²/nm/s] of the synthetic test scene.`,
			defaultVal: 1.0e15,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	for _, option := range options {
		for _, set := range option.flagsets {
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case []float64:
				// Slices travel as json so that they can also be set from
				// the command line.
				b, err := json.Marshal(v)
				if err != nil {
					panic(err)
				}
				if option.shorthand == "" {
					set.String(option.name, string(b), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, string(b), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("sensim: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "sensim",
	Short: "An imaging sensor transduction simulator.",
	Long: `sensim simulates the optical-to-electrical transduction stage of an
imaging sensor: it converts a spectral irradiance field into the per-pixel
voltage a photodetector array would report.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag) or by using command-line arguments.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of sensim.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("sensim v%s\n", sensim.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the sensor signal.",
	Long: `run simulates the configured sensor viewing the configured uniform
test scene and writes the resulting signal field [V] to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sensor, err := SensorConfig(Cfg)
		if err != nil {
			return err
		}
		scene, err := SceneConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Run(sensor, scene, outputFile, Cfg.GetInt("Sim.BulkThreshold"))
	},
	DisableAutoGenTag: true,
}

// Run simulates sensor viewing scene and writes the signal field to
// outputFile in Gob format.
func Run(sensor *sensim.Sensor, scene *sensim.OpticalImage, outputFile string, bulkThreshold int) error {
	sim := &sensim.Simulator{
		BulkThreshold: bulkThreshold,
		Progress: func(fraction float64) {
			log.WithField("fraction", fraction).Info("simulation progress")
		},
	}
	log.WithFields(log.Fields{
		"rows": sensor.Rows, "cols": sensor.Cols,
		"oversample": sensor.Oversample, "noise": sensor.NoiseMode.String(),
	}).Info("computing sensor signal")

	volts, err := sim.ComputeSignal(scene, sensor)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"max":   volts.Max(),
		"mean":  volts.Sum() / float64(len(volts.Elements)),
		"units": "V",
	}).Info("signal computed")

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("sensim: creating output file: %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(volts); err != nil {
		return fmt.Errorf("sensim: encoding output file: %v", err)
	}
	log.WithField("file", outputFile).Info("signal written")
	return nil
}
