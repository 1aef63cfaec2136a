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

import "github.com/ctessum/sparse"

// Sensor describes the photodetector array being simulated. Its geometry,
// spectral response, and vignetting map are produced by external collaborators;
// sensim only consumes them.
type Sensor struct {
	Rows, Cols int     // array size [pixels]
	Pitch      float64 // pixel center-to-center distance [m]

	// FillFactor is the fraction of each pixel's area that is photosensitive.
	// It is ignored when Aperture is set.
	FillFactor float64

	// Aperture optionally describes the photodetector's light-sensitive area
	// within one pixel as an [N, N] fractional-sensitivity mask, where N is the
	// oversampling factor. When nil, a centered square detector covering
	// FillFactor of the pixel is assumed.
	Aperture *sparse.DenseArray

	// QE holds the per-channel quantum efficiency curves.
	QE SpectralResponse

	// Pattern maps each pixel to the index of its color channel, for mosaicked
	// sensors. It has shape [Rows, Cols] and may be nil when the sensor has a
	// single channel.
	Pattern *sparse.DenseArrayInt

	// Oversample is the spatial supersampling factor N: each pixel is divided
	// into N×N subcells for aperture integration. It must be a positive odd
	// integer so that subcell centers align with pixel centers; 1 disables
	// supersampling.
	Oversample int

	// IntegrationTimes holds one exposure duration per output frame [s].
	// Length 1 is the common single-exposure case. A single value of 0 selects
	// the nominal default exposure.
	IntegrationTimes []float64

	ConversionGain float64 // output voltage per collected electron [V/e⁻]

	// VoltageSwing is the saturation voltage [V]; 0 disables the upper clip.
	VoltageSwing float64

	// AnalogGain and AnalogOffset model the readout amplifier:
	// volts = (volts + AnalogOffset) / AnalogGain. A zero AnalogGain is
	// treated as 1.
	AnalogGain   float64
	AnalogOffset float64

	// Vignetting is the per-pixel relative-illumination correction from optical
	// chief-ray-angle falloff, shape [Rows, Cols], wavelength-independent.
	// May be nil for a uniform (no-falloff) sensor.
	Vignetting *sparse.DenseArray

	NoiseMode  NoiseMode
	NoiseModel NoiseModel // used when NoiseMode != NoiseNone; nil selects ShotReadNoise
}

// nchan returns the number of color channels.
func (s *Sensor) nchan() int {
	if s.QE.Curves == nil {
		return 0
	}
	return s.QE.Curves.Shape[1]
}

// pixelArea returns the area of one pixel [m²].
func (s *Sensor) pixelArea() float64 { return s.Pitch * s.Pitch }

// check validates the sensor description.
func (s *Sensor) check() error {
	if s == nil {
		return configErrorf("sensor description is nil")
	}
	if s.Rows <= 0 || s.Cols <= 0 {
		return configErrorf("sensor array size %d×%d must be positive", s.Rows, s.Cols)
	}
	if s.Pitch <= 0 {
		return configErrorf("pixel pitch must be positive but is %g", s.Pitch)
	}
	if s.Oversample < 1 || s.Oversample%2 == 0 {
		return configErrorf("oversampling factor must be a positive odd integer but is %d", s.Oversample)
	}
	if s.Aperture == nil && (s.FillFactor <= 0 || s.FillFactor > 1) {
		return configErrorf("fill factor must be in (0, 1] but is %g", s.FillFactor)
	}
	if s.Aperture != nil {
		if len(s.Aperture.Shape) != 2 || s.Aperture.Shape[0] != s.Oversample || s.Aperture.Shape[1] != s.Oversample {
			return configErrorf("aperture mask shape %v must be [%d, %d]", s.Aperture.Shape, s.Oversample, s.Oversample)
		}
	}
	if len(s.IntegrationTimes) == 0 {
		return configErrorf("at least one integration time is required")
	}
	for i, t := range s.IntegrationTimes {
		if t < 0 {
			return configErrorf("integration time %d is negative: %g", i, t)
		}
	}
	if s.ConversionGain <= 0 {
		return configErrorf("conversion gain must be positive but is %g", s.ConversionGain)
	}
	if err := s.QE.check(); err != nil {
		return err
	}
	if s.nchan() > 1 && s.Pattern == nil {
		return configErrorf("a %d-channel sensor requires a mosaic pattern", s.nchan())
	}
	if s.Pattern != nil {
		if len(s.Pattern.Shape) != 2 || s.Pattern.Shape[0] != s.Rows || s.Pattern.Shape[1] != s.Cols {
			return configErrorf("mosaic pattern shape %v must be [%d, %d]", s.Pattern.Shape, s.Rows, s.Cols)
		}
		for _, c := range s.Pattern.Elements {
			if c < 0 || c >= s.nchan() {
				return configErrorf("mosaic pattern references channel %d of %d", c, s.nchan())
			}
		}
	}
	if s.Vignetting != nil {
		if len(s.Vignetting.Shape) != 2 || s.Vignetting.Shape[0] != s.Rows || s.Vignetting.Shape[1] != s.Cols {
			return configErrorf("vignetting map shape %v must be [%d, %d]", s.Vignetting.Shape, s.Rows, s.Cols)
		}
	}
	return nil
}
