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

// Package sensim simulates the optical-to-electrical transduction stage of an
// imaging sensor. Given a spectral irradiance field sampled on an optical image
// grid and the physical and spectral parameters of a photodetector array, it
// computes the per-pixel electrical signal [V], including quantum-efficiency
// weighted spectral integration, registration and resampling between the optical
// grid and the photodetector grid, aperture and fill-factor weighting, exposure
// scaling, and optional noise.
//
// The pipeline runs strictly leaf to root:
//
//	spectral response alignment → current density estimation →
//	grid registration → aperture weighting → (filter and decimate) →
//	radiometric conversion → noise
//
// Each stage is a deterministic function of its inputs; all intermediate fields
// are stage-local sparse.DenseArray snapshots, so concurrent simulations of
// independent image/sensor pairs share no state.
package sensim

// Version gives the version number.
const Version = "0.1.0"
