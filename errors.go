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

import "fmt"

// ConfigError reports incompatible or ambiguous simulation parameters, for
// example a single-sample spectral response whose wavelength does not match the
// optical image, or an even oversampling factor.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "sensim: configuration: " + e.msg }

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// MissingDataError reports that required input data is absent from the
// irradiance source, such as a missing photon-domain field.
type MissingDataError struct {
	msg string
}

func (e *MissingDataError) Error() string { return "sensim: missing data: " + e.msg }

func missingDataErrorf(format string, args ...interface{}) error {
	return &MissingDataError{msg: fmt.Sprintf(format, args...)}
}

// ComputationError reports that an intermediate field could not be produced.
// It aborts the pipeline; no partial signal field is ever returned.
type ComputationError struct {
	Stage string
	msg   string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("sensim: %s: %s", e.Stage, e.msg)
}

func computationErrorf(stage, format string, args ...interface{}) error {
	return &ComputationError{Stage: stage, msg: fmt.Sprintf(format, args...)}
}
