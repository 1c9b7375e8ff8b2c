/*
Copyright © 2024 the PatternScale authors.
This file is part of PatternScale.

PatternScale is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PatternScale is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PatternScale.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package patternscale computes multi-model pattern-scaled
// climate-change statistics from ensembles of gridded climate model
// output. For each model it normalizes the change in a field between a
// baseline and a projection period by the model's own change in a
// global driver (typically global mean temperature), and it aggregates
// the scaled fields across models into a per-grid-cell mean, a
// standard-error threshold, and a significance mask.
package patternscale

// Version gives the version number.
const Version = "0.3.0"
