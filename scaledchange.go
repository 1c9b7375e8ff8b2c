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

package patternscale

import (
	"fmt"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultEpsilon is the default absolute-value threshold below
	// which a baseline cell value is treated as zero, and therefore
	// invalid, for the model it belongs to.
	DefaultEpsilon = 1.e-14

	// DefaultConfidence is the default two-sided confidence level for
	// the Student's-t multiplier in the standard-error threshold.
	DefaultConfidence = 0.95
)

// ScaledChangeConfig holds the options for one estimator invocation.
// The zero value requests raw (non-percent) changes with the default
// epsilon and confidence level.
type ScaledChangeConfig struct {
	// Percent expresses the per-model change as a percentage of the
	// model's baseline value instead of a raw difference.
	Percent bool

	// Epsilon is the zero-baseline guard threshold. If zero,
	// DefaultEpsilon is used.
	Epsilon float64

	// Confidence is the two-sided confidence level (0, 1) for the
	// Student's-t critical value. If zero, DefaultConfidence is used.
	Confidence float64
}

// ScaledChangeResult holds the per-grid-cell output of the estimator.
// NValid is the authority on cell validity: cells where NValid is zero
// have no defined mean, and cells where NValid is less than two have
// no defined standard error and are never significant. Undefined mean
// and standard-error cells are set to NaN so that accidental use is
// loud, but callers should branch on NValid, not on the float values.
type ScaledChangeResult struct {
	// Mean is the multi-model mean scaled change.
	Mean *sparse.DenseArray

	// StdError is the standard-error threshold: the sample standard
	// deviation of the per-model scaled changes multiplied by the
	// Student's-t critical value and divided by sqrt(NValid).
	StdError *sparse.DenseArray

	// Significant is 1 where |Mean| exceeds the standard-error
	// threshold and 0 elsewhere.
	Significant *sparse.DenseArrayInt

	// NValid counts the models contributing a valid scaled value at
	// each cell.
	NValid *sparse.DenseArrayInt
}

// ConfigurationError is returned when the supplied models or options
// make the multi-model statistic undefined.
type ConfigurationError struct {
	msg string
}

func (e ConfigurationError) Error() string { return e.msg }

// AlignmentError is returned when the four input sequences do not all
// have the same length.
type AlignmentError struct {
	NBaseline, NProjection, NBaselineDriver, NProjectionDriver int
}

func (e AlignmentError) Error() string {
	return fmt.Sprintf("patternscale: input sequences are not aligned: "+
		"%d baseline fields, %d projection fields, %d baseline drivers, %d projection drivers",
		e.NBaseline, e.NProjection, e.NBaselineDriver, e.NProjectionDriver)
}

// ShapeMismatchError is returned when a field's shape disagrees with
// the shape of the first baseline field.
type ShapeMismatchError struct {
	Model     int    // index of the offending model
	Series    string // "baseline" or "projection"
	Want, Got []int
}

func (e ShapeMismatchError) Error() string {
	return fmt.Sprintf("patternscale: model %d %s field has shape %v; expected %v",
		e.Model, e.Series, e.Got, e.Want)
}

// ScaledChange computes the multi-model mean scaled change of a field
// between two time periods, normalized per model by the change in a
// scalar driver, along with a standard-error threshold and a
// significance mask.
//
// The four input sequences must be index-aligned by model and contain
// at least two models, and all fields must share one shape; otherwise
// an AlignmentError, ConfigurationError, or ShapeMismatchError is
// returned and no output is produced.
//
// Per-cell degeneracies never abort the computation: a model is
// excluded at a cell when its baseline value there is smaller in
// magnitude than the epsilon guard, and excluded everywhere when its
// driver change is zero. Excluded values take no part in the mean or
// standard-deviation arithmetic.
//
// The function does not modify its inputs and retains no references to
// them.
func ScaledChange(baseline, projection []*sparse.DenseArray,
	baselineDriver, projectionDriver []float64,
	c ScaledChangeConfig) (*ScaledChangeResult, error) {

	if len(projection) != len(baseline) ||
		len(baselineDriver) != len(baseline) ||
		len(projectionDriver) != len(baseline) {
		return nil, AlignmentError{
			NBaseline:         len(baseline),
			NProjection:       len(projection),
			NBaselineDriver:   len(baselineDriver),
			NProjectionDriver: len(projectionDriver),
		}
	}
	n := len(baseline)
	if n < 2 {
		return nil, ConfigurationError{fmt.Sprintf(
			"patternscale: %d model(s) supplied; the multi-model statistic requires at least 2", n)}
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	if c.Confidence == 0 {
		c.Confidence = DefaultConfidence
	}
	if c.Epsilon < 0 {
		return nil, ConfigurationError{fmt.Sprintf(
			"patternscale: epsilon must be positive; got %g", c.Epsilon)}
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return nil, ConfigurationError{fmt.Sprintf(
			"patternscale: confidence level must be within (0, 1); got %g", c.Confidence)}
	}

	shape := baseline[0].Shape
	for i := 0; i < n; i++ {
		if !shapeEqual(baseline[i].Shape, shape) {
			return nil, ShapeMismatchError{Model: i, Series: "baseline", Want: shape, Got: baseline[i].Shape}
		}
		if !shapeEqual(projection[i].Shape, shape) {
			return nil, ShapeMismatchError{Model: i, Series: "projection", Want: shape, Got: projection[i].Shape}
		}
	}

	// Per-model scaled changes with an explicit validity mask; invalid
	// cells hold no computed value.
	size := len(baseline[0].Elements)
	scaled := make([][]float64, n)
	valid := make([][]bool, n)
	for i := 0; i < n; i++ {
		scaled[i] = make([]float64, size)
		valid[i] = make([]bool, size)
		d := projectionDriver[i] - baselineDriver[i]
		if d == 0 { // scaling undefined for this model at every cell
			continue
		}
		for j, b := range baseline[i].Elements {
			if math.Abs(b) < c.Epsilon { // zero-baseline guard
				continue
			}
			change := projection[i].Elements[j] - b
			if c.Percent {
				change = 100 * change / b
			}
			scaled[i][j] = change / d
			valid[i][j] = true
		}
	}

	out := &ScaledChangeResult{
		Mean:        sparse.ZerosDense(shape...),
		StdError:    sparse.ZerosDense(shape...),
		Significant: sparse.ZerosDenseInt(shape...),
		NValid:      sparse.ZerosDenseInt(shape...),
	}
	for j := 0; j < size; j++ {
		var s stats.Stats
		for i := 0; i < n; i++ {
			if valid[i][j] {
				s.Update(scaled[i][j])
			}
		}
		nValid := s.Count()
		out.NValid.Elements[j] = nValid
		switch {
		case nValid == 0:
			out.Mean.Elements[j] = math.NaN()
			out.StdError.Elements[j] = math.NaN()
		case nValid == 1:
			out.Mean.Elements[j] = s.Mean()
			out.StdError.Elements[j] = math.NaN()
		default:
			mean := s.Mean()
			se := s.SampleStandardDeviation() *
				tCritical(c.Confidence, nValid-1) / math.Sqrt(float64(nValid))
			out.Mean.Elements[j] = mean
			out.StdError.Elements[j] = se
			// A zero threshold means the models agree exactly; there
			// is no spread to test against, so the cell is not marked
			// significant.
			if se > 0 && math.Abs(mean) > se {
				out.Significant.Elements[j] = 1
			}
		}
	}
	return out, nil
}

// tCritical returns the two-sided Student's-t critical value for the
// given confidence level and degrees of freedom.
func tCritical(confidence float64, df int) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile(0.5 + confidence/2)
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}
