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

	"github.com/ctessum/sparse"
)

// Period is an inclusive range of years.
type Period struct {
	Start, End int
}

func (p Period) String() string { return fmt.Sprintf("%d-%d", p.Start, p.End) }

// FieldRecord holds one model's time-mean field and driver value for
// one period of one experiment.
type FieldRecord struct {
	Model      string
	Experiment string
	Ensemble   string // ensemble member identifier, e.g. "r1i1p1"
	StartYear  int
	Season     string
	Period     Period

	// Field is the time-mean 2-D field for this period.
	Field *sparse.DenseArray

	// Driver is the global scalar driver value for this period, e.g.
	// global mean temperature.
	Driver float64
}

// ModelRecord pairs one model's baseline and projection data. It is
// immutable once passed to the estimator.
type ModelRecord struct {
	Name       string
	Experiment string
	Ensemble   string
	StartYear  int

	Baseline, Projection             *sparse.DenseArray
	BaselineDriver, ProjectionDriver float64
}

// MatchModels pairs each projection record with the baseline record
// that shares its model name and ensemble member, returning one
// ModelRecord per projection record in projection order. A projection
// record without a baseline counterpart is an error; baseline records
// without projection counterparts are ignored.
func MatchModels(projection, baseline []*FieldRecord) ([]*ModelRecord, error) {
	base := make(map[string]*FieldRecord)
	for _, b := range baseline {
		k := b.Model + "/" + b.Ensemble
		if _, ok := base[k]; ok {
			return nil, fmt.Errorf("patternscale: duplicate baseline record for model %s ensemble %s",
				b.Model, b.Ensemble)
		}
		base[k] = b
	}
	models := make([]*ModelRecord, 0, len(projection))
	for _, p := range projection {
		b, ok := base[p.Model+"/"+p.Ensemble]
		if !ok {
			return nil, fmt.Errorf("patternscale: no baseline counterpart for model %s ensemble %s",
				p.Model, p.Ensemble)
		}
		models = append(models, &ModelRecord{
			Name:             p.Model,
			Experiment:       p.Experiment,
			Ensemble:         p.Ensemble,
			StartYear:        b.StartYear,
			Baseline:         b.Field,
			Projection:       p.Field,
			BaselineDriver:   b.Driver,
			ProjectionDriver: p.Driver,
		})
	}
	return models, nil
}

// Aligned unpacks model records into the four index-aligned sequences
// that ScaledChange takes.
func Aligned(models []*ModelRecord) (baseline, projection []*sparse.DenseArray,
	baselineDriver, projectionDriver []float64) {
	baseline = make([]*sparse.DenseArray, len(models))
	projection = make([]*sparse.DenseArray, len(models))
	baselineDriver = make([]float64, len(models))
	projectionDriver = make([]float64, len(models))
	for i, m := range models {
		baseline[i] = m.Baseline
		projection[i] = m.Projection
		baselineDriver[i] = m.BaselineDriver
		projectionDriver[i] = m.ProjectionDriver
	}
	return
}

// ScaledChangeFromRecords runs the estimator on a set of model
// records.
func ScaledChangeFromRecords(models []*ModelRecord, c ScaledChangeConfig) (*ScaledChangeResult, error) {
	baseline, projection, baselineDriver, projectionDriver := Aligned(models)
	return ScaledChange(baseline, projection, baselineDriver, projectionDriver, c)
}
