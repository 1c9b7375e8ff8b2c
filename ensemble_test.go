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
	"strings"
	"testing"
)

func testFieldRecord(model, ensemble, experiment string, driver float64) *FieldRecord {
	return &FieldRecord{
		Model:      model,
		Experiment: experiment,
		Ensemble:   ensemble,
		Field:      field(1, 2, 3),
		Driver:     driver,
	}
}

func TestMatchModels(t *testing.T) {
	projection := []*FieldRecord{
		testFieldRecord("CESM1-CAM5", "r1i1p1", "rcp85", 16.2),
		testFieldRecord("MPI-ESM-LR", "r1i1p1", "rcp85", 15.1),
		testFieldRecord("CESM1-CAM5", "r2i1p1", "rcp85", 16.0),
	}
	// Baseline records in a different order, plus one extra model that
	// should be ignored.
	baseline := []*FieldRecord{
		testFieldRecord("MPI-ESM-LR", "r1i1p1", "historical", 13.9),
		testFieldRecord("CESM1-CAM5", "r2i1p1", "historical", 14.1),
		testFieldRecord("CESM1-CAM5", "r1i1p1", "historical", 14.2),
		testFieldRecord("GFDL-ESM2M", "r1i1p1", "historical", 13.5),
	}

	models, err := MatchModels(projection, baseline)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 3 {
		t.Fatalf("matched %d models, want 3", len(models))
	}
	// Output order follows the projection records.
	for i, want := range []string{"CESM1-CAM5/r1i1p1", "MPI-ESM-LR/r1i1p1", "CESM1-CAM5/r2i1p1"} {
		got := models[i].Name + "/" + models[i].Ensemble
		if got != want {
			t.Errorf("model %d = %s, want %s", i, got, want)
		}
	}
	if models[0].BaselineDriver != 14.2 || models[0].ProjectionDriver != 16.2 {
		t.Errorf("model 0 drivers = %g, %g; want 14.2, 16.2",
			models[0].BaselineDriver, models[0].ProjectionDriver)
	}
	if models[0].Experiment != "rcp85" {
		t.Errorf("model 0 experiment = %s, want rcp85", models[0].Experiment)
	}
}

func TestMatchModels_missingCounterpart(t *testing.T) {
	projection := []*FieldRecord{testFieldRecord("CESM1-CAM5", "r1i1p1", "rcp85", 16.2)}
	baseline := []*FieldRecord{testFieldRecord("CESM1-CAM5", "r2i1p1", "historical", 14.1)}
	_, err := MatchModels(projection, baseline)
	if err == nil {
		t.Fatal("expected an error for a projection record without a baseline counterpart")
	}
	if !strings.Contains(err.Error(), "CESM1-CAM5") {
		t.Errorf("error should name the model: %v", err)
	}
}

func TestMatchModels_duplicateBaseline(t *testing.T) {
	projection := []*FieldRecord{testFieldRecord("CESM1-CAM5", "r1i1p1", "rcp85", 16.2)}
	baseline := []*FieldRecord{
		testFieldRecord("CESM1-CAM5", "r1i1p1", "historical", 14.1),
		testFieldRecord("CESM1-CAM5", "r1i1p1", "historical", 14.3),
	}
	if _, err := MatchModels(projection, baseline); err == nil {
		t.Fatal("expected an error for duplicate baseline records")
	}
}

func TestAligned(t *testing.T) {
	models := []*ModelRecord{
		{Name: "a", Baseline: field(1), Projection: field(2), BaselineDriver: 3, ProjectionDriver: 4},
		{Name: "b", Baseline: field(5), Projection: field(6), BaselineDriver: 7, ProjectionDriver: 8},
	}
	b, p, bd, pd := Aligned(models)
	if len(b) != 2 || len(p) != 2 || len(bd) != 2 || len(pd) != 2 {
		t.Fatal("aligned sequences have the wrong length")
	}
	if b[1].Elements[0] != 5 || p[1].Elements[0] != 6 || bd[1] != 7 || pd[1] != 8 {
		t.Error("aligned sequences are shuffled")
	}
}
