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
	"runtime"
	"strings"
	"sync"
)

// Combination labels one independent estimator invocation: one
// scenario evaluated for one projection period and one season.
type Combination struct {
	Scenario string
	Period   Period
	Season   string
}

func (c Combination) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %v %s", c.Scenario, c.Period, c.Season))
}

// VarName returns a name for this combination that is usable as a
// NetCDF variable name.
func (c Combination) VarName() string {
	parts := []string{c.Scenario, fmt.Sprintf("%d_%d", c.Period.Start, c.Period.End)}
	if c.Season != "" {
		parts = append(parts, c.Season)
	}
	return strings.Join(parts, "_")
}

// A Job is one estimator invocation waiting to be run.
type Job struct {
	Key    Combination
	Models []*ModelRecord
	Config ScaledChangeConfig
}

// A JobResult is the outcome of one estimator invocation. Err holds
// any structural error from that invocation; it never reflects the
// state of other invocations.
type JobResult struct {
	Key    Combination
	Result *ScaledChangeResult
	Err    error
}

// RunJobs concurrently runs the estimator once per job, using nprocs
// processors (GOMAXPROCS if nprocs <= 0). The jobs are independent: a
// failure in one does not prevent collection of results from the
// others, and the returned slice matches the order of jobs.
func RunJobs(jobs []*Job, nprocs int) []*JobResult {
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	results := make([]*JobResult, len(jobs))
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(jobs); ii += nprocs {
				j := jobs[ii]
				r, err := ScaledChangeFromRecords(j.Models, j.Config)
				results[ii] = &JobResult{Key: j.Key, Result: r, Err: err}
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return results
}
