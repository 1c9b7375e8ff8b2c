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

package scaleutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/patternscale"
)

// Run evaluates the scaled-change statistic for every configured
// scenario × period × season combination and writes the results to the
// configured NetCDF output file. Combinations are independent: a
// failure in one is logged and reported but does not prevent the
// others from being evaluated and written.
func Run(c *Config) error {
	if c.LogFile != "" {
		lf, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("patternscale: problem opening log file: %v", err)
		}
		defer lf.Close()
		logger.SetOutput(io.MultiWriter(os.Stderr, lf))
	}

	var jobs []*patternscale.Job
	var failures []string
	nCombinations := 0
	for _, scenario := range c.Scenarios {
		for _, period := range c.Periods {
			for _, season := range c.Seasons {
				nCombinations++
				key := patternscale.Combination{Scenario: scenario, Period: period, Season: season}
				models, err := loadCombination(c, scenario, period, season)
				if err != nil {
					logger.WithField("combination", key.String()).Error(err)
					failures = append(failures, fmt.Sprintf("%v: %v", key, err))
					continue
				}
				jobs = append(jobs, &patternscale.Job{
					Key:    key,
					Models: models,
					Config: c.EstimatorConfig(),
				})
			}
		}
	}

	logger.Infof("evaluating %d of %d combinations with %d models each",
		len(jobs), nCombinations, len(c.Models))
	results := patternscale.RunJobs(jobs, c.NumProcessors)
	for _, r := range results {
		if r.Err != nil {
			logger.WithField("combination", r.Key.String()).Error(r.Err)
			failures = append(failures, fmt.Sprintf("%v: %v", r.Key, r.Err))
			continue
		}
		logger.WithField("combination", r.Key.String()).Info("computed scaled change")
	}

	ff, err := os.Create(c.OutputFile)
	if err != nil {
		return fmt.Errorf("patternscale: problem creating output file: %v", err)
	}
	defer ff.Close()
	if err := patternscale.WriteResults(ff, results, map[string]string{
		"title":    fmt.Sprintf("scaled change in %s per unit change in %s", c.Variable, c.DriverVariable),
		"source":   "PatternScale v" + patternscale.Version,
		"baseline": fmt.Sprintf("%s %v", c.BaselineExperiment, c.BaselinePeriod),
	}); err != nil {
		return err
	}
	logger.Infof("wrote %s", c.OutputFile)

	if len(failures) > 0 {
		return fmt.Errorf("patternscale: %d of %d combinations failed:\n\t%s",
			len(failures), nCombinations, strings.Join(failures, "\n\t"))
	}
	return nil
}

// loadCombination reads the baseline and projection records for every
// configured model and pairs them up.
func loadCombination(c *Config, scenario string, period patternscale.Period, season string) ([]*patternscale.ModelRecord, error) {
	var projection, baseline []*patternscale.FieldRecord
	for _, m := range c.Models {
		p, err := loadFieldRecord(c, m, scenario, period, season)
		if err != nil {
			return nil, err
		}
		projection = append(projection, p)
		b, err := loadFieldRecord(c, m, c.BaselineExperiment, c.BaselinePeriod, season)
		if err != nil {
			return nil, err
		}
		baseline = append(baseline, b)
	}
	return patternscale.MatchModels(projection, baseline)
}

// loadFieldRecord reads one model's time-mean field and driver value
// for one experiment and period.
func loadFieldRecord(c *Config, m ModelSpec, experiment string, period patternscale.Period, season string) (*patternscale.FieldRecord, error) {
	path := expandTemplate(c.InputTemplate, m, experiment, season, period)
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("patternscale: problem opening input file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, fmt.Errorf("patternscale: problem reading input file %s: %v", path, err)
	}
	field, err := patternscale.ReadField(f, c.Variable)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	driver, err := patternscale.ReadDriver(f, c.DriverVariable)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	logger.WithFields(logrus.Fields{
		"model": m.Name, "ensemble": m.Ensemble, "experiment": experiment,
	}).Debugf("read %s", path)
	return &patternscale.FieldRecord{
		Model:      m.Name,
		Experiment: experiment,
		Ensemble:   m.Ensemble,
		StartYear:  period.Start,
		Season:     season,
		Period:     period,
		Field:      field,
		Driver:     driver,
	}, nil
}
