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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/patternscale"
	"github.com/spf13/cast"
)

// ModelSpec identifies one ensemble member of one model.
type ModelSpec struct {
	Name     string
	Ensemble string
}

// Config holds the fully parsed and validated run configuration.
type Config struct {
	Variable       string
	DriverVariable string

	Percent    bool
	Confidence float64
	Epsilon    float64

	Scenarios []string
	Periods   []patternscale.Period
	Seasons   []string

	BaselinePeriod     patternscale.Period
	BaselineExperiment string

	Models []ModelSpec

	InputTemplate string
	OutputFile    string
	LogFile       string
	NumProcessors int
}

// LoadConfig unmarshals and validates a viper configuration.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		Variable:           cfg.GetString("Variable"),
		DriverVariable:     cfg.GetString("DriverVariable"),
		Percent:            cfg.GetBool("Percent"),
		Confidence:         cast.ToFloat64(cfg.Get("Confidence")),
		Epsilon:            cast.ToFloat64(cfg.Get("Epsilon")),
		Scenarios:          cfg.GetStringSlice("Scenarios"),
		Seasons:            cfg.GetStringSlice("Seasons"),
		BaselineExperiment: cfg.GetString("BaselineExperiment"),
		InputTemplate:      os.ExpandEnv(cfg.GetString("InputTemplate")),
		LogFile:            os.ExpandEnv(cfg.GetString("LogFile")),
		NumProcessors:      cfg.GetInt("NumProcessors"),
	}
	if c.Variable == "" {
		return nil, fmt.Errorf("patternscale: you need to specify the 'Variable' configuration variable")
	}
	if c.DriverVariable == "" {
		return nil, fmt.Errorf("patternscale: you need to specify the 'DriverVariable' configuration variable")
	}
	if c.InputTemplate == "" {
		return nil, fmt.Errorf("patternscale: you need to specify the 'InputTemplate' configuration variable")
	}
	if len(c.Scenarios) == 0 {
		return nil, fmt.Errorf("patternscale: you need to specify at least one scenario")
	}
	if len(c.Seasons) == 0 {
		// One annual evaluation per scenario and period.
		c.Seasons = []string{""}
	}

	for _, p := range cfg.GetStringSlice("Periods") {
		period, err := parsePeriod(p)
		if err != nil {
			return nil, err
		}
		c.Periods = append(c.Periods, period)
	}
	if len(c.Periods) == 0 {
		return nil, fmt.Errorf("patternscale: you need to specify at least one projection period")
	}
	var err error
	c.BaselinePeriod, err = parsePeriod(cfg.GetString("BaselinePeriod"))
	if err != nil {
		return nil, err
	}

	for _, m := range cfg.GetStringSlice("Models") {
		spec, err := parseModelSpec(m)
		if err != nil {
			return nil, err
		}
		c.Models = append(c.Models, spec)
	}
	if len(c.Models) < 2 {
		return nil, fmt.Errorf("patternscale: %d model(s) configured; the multi-model statistic requires at least 2",
			len(c.Models))
	}

	c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EstimatorConfig returns the estimator options this configuration
// requests.
func (c *Config) EstimatorConfig() patternscale.ScaledChangeConfig {
	return patternscale.ScaledChangeConfig{
		Percent:    c.Percent,
		Epsilon:    c.Epsilon,
		Confidence: c.Confidence,
	}
}

// parsePeriod parses a year range of the form "START-END".
func parsePeriod(s string) (patternscale.Period, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return patternscale.Period{}, fmt.Errorf("patternscale: invalid period %q; expected the form \"START-END\"", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return patternscale.Period{}, fmt.Errorf("patternscale: invalid period %q: %v", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return patternscale.Period{}, fmt.Errorf("patternscale: invalid period %q: %v", s, err)
	}
	if end < start {
		return patternscale.Period{}, fmt.Errorf("patternscale: invalid period %q: end year precedes start year", s)
	}
	return patternscale.Period{Start: start, End: end}, nil
}

// parseModelSpec parses a model identifier of the form
// "MODEL/ENSEMBLE". A bare model name implies ensemble member r1i1p1.
func parseModelSpec(s string) (ModelSpec, error) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return ModelSpec{}, fmt.Errorf("patternscale: empty model name")
		}
		return ModelSpec{Name: parts[0], Ensemble: "r1i1p1"}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return ModelSpec{}, fmt.Errorf("patternscale: invalid model %q; expected the form \"MODEL/ENSEMBLE\"", s)
		}
		return ModelSpec{Name: parts[0], Ensemble: parts[1]}, nil
	default:
		return ModelSpec{}, fmt.Errorf("patternscale: invalid model %q; expected the form \"MODEL/ENSEMBLE\"", s)
	}
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`patternscale: you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("patternscale: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// expandTemplate replaces the [MODEL], [ENSEMBLE], [EXPERIMENT],
// [SEASON], and [PERIOD] wild cards in an input file template.
func expandTemplate(template string, m ModelSpec, experiment, season string, period patternscale.Period) string {
	r := strings.NewReplacer(
		"[MODEL]", m.Name,
		"[ENSEMBLE]", m.Ensemble,
		"[EXPERIMENT]", experiment,
		"[SEASON]", season,
		"[PERIOD]", period.String(),
	)
	return r.Replace(template)
}
