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

// Package scaleutil holds the configuration and command-line interface
// for the PatternScale pattern-scaling tool.
package scaleutil

import (
	"fmt"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/patternscale"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger *logrus.Logger

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	// Options are the configuration options available to PatternScale.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the name of the NetCDF variable holding the
              time-mean field to be scaled, e.g. "tas" or "pr".`,
			defaultVal: "tas",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DriverVariable",
			usage: `
              DriverVariable is the name of the NetCDF variable holding the
              global scalar driver for each model and period, typically
              global mean temperature. A non-scalar variable is averaged.`,
			defaultVal: "tas_global",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Percent",
			usage: `
              Percent expresses the per-model change as a percentage of the
              model's baseline value instead of a raw difference.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Confidence",
			usage: `
              Confidence is the two-sided confidence level used for the
              Student's-t multiplier in the standard-error threshold.`,
			defaultVal: patternscale.DefaultConfidence,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Epsilon",
			usage: `
              Epsilon is the absolute-value threshold below which a baseline
              cell value is treated as zero and excluded for that model.`,
			defaultVal: patternscale.DefaultEpsilon,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scenarios",
			usage: `
              Scenarios lists the projection experiments to evaluate,
              e.g. rcp26, rcp45, rcp85.`,
			defaultVal: []string{"rcp45", "rcp85"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Periods",
			usage: `
              Periods lists the projection year ranges to evaluate, each in
              the form "START-END", e.g. "2040-2069".`,
			defaultVal: []string{"2040-2069", "2070-2099"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Seasons",
			usage: `
              Seasons lists the season labels to evaluate, e.g. DJF, JJA.
              If empty, one annual evaluation is performed per scenario and
              period.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BaselinePeriod",
			usage: `
              BaselinePeriod is the baseline year range in the form
              "START-END", e.g. "1986-2005".`,
			defaultVal: "1986-2005",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BaselineExperiment",
			usage: `
              BaselineExperiment is the experiment providing each model's
              baseline period.`,
			defaultVal: "historical",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Models",
			usage: `
              Models lists the ensemble members to include, each in the form
              "MODEL/ENSEMBLE", e.g. "CESM1-CAM5/r1i1p1". A bare model name
              implies ensemble member r1i1p1.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "InputTemplate",
			usage: `
              InputTemplate is the path to the per-model time-mean input
              files. [MODEL], [ENSEMBLE], [EXPERIMENT], [SEASON], and
              [PERIOD] are used as wild cards. Can include environment
              variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the NetCDF output file. Can include
              environment variables.`,
			defaultVal: "patternscale_output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the log file. If empty, the log is
              written to the console only.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumProcessors",
			usage: `
              NumProcessors is the number of processors to use when
              evaluating combinations. If <= 0, all available processors
              are used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PATTERNSCALE")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("patternscale: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "patternscale",
	Short: "Multi-model pattern-scaled climate change statistics.",
	Long: `PatternScale computes, for an ensemble of climate models, the
multi-model mean change of a field per unit change in a global driver,
together with a standard-error threshold and a significance mask.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PATTERNSCALE_var' where
'var' is the name of the variable to be set. Many configuration variables are
additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration
information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of PatternScale.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("PatternScale v%s\n", patternscale.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute scaled changes for all configured combinations.",
	Long: `run reads the per-model time-mean input files for every configured
scenario, period, and season combination, computes the scaled multi-model
change statistic for each combination, and writes the results to a NetCDF
output file. A failure in one combination does not prevent the others from
being evaluated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(c)
	},
	DisableAutoGenTag: true,
}
