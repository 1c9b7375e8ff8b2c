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
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// ReadField reads variable varName out of NetCDF file f into a dense
// array. A degenerate leading record dimension is dropped. Both
// float32 and float64 storage are accepted.
func ReadField(f *cdf.File, varName string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("patternscale: read netcdf: variable %v not in file", varName)
	}
	if dims[0] == 0 { // record dimension
		dims = dims[1:]
	}
	r := f.Reader(varName, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("patternscale: read netcdf variable %s: %v", varName, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []float64:
		copy(data.Elements, b)
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("patternscale: read netcdf variable %s: unsupported storage type %T",
			varName, buf)
	}
	return data, nil
}

// ReadDriver reads the driver variable varName out of NetCDF file f
// and reduces it to a scalar. A variable that is not already scalar is
// averaged.
func ReadDriver(f *cdf.File, varName string) (float64, error) {
	data, err := ReadField(f, varName)
	if err != nil {
		return 0, err
	}
	if len(data.Elements) == 0 {
		return 0, fmt.Errorf("patternscale: read netcdf variable %s: no data", varName)
	}
	return data.Sum() / float64(len(data.Elements)), nil
}

// WriteResults writes the output arrays of the successfully completed
// jobs in results to NetCDF storage ff, as variables
// <combination>_mean, <combination>_stderr, <combination>_signif, and
// <combination>_nvalid. attrs are added as global attributes. All
// results must share one grid shape. Failed jobs are skipped; at least
// one successful result is required.
func WriteResults(ff cdf.ReaderWriterAt, results []*JobResult, attrs map[string]string) error {
	var ok []*JobResult
	var shape []int
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}
		if shape == nil {
			shape = r.Result.Mean.Shape
		} else if !shapeEqual(r.Result.Mean.Shape, shape) {
			return fmt.Errorf("patternscale: write netcdf: %v has shape %v; expected %v",
				r.Key, r.Result.Mean.Shape, shape)
		}
		ok = append(ok, r)
	}
	if len(ok) == 0 {
		return fmt.Errorf("patternscale: write netcdf: no results to write")
	}
	if len(shape) != 2 {
		return fmt.Errorf("patternscale: write netcdf: grid shape %v is not 2-D", shape)
	}

	h := cdf.NewHeader([]string{"y", "x"}, shape)
	grid := []string{"y", "x"}
	for _, r := range ok {
		name := r.Key.VarName()
		h.AddVariable(name+"_mean", grid, []float64{0})
		h.AddAttribute(name+"_mean", "long_name",
			fmt.Sprintf("multi-model mean scaled change, %v", r.Key))
		h.AddVariable(name+"_stderr", grid, []float64{0})
		h.AddAttribute(name+"_stderr", "long_name",
			fmt.Sprintf("standard-error threshold, %v", r.Key))
		h.AddVariable(name+"_signif", grid, []int32{0})
		h.AddAttribute(name+"_signif", "long_name",
			fmt.Sprintf("significance mask, %v", r.Key))
		h.AddVariable(name+"_nvalid", grid, []int32{0})
		h.AddAttribute(name+"_nvalid", "long_name",
			fmt.Sprintf("valid model count, %v", r.Key))
	}
	for _, k := range sortKeys(attrs) {
		h.AddAttribute("", k, attrs[k])
	}
	h.Define()

	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		return fmt.Errorf("patternscale: write netcdf: %v", err)
	}
	for _, r := range ok {
		name := r.Key.VarName()
		if err := writeFloats(f, name+"_mean", r.Result.Mean); err != nil {
			return err
		}
		if err := writeFloats(f, name+"_stderr", r.Result.StdError); err != nil {
			return err
		}
		if err := writeInts(f, name+"_signif", r.Result.Significant); err != nil {
			return err
		}
		if err := writeInts(f, name+"_nvalid", r.Result.NValid); err != nil {
			return err
		}
	}
	return nil
}

func writeFloats(f *cdf.File, varName string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(varName)
	start := make([]int, len(end))
	w := f.Writer(varName, start, end)
	if _, err := w.Write(data.Elements); err != nil {
		return fmt.Errorf("patternscale: write netcdf variable %s: %v", varName, err)
	}
	return nil
}

func writeInts(f *cdf.File, varName string, data *sparse.DenseArrayInt) error {
	buf := make([]int32, len(data.Elements))
	for i, e := range data.Elements {
		buf[i] = int32(e)
	}
	end := f.Header.Lengths(varName)
	start := make([]int, len(end))
	w := f.Writer(varName, start, end)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("patternscale: write netcdf variable %s: %v", varName, err)
	}
	return nil
}

func sortKeys(m map[string]string) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
