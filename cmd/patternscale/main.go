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

// Command patternscale is a command-line interface for computing
// multi-model pattern-scaled climate change statistics.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/patternscale/scaleutil"
)

func main() {
	if err := scaleutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
