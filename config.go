// Copyright (C) 2025, VigilantDoomer
//
// This file is part of ZenNode-Go program.
//
// ZenNode-Go is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// ZenNode-Go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ZenNode-Go.  If not, see <https://www.gnu.org/licenses/>.
package main

import (
	"os"
	"strconv"
)

const VERSION = "0.91"

/*
-n Nodes building parameters.
	a= Partition selection algorithm.
		1 Classic - minimize splits (default)
		2 Quality - balance splits against sector balance
		3 Lite - classic scoring over a sliding window of candidates
	u Force subsectors to contain segs from a single sector each.
-r Reduce linedefs: don't make segs from 2-sided lines that have the same
	sector on both sides and no middle texture.
-p Show progress animation while building.
-o Specify output file (next argument). Default is to derive one from the
	input file name.
-v Add verbosity to text output. Use multiple times for increased verbosity.
*/

const (
	BSP_CLASSIC = 1
	BSP_QUALITY = 2
	BSP_LITE    = 3
)

type ProgramConfig struct {
	InputFileName    string
	OutputFileName   string
	Algorithm        int
	ShowProgress     bool
	ReduceLineDefs   bool
	UniqueSubsectors bool
	VerbosityLevel   int
}

var config *ProgramConfig = DefaultConfig()

func DefaultConfig() *ProgramConfig {
	return &ProgramConfig{
		InputFileName:    "",
		OutputFileName:   "",
		Algorithm:        BSP_CLASSIC,
		ShowProgress:     false,
		ReduceLineDefs:   false,
		UniqueSubsectors: false,
		VerbosityLevel:   0,
	}
}

// Configure must be called before the global config is legitimately accessed
func Configure() bool {
	config = DefaultConfig()
	return config.FromCommandLine()
}

// The scoring constants of the Zen metric. The defaults were derived
// empirically by Marc Rousseau from the wads he had at his disposal, the
// environment variables to replace them date back to the original program
// as well. X2 and Y2 are divisors and get clamped to 1 by CreateNODES
// when overridden to zero
func ScoringConstants() (X [4]int, Y [4]int) {
	X = [4]int{24, 5, 1, 25}
	Y = [4]int{1, 7, 1, 0}
	names := [4]string{"1", "2", "3", "4"}
	for i := 0; i < 4; i++ {
		if s := os.Getenv("ZEN_X" + names[i]); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				X[i] = v
			}
		}
		if s := os.Getenv("ZEN_Y" + names[i]); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				Y[i] = v
			}
		}
	}
	return X, Y
}
