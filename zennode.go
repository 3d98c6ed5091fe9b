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

// -- This file is where the program entry is.
// ZenNode-Go is a faithful port of the NODES builder of ZenNode 1.2.1
// (c) Marc Rousseau: same three partition selection algorithms, same
// linedef alias and sector sideness machinery, same arena discipline. What
// it deliberately doesn't port: BLOCKMAP and REJECT building (those lumps
// are copied through untouched), and the OS/2-era console handling.
package main

import (
	"os"
	"path/filepath"
	"strings"
)

func main() {
	if !Configure() {
		os.Exit(1)
	}

	// Do we have a file?
	if config.InputFileName == "" {
		PrintUsage()
		os.Exit(1)
	}
	config.InputFileName, _ = filepath.Abs(config.InputFileName)
	if config.OutputFileName == "" {
		config.OutputFileName = defaultOutputName(config.InputFileName)
	}
	config.OutputFileName, _ = filepath.Abs(config.OutputFileName)
	if config.OutputFileName == config.InputFileName {
		Log.Fatal("Output file would overwrite the input file - specify a different one with -o.\n")
	}

	Log.Printf("ZenNode-Go ver %s\n", VERSION)

	wad, err := LoadWAD(config.InputFileName)
	if err != nil {
		Log.Fatal("An error has occured while trying to read %s: %s\n",
			config.InputFileName, err.Error())
	}

	levels := wad.FindLevels()
	if len(levels) == 0 {
		Log.Fatal("Unable to find any levels in %s - aborting.\n",
			config.InputFileName)
	}

	for cur := 0; cur < len(levels); cur++ {
		// ReplaceLevel renumbers the directory, so re-locate the levels on
		// every pass and go by ordinal
		levels = wad.FindLevels()
		sched := levels[cur]
		level, err := LoadLevel(wad, sched)
		if err != nil {
			Log.Error("Level %s couldn't be loaded and is copied unchanged: %s\n",
				wad.Lumps[sched.MarkerIdx].NameString(), err.Error())
			continue
		}
		Log.Printf("Processing level %s:\n", level.Name)

		CreateNODES(level, optionsForLevel(level))

		Log.Printf("  %5d vertices, %5d segs, %5d subsectors, %5d nodes\n",
			level.VertexCount(), len(level.Segs), len(level.SubSectors),
			len(level.Nodes))

		wad.ReplaceLevel(sched, level)
	}

	if err := wad.SaveWAD(config.OutputFileName); err != nil {
		Log.Fatal("An error has occured while trying to write %s: %s\n",
			config.OutputFileName, err.Error())
	}
	Log.Printf("%s written.\n", config.OutputFileName)
}

func defaultOutputName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".out" + ext
}

// optionsForLevel derives per-level builder options from the global config
// plus what the level itself says
func optionsForLevel(level *DoomLevel) *BSPOptions {
	options := &BSPOptions{
		Algorithm:      config.Algorithm,
		ShowProgress:   config.ShowProgress,
		ReduceLineDefs: config.ReduceLineDefs,
	}

	// Scrolling walls must not be split, or the two halves scroll out of
	// sync with each other
	var dontSplit []bool
	for i := range level.LineDefs {
		if level.LineDefs[i].Type == LT_SCROLLING_WALL {
			if dontSplit == nil {
				dontSplit = make([]bool, level.LineDefCount())
			}
			dontSplit[i] = true
		}
	}
	options.DontSplit = dontSplit

	if config.UniqueSubsectors {
		keepUnique := make([]bool, level.SectorCount())
		for i := range keepUnique {
			keepUnique[i] = true
		}
		options.KeepUnique = keepUnique
	}

	return options
}
