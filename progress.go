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

// Terminal progress surface of the nodes builder. The builder calls these
// at fixed points of the recursion (descend right, descend left, return,
// leaf done), so the animation is a pure function of the build and carries
// no timing dependence. A nil *ProgressMeter swallows every call, which is
// what test code and -p- get.
package main

import (
	"fmt"
	"os"
)

var progressSpinner = [4]byte{'|', '/', '-', '\\'}

type ProgressMeter struct {
	depth    int // current depth in the BSP recursion
	maxDepth int
	spinIdx  int
	done     int // leaves completed
	dirty    bool
}

func CreateProgressMeter(enabled bool) *ProgressMeter {
	if !enabled {
		return nil
	}
	return &ProgressMeter{}
}

// Status prints the stage banner ("Creating SEGS ... " and the like)
func (pm *ProgressMeter) Status(msg string) {
	if pm == nil {
		Log.Verbose(1, "%s\n", msg)
		return
	}
	pm.clearLine()
	fmt.Fprintf(os.Stdout, "%s\n", msg)
}

// ShowProgress advances the spinner. Called from the inner candidate loops
// every 16 candidates
func (pm *ProgressMeter) ShowProgress() {
	if pm == nil {
		return
	}
	pm.spinIdx = (pm.spinIdx + 1) & 3
	fmt.Fprintf(os.Stdout, "\r%c depth %3d  done %5d", progressSpinner[pm.spinIdx],
		pm.depth, pm.done)
	pm.dirty = true
}

func (pm *ProgressMeter) GoRight() {
	if pm == nil {
		return
	}
	pm.depth++
	if pm.depth > pm.maxDepth {
		pm.maxDepth = pm.depth
	}
}

func (pm *ProgressMeter) GoLeft() {
	if pm == nil {
		return
	}
	// Right subtree returned already, depth stays - we only note the turn
}

func (pm *ProgressMeter) Backup() {
	if pm == nil {
		return
	}
	pm.depth--
}

// ShowDone is called once per finished leaf or completed interior node
func (pm *ProgressMeter) ShowDone() {
	if pm == nil {
		return
	}
	pm.done++
}

// Finish erases the animation line and reports the depth high-water mark
func (pm *ProgressMeter) Finish() {
	if pm == nil {
		return
	}
	pm.clearLine()
	fmt.Fprintf(os.Stdout, "Done (max depth %d).\n", pm.maxDepth)
}

func (pm *ProgressMeter) clearLine() {
	if pm.dirty {
		fmt.Fprintf(os.Stdout, "\r%*s\r", 30, "")
		pm.dirty = false
	}
}
