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

// segalias -- aliases for colinear linedefs. All linedefs lying on the same
// supporting infinite line share one alias, so a partition candidate is
// tested once per alias per subtree instead of once per linedef. There are
// usually far fewer aliases than linedefs. Idea courtesy of Zennode
// (c) Marc Rousseau
package main

type sAlias struct {
	index int
	flip  int // 1 when the linedef's direction opposes the alias' canonical one
}

// CoLinear reports whether the seg lies on the same infinite line as the
// currently selected partition
func (w *NodesWork) CoLinear(seg *SEG) bool {
	// If they're not at the same angle (+/- 180 degrees), bag it
	if w.ANGLE&0x7FFF != int(seg.angle)&0x7FFF {
		return false
	}

	vertS := &w.vertices[seg.start]
	if w.DX == 0 {
		return int(vertS.X) == w.X
	}
	if w.DY == 0 {
		return int(vertS.Y) == w.Y
	}

	// Cross product of the partition direction and the offset to seg's start.
	// Within one unit of the line counts as on it - same tolerance WhichSide
	// uses, or the two would disagree
	y := w.DX*(int(vertS.Y)-w.Y) - w.DY*(int(vertS.X)-w.X)
	return y == 0 || (y > -w.H2 && y < w.H2)
}

// GetLineDefAliases assigns every linedef that produced segs an alias. The
// returned list holds one representative seg per alias; entry past the last
// linedef is a sentinel with index -1 so that synthetic segs used to probe
// sector rectangles never match a real alias
func (w *NodesWork) GetLineDefAliases() []*SEG {
	w.noAliases = 0
	lineDefCount := w.level.LineDefCount()
	w.lineDefAlias = make([]sAlias, lineDefCount+1)
	segAlias := make([]*SEG, 0, lineDefCount)

	refIdx := 0
	for i := 0; i < lineDefCount; i++ {
		// Skip lines that have been ignored
		if refIdx >= w.segCount || w.segs[refIdx].lineDef != i {
			continue
		}
		refSeg := &w.segs[refIdx]
		w.ComputeStaticVariables(refSeg)

		x := w.noAliases - 1
		for ; x >= 0; x-- {
			if w.CoLinear(segAlias[x]) {
				break
			}
		}
		if x == -1 {
			w.lineDefAlias[i].flip = 0
			x = w.noAliases
			w.noAliases++
			segAlias = append(segAlias, refSeg)
		} else if refSeg.angle == segAlias[x].angle {
			w.lineDefAlias[i].flip = 0
		} else {
			w.lineDefAlias[i].flip = 1
		}
		w.lineDefAlias[i].index = x

		refIdx++
		if refIdx < w.segCount && w.segs[refIdx].lineDef == i {
			refIdx++
		}
	}
	w.lineDefAlias[lineDefCount].index = -1

	return segAlias
}
