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

// sideness -- which side of the partition line things are on. Contains the
// exact-integer endpoint classifier (the hot path of the whole builder), and
// the per-(alias,sector) cache that lets WhichSide answer for entire sectors
// without arithmetic. Port of Zennode's WhichSide machinery
// (c) Marc Rousseau
package main

import (
	"math"
	"sort"
)

const SIDE_LEFT = -1
const SIDE_SPLIT = 0
const SIDE_RIGHT = 1
const SIDE_UNKNOWN = -2

const SIDE_NORMAL = 0
const SIDE_FLIPPED = 1

// Round to nearest with halves away from zero, truncating like a C cast
func roundToInt(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// BAM angle of the direction (dx,dy)
func ComputeAngle(dx, dy int) BAM {
	if dy == 0 {
		if dx < 0 {
			return BAM180
		}
		return 0
	}
	if dx == 0 {
		if dy < 0 {
			return BAM270
		}
		return BAM90
	}
	v := math.Atan2(float64(dy), float64(dx)) * float64(BAM180) / math.Pi
	if dy < 0 {
		v -= 0.5
	} else {
		v += 0.5
	}
	return BAM(uint16(int(v) & 0xFFFF))
}

// ComputeStaticVariables caches the partition scalars used by every
// classification against the currently selected partition seg:
//
//	(X,Y) start vertex, (DX,DY) direction, ANGLE,
//	H2 - scale of the cross product one unit away from the line,
//	C - the line's constant term, kept in floating point because the
//	    intersection formulas need 50 bits
func (w *NodesWork) ComputeStaticVariables(pSeg *SEG) {
	w.currentAlias = &w.lineDefAlias[pSeg.lineDef]
	if w.sideInfo != nil {
		w.currentSide = w.sideInfo[w.currentAlias.index]
	} else {
		w.currentSide = nil
	}
	if pSeg.flip^w.currentAlias.flip != 0 {
		w.currentFlipped = SIDE_FLIPPED
	} else {
		w.currentFlipped = SIDE_NORMAL
	}

	vertS := &w.vertices[pSeg.start]
	vertE := &w.vertices[pSeg.end]
	w.ANGLE = int(pSeg.angle)
	w.X = int(vertS.X)
	w.Y = int(vertS.Y)
	w.DX = int(vertE.X) - int(vertS.X)
	w.DY = int(vertE.Y) - int(vertS.Y)
	w.H2 = int(math.Hypot(float64(w.DX), float64(w.DY)))
	w.C = float64(int(vertE.Y)*int(vertS.X)) - float64(int(vertE.X)*int(vertS.Y))
}

// IsZero is only called when an end-point is very close to the partition
// line. The cross product test is more accurate than the algorithm that
// performs the actual split, so a point it flags as barely off the line may
// land exactly on it once rounded. Intersect the seg's supporting line with
// the partition the same way DivideSeg does and report on-line iff the
// rounded intersection equals the tested endpoint - this keeps scoring and
// splitting in agreement
func (w *NodesWork) IsZero(seg *SEG, vx, vy int, side int) int {
	vertS := &w.vertices[seg.start]
	vertE := &w.vertices[seg.end]

	dx := float64(int(vertE.X) - int(vertS.X))
	dy := float64(int(vertE.Y) - int(vertS.Y))

	// det == 0 means the line is parallel, assume it's also co-linear
	det := dx*float64(w.DY) - dy*float64(w.DX)
	if det == 0.0 {
		return 0
	}

	c := float64(int(vertE.Y)*int(vertS.X)) - float64(int(vertE.X)*int(vertS.Y))
	x := (w.C*dx - c*float64(w.DX)) / det
	y := (w.C*dy - c*float64(w.DY)) / det

	if roundToInt(x) == vx && roundToInt(y) == vy {
		return 0
	}
	return side
}

// whichSideSlow determines which side of the partition line the given SEG
// lies on by rotating it so the partition lies along the X-axis and checking
// the endpoint offsets.
//
// Returns:
//
//	SIDE_LEFT  - SEG is on the left of the partition
//	SIDE_SPLIT - SEG is split by the partition
//	SIDE_RIGHT - SEG is on the right of the partition
func (w *NodesWork) whichSideSlow(seg *SEG) int {
	vertS := &w.vertices[seg.start]
	vertE := &w.vertices[seg.end]
	var y1, y2 int

	if w.DX == 0 {
		if w.DY > 0 {
			y1 = w.X - int(vertS.X)
			y2 = w.X - int(vertE.X)
		} else {
			y1 = int(vertS.X) - w.X
			y2 = int(vertE.X) - w.X
		}
	} else if w.DY == 0 {
		if w.DX > 0 {
			y1 = int(vertS.Y) - w.Y
			y2 = int(vertE.Y) - w.Y
		} else {
			y1 = w.Y - int(vertS.Y)
			y2 = w.Y - int(vertE.Y)
		}
	} else {
		t1 := w.DX*(int(vertS.Y)-w.Y) - w.DY*(int(vertS.X)-w.X)
		t2 := w.DX*(int(vertE.Y)-w.Y) - w.DY*(int(vertE.X)-w.X)

		if t1 <= -w.H2 {
			y1 = -1
		} else if t1 >= w.H2 {
			y1 = 1
		} else if t1 == 0 || t2 == 0 {
			y1 = 0
		} else {
			y1 = w.IsZero(seg, int(vertS.X), int(vertS.Y), t1)
		}
		if t2 <= -w.H2 {
			y2 = -1
		} else if t2 >= w.H2 {
			y2 = 1
		} else if t2 == 0 || t1 == 0 {
			y2 = 0
		} else {
			y2 = w.IsZero(seg, int(vertE.X), int(vertE.Y), t2)
		}

		// IsZero leaves the raw cross product in place for a near-line point
		// that doesn't round onto the line. When the other endpoint IS on the
		// line, treat the raw value as on-line too rather than declaring a
		// split one rounding unit wide
		if (y1 < -1 || y1 > 1) && y2 == 0 {
			y1 = 0
		}
		if (y2 < -1 || y2 > 1) && y1 == 0 {
			y2 = 0
		}
		if (y1 < -1 || y1 > 1) && (y2 < -1 || y2 > 1) {
			y1 = 0
			y2 = 0
		}
	}

	// If it's co-linear, decide based on direction
	if y1 == 0 && y2 == 0 {
		if int(seg.angle) == w.ANGLE {
			return SIDE_RIGHT
		}
		return SIDE_LEFT
	}

	// Otherwise:
	//   Left   -1 : (y1 >= 0) && (y2 >= 0)
	//   Both    0 : opposite non-zero signs
	//   Right   1 : (y1 <= 0) && (y2 <= 0)
	if y1 < 0 {
		if y2 <= 0 {
			return SIDE_RIGHT
		}
		return SIDE_SPLIT
	}
	if y1 == 0 {
		if y2 <= 0 {
			return SIDE_RIGHT
		}
		return SIDE_LEFT
	}
	if y2 >= 0 {
		return SIDE_LEFT
	}
	return SIDE_SPLIT
}

// WhichSide classifies a seg against the current partition. A quick check is
// made based on the sector containing the SEG; only when the sector is cut
// by the partition's line does the endpoint arithmetic run
func (w *NodesWork) WhichSide(seg *SEG) int {
	if w.currentSide != nil {
		side := int(w.currentSide[seg.sector])
		// side & 1 implies either SIDE_LEFT or SIDE_RIGHT
		if side&1 != 0 {
			if w.currentFlipped == SIDE_FLIPPED {
				return -side
			}
			return side
		}
	}

	// A seg on the partition's own line: sides follow from the flip bits
	// alone. An alias can be traversed in either direction - a seg on the
	// canonical line's left appears on the right when the partition is the
	// same line traversed the opposite way
	alias := &w.lineDefAlias[seg.lineDef]
	if alias.index == w.currentAlias.index {
		isFlipped := SIDE_NORMAL
		if seg.flip^alias.flip != 0 {
			isFlipped = SIDE_FLIPPED
		}
		if w.currentFlipped == isFlipped {
			return SIDE_RIGHT
		}
		return SIDE_LEFT
	}

	return w.whichSideSlow(seg)
}

// Per-sector containment info used to seed the side-info cache top-down
type sSectorInfo struct {
	index     int
	subSector []int // sectors whose bounding rectangle this one contains
}

type sectorInfoByContainment []sSectorInfo

func (x sectorInfoByContainment) Len() int { return len(x) }
func (x sectorInfoByContainment) Less(i, j int) bool {
	if len(x[i].subSector) != len(x[j].subSector) {
		return len(x[i].subSector) > len(x[j].subSector)
	}
	return x[i].index < x[j].index
}
func (x sectorInfoByContainment) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

// GetSectorBounds computes a bounding rectangle for every sector
func (w *NodesWork) GetSectorBounds() []wBound {
	bound := make([]wBound, w.sectorCount)
	for i := range bound {
		bound[i].Maxx = -32768
		bound[i].Maxy = -32768
		bound[i].Minx = 32767
		bound[i].Miny = 32767
	}

	level := w.level
	for i := range level.LineDefs {
		lineDef := &level.LineDefs[i]
		vertS := &level.Vertices[lineDef.Start]
		vertE := &level.Vertices[lineDef.End]

		loX, hiX := vertS.X, vertS.X
		if loX < vertE.X {
			hiX = vertE.X
		} else {
			loX = vertE.X
		}
		loY, hiY := vertS.Y, vertS.Y
		if loY < vertE.Y {
			hiY = vertE.Y
		} else {
			loY = vertE.Y
		}

		for s := 0; s < 2; s++ {
			index := lineDef.SideDef[s]
			if index == NO_SIDEDEF {
				continue
			}
			sec := level.SideDefs[index].Sector
			if loX < bound[sec].Minx {
				bound[sec].Minx = loX
			}
			if hiX > bound[sec].Maxx {
				bound[sec].Maxx = hiX
			}
			if loY < bound[sec].Miny {
				bound[sec].Miny = loY
			}
			if hiY > bound[sec].Maxy {
				bound[sec].Maxy = hiY
			}
		}
	}
	return bound
}

// GetSectorInfo determines which sectors contain which other sectors
// (by bounding rectangle), then sorts so the sector containing the most
// others comes first
func (w *NodesWork) GetSectorInfo(bound []wBound) []sSectorInfo {
	info := make([]sSectorInfo, w.sectorCount)
	for i := range info {
		info[i].index = i
		for j := range bound {
			if bound[j].Minx >= bound[i].Minx && bound[j].Maxx <= bound[i].Maxx &&
				bound[j].Miny >= bound[i].Miny && bound[j].Maxy <= bound[i].Maxy {
				info[i].subSector = append(info[i].subSector, j)
			}
		}
	}
	sort.Sort(sectorInfoByContainment(info))
	return info
}

// CreateSideInfo fills the alias x sector matrix of side labels. A sector's
// bounding rectangle is classified by running its lower and upper edges
// through WhichSide as synthetic segs; when both edges land on one side the
// label propagates to every still-unknown sector the rectangle contains
func (w *NodesWork) CreateSideInfo(bound []wBound, sectInfo []sSectorInfo,
	aliasList []*SEG) {
	// Two scratch vertices at the end of the pool give the synthetic seg
	// real coordinates to point at
	v := len(w.vertices)
	w.vertices = append(w.vertices, wVertex{}, wVertex{})
	testSeg := &SEG{
		lineDef: w.level.LineDefCount(), // resolves to the sentinel alias
		start:   v,
		end:     v + 1,
	}

	w.sideInfo = make([][]int8, w.noAliases)
	for i := range w.sideInfo {
		row := make([]int8, w.sectorCount)
		for j := range row {
			row[j] = SIDE_UNKNOWN
		}
		w.sideInfo[i] = row
	}

	for i := 0; i < w.noAliases; i++ {
		partSeg := *aliasList[i]
		w.ComputeStaticVariables(&partSeg)
		for j := 0; j < w.sectorCount; j++ {
			s := sectInfo[j].index
			if w.sideInfo[i][s] != SIDE_UNKNOWN {
				continue
			}
			testSeg.sector = s
			// Bounding box around the sector, check the lower edge 1st
			w.vertices[v] = wVertex{X: bound[s].Minx, Y: bound[s].Miny}
			w.vertices[v+1] = wVertex{X: bound[s].Maxx, Y: bound[s].Miny}
			side1 := w.WhichSide(testSeg)
			if side1 == SIDE_SPLIT {
				w.sideInfo[i][s] = SIDE_SPLIT
				continue
			}
			// Now the upper edge
			w.vertices[v].Y = bound[s].Maxy
			w.vertices[v+1].Y = bound[s].Maxy
			side2 := w.WhichSide(testSeg)
			if side2 != side1 {
				w.sideInfo[i][s] = SIDE_SPLIT
				continue
			}
			// Whole rectangle is on one side - so is everything it contains
			for _, sub := range sectInfo[j].subSector {
				if w.sideInfo[i][sub] == SIDE_UNKNOWN {
					w.sideInfo[i][sub] = int8(side1)
				}
			}
		}
	}

	w.vertices = w.vertices[:v]
}
