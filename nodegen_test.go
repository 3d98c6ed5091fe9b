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

// nodegen_test
package main

import (
	"math"
	"reflect"
	"testing"
)

// One linedef of a test map. front/back are sector numbers, -1 for no side
type mapLine struct {
	start, end  int
	front, back int
	typ         uint16
}

// makeTestLevel builds a DoomLevel the way the wad loader would have. Every
// referenced side gets its own sidedef; one-sided lines get a visible middle
// texture
func makeTestLevel(vertices []wVertex, lines []mapLine, sectorCount int) *DoomLevel {
	level := &DoomLevel{Name: "MAP01"}
	level.Vertices = append(level.Vertices, vertices...)
	level.Sectors = make([]wSector, sectorCount)
	for _, line := range lines {
		ld := wLineDef{
			Start:   uint16(line.start),
			End:     uint16(line.end),
			Type:    line.typ,
			SideDef: [2]uint16{NO_SIDEDEF, NO_SIDEDEF},
		}
		if line.front >= 0 {
			sd := wSideDef{Sector: uint16(line.front)}
			if line.back < 0 {
				copy(sd.Text3[:], "STARTAN2")
			}
			ld.SideDef[0] = uint16(len(level.SideDefs))
			level.SideDefs = append(level.SideDefs, sd)
		}
		if line.back >= 0 {
			ld.Flags |= LF_TWOSIDED
			ld.SideDef[1] = uint16(len(level.SideDefs))
			level.SideDefs = append(level.SideDefs, wSideDef{Sector: uint16(line.back)})
		}
		level.LineDefs = append(level.LineDefs, ld)
	}
	return level
}

// segSector resolves the sector an output seg was made from
func segSector(level *DoomLevel, seg *wSegs) uint16 {
	side := level.LineDefs[seg.LineDef].SideDef[seg.Flip]
	return level.SideDefs[side].Sector
}

// collectChildSegs gathers the output segs reachable through a node child id
func collectChildSegs(level *DoomLevel, child uint16, out *[]int) {
	if child&SUBSECTOR_MASK != 0 {
		ss := level.SubSectors[child&0x7FFF]
		for i := 0; i < int(ss.Num); i++ {
			*out = append(*out, int(ss.First)+i)
		}
		return
	}
	node := level.Nodes[child]
	collectChildSegs(level, node.Child[0], out)
	collectChildSegs(level, node.Child[1], out)
}

// checkLevel verifies the structural invariants every build must satisfy.
// checkSides additionally verifies that each child's segs lie on the correct
// side of the parent's partition - that one doesn't hold for trees with
// keep-unique forced splits, whose partitions are arbitrary
func checkLevel(t *testing.T, level *DoomLevel, checkSides bool) {
	t.Helper()
	segCount := len(level.Segs)

	// Subsectors must cover the seg array with disjoint contiguous runs
	covered := make([]bool, segCount)
	total := 0
	for si, ss := range level.SubSectors {
		total += int(ss.Num)
		for i := 0; i < int(ss.Num); i++ {
			idx := int(ss.First) + i
			if idx >= segCount {
				t.Fatalf("subsector %d references seg %d beyond segCount %d", si, idx, segCount)
			}
			if covered[idx] {
				t.Fatalf("seg %d belongs to more than one subsector", idx)
			}
			covered[idx] = true
		}
	}
	if total != segCount {
		t.Errorf("subsectors cover %d segs, have %d", total, segCount)
	}

	// Segs reference valid distinct vertices
	for i := range level.Segs {
		seg := &level.Segs[i]
		if seg.Start == seg.End {
			t.Errorf("seg %d is degenerate (vertex %d twice)", i, seg.Start)
		}
		if int(seg.Start) >= len(level.Vertices) || int(seg.End) >= len(level.Vertices) {
			t.Fatalf("seg %d references missing vertex", i)
		}
		if int(seg.LineDef) >= len(level.LineDefs) {
			t.Fatalf("seg %d references missing linedef", i)
		}
	}

	// Tree soundness: children valid, parent id strictly greater
	for i := range level.Nodes {
		node := &level.Nodes[i]
		for side := 0; side < 2; side++ {
			child := node.Child[side]
			if child&SUBSECTOR_MASK != 0 {
				if int(child&0x7FFF) >= len(level.SubSectors) {
					t.Fatalf("node %d references missing subsector %d", i, child&0x7FFF)
				}
			} else {
				if int(child) >= len(level.Nodes) {
					t.Fatalf("node %d references missing node %d", i, child)
				}
				if int(child) >= i {
					t.Errorf("node %d has child node %d with id not smaller", i, child)
				}
			}
		}
	}

	// Each child bbox tightly bounds the segs reachable through it, and the
	// segs are on the correct side of the partition
	for i := range level.Nodes {
		node := &level.Nodes[i]
		h2 := int(math.Hypot(float64(node.Dx), float64(node.Dy)))
		for side := 0; side < 2; side++ {
			var segIdxs []int
			collectChildSegs(level, node.Child[side], &segIdxs)
			if len(segIdxs) == 0 {
				continue
			}
			minx, maxx := int16(32767), int16(-32768)
			miny, maxy := int16(32767), int16(-32768)
			for _, idx := range segIdxs {
				seg := &level.Segs[idx]
				for _, vi := range []uint16{seg.Start, seg.End} {
					v := level.Vertices[vi]
					if v.X < minx {
						minx = v.X
					}
					if v.X > maxx {
						maxx = v.X
					}
					if v.Y < miny {
						miny = v.Y
					}
					if v.Y > maxy {
						maxy = v.Y
					}
					if checkSides {
						tv := int(node.Dx)*(int(v.Y)-int(node.Y)) -
							int(node.Dy)*(int(v.X)-int(node.X))
						if side == 0 && tv >= h2 {
							t.Errorf("node %d right child seg %d vertex (%d,%d) on wrong side",
								i, idx, v.X, v.Y)
						}
						if side == 1 && tv <= -h2 {
							t.Errorf("node %d left child seg %d vertex (%d,%d) on wrong side",
								i, idx, v.X, v.Y)
						}
					}
				}
			}
			box := node.Side[side]
			if box.Minx != minx || box.Maxx != maxx || box.Miny != miny || box.Maxy != maxy {
				t.Errorf("node %d side %d bbox (%d,%d)-(%d,%d), segs span (%d,%d)-(%d,%d)",
					i, side, box.Minx, box.Miny, box.Maxx, box.Maxy,
					minx, miny, maxx, maxy)
			}
		}
	}
}

// The empty room: four walls, one sector. Everything is a convex boundary,
// no partition gets chosen, the whole map is one subsector
func TestEmptyRoom(t *testing.T) {
	vertices := []wVertex{{0, 0}, {0, 1024}, {1024, 1024}, {1024, 0}}
	lines := []mapLine{
		{0, 1, 0, -1, 0}, // left
		{1, 2, 0, -1, 0}, // top
		{2, 3, 0, -1, 0}, // right
		{3, 0, 0, -1, 0}, // bottom
	}
	level := makeTestLevel(vertices, lines, 1)
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})

	if len(level.Segs) != 4 {
		t.Errorf("expected 4 segs, got %d", len(level.Segs))
	}
	if len(level.SubSectors) != 1 {
		t.Errorf("expected 1 subsector, got %d", len(level.SubSectors))
	}
	if len(level.Nodes) != 0 {
		t.Errorf("expected 0 interior nodes, got %d", len(level.Nodes))
	}
	if len(level.Vertices) != 4 {
		t.Errorf("expected vertices to stay at 4, got %d", len(level.Vertices))
	}
	checkLevel(t, level, true)
}

// A room divided in two by a horizontal two-sided wall. The divider is a
// perfect partition (maximum metric), so it must be the root, splitting
// nothing
func divideRoomLevel() *DoomLevel {
	vertices := []wVertex{
		{0, 0}, {0, 512}, {0, 1024}, {1024, 1024}, {1024, 512}, {1024, 0},
	}
	lines := []mapLine{
		{0, 1, 0, -1, 0}, // left lower
		{1, 2, 1, -1, 0}, // left upper
		{2, 3, 1, -1, 0}, // top
		{3, 4, 1, -1, 0}, // right upper
		{4, 5, 0, -1, 0}, // right lower
		{5, 0, 0, -1, 0}, // bottom
		{1, 4, 0, 1, 0},  // divider, lower sector in front
	}
	return makeTestLevel(vertices, lines, 2)
}

func TestDividedRoom(t *testing.T) {
	level := divideRoomLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})

	if len(level.Segs) != 8 {
		t.Errorf("expected 8 segs (no splits), got %d", len(level.Segs))
	}
	if len(level.Vertices) != 6 {
		t.Errorf("expected no split vertices, got %d of 6", len(level.Vertices))
	}
	if len(level.Nodes) != 1 {
		t.Fatalf("expected exactly 1 interior node, got %d", len(level.Nodes))
	}
	if len(level.SubSectors) != 2 {
		t.Fatalf("expected 2 subsectors, got %d", len(level.SubSectors))
	}
	for _, ss := range level.SubSectors {
		if ss.Num != 4 {
			t.Errorf("expected 4 segs per subsector, got %d", ss.Num)
		}
	}
	root := level.Nodes[0]
	if root.X != 0 || root.Y != 512 || root.Dx != 1024 || root.Dy != 0 {
		t.Errorf("root partition (%d,%d) delta (%d,%d), want the divider (0,512) delta (1024,0)",
			root.X, root.Y, root.Dx, root.Dy)
	}
	// Subsectors must not mix the two sectors here - the divider separates
	// them exactly
	for _, ss := range level.SubSectors {
		sector := segSector(level, &level.Segs[ss.First])
		for i := 1; i < int(ss.Num); i++ {
			if segSector(level, &level.Segs[int(ss.First)+i]) != sector {
				t.Errorf("subsector mixes sectors")
			}
		}
	}
	checkLevel(t, level, true)
}

// T-intersection map: three sectors, the inner divider's endpoint (512,512)
// lies exactly on the line of the wall x=512. Both winning partitions have
// every endpoint dead on their lines, so nothing is split
func tIntersectionLevel() *DoomLevel {
	vertices := []wVertex{
		{0, 0}, {0, 1024}, {512, 1024}, {1024, 1024},
		{1024, 512}, {1024, 0}, {512, 0}, {512, 512},
	}
	lines := []mapLine{
		{0, 1, 0, -1, 0}, // left wall
		{1, 2, 0, -1, 0}, // top left
		{2, 3, 2, -1, 0}, // top right
		{3, 4, 2, -1, 0}, // right upper
		{4, 5, 1, -1, 0}, // right lower
		{5, 6, 1, -1, 0}, // bottom right
		{6, 0, 0, -1, 0}, // bottom left
		{2, 7, 0, 2, 0},  // wall x=512, upper piece
		{7, 6, 0, 1, 0},  // wall x=512, lower piece
		{7, 4, 1, 2, 0},  // divider y=512, east of x=512
	}
	return makeTestLevel(vertices, lines, 3)
}

func TestTIntersection(t *testing.T) {
	level := tIntersectionLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})

	if len(level.Segs) != 13 {
		t.Errorf("expected seg count to stay at 13, got %d", len(level.Segs))
	}
	if len(level.Vertices) != 8 {
		t.Errorf("expected no new vertices, got %d of 8", len(level.Vertices))
	}
	if len(level.Nodes) != 2 {
		t.Errorf("expected 2 interior nodes, got %d", len(level.Nodes))
	}
	if len(level.SubSectors) != 3 {
		t.Errorf("expected 3 subsectors, got %d", len(level.SubSectors))
	}
	checkLevel(t, level, true)
}

// L-shaped room with a 45 degree see-through fence. The fence's line crosses
// real walls, so building this map must split segs and add vertices
func lShapeWithFenceLevel() *DoomLevel {
	vertices := []wVertex{
		{0, 0}, {0, 1024}, {512, 1024}, {512, 512},
		{1024, 512}, {1024, 0}, {0, 256}, {256, 512},
	}
	lines := []mapLine{
		{0, 1, 0, -1, 0}, // left wall
		{1, 2, 0, -1, 0}, // top wall
		{2, 3, 0, -1, 0}, // upper arm right wall, x=512
		{3, 4, 0, -1, 0}, // inner corner wall, y=512
		{4, 5, 0, -1, 0}, // right wall
		{5, 0, 0, -1, 0}, // bottom wall
		{6, 7, 0, 0, 0},  // fence from (0,256) to (256,512)
	}
	return makeTestLevel(vertices, lines, 1)
}

func TestDiagonalForcesSplit(t *testing.T) {
	level := lShapeWithFenceLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})

	if len(level.Segs) <= 8 {
		t.Errorf("expected splits to grow the seg count beyond 8, got %d", len(level.Segs))
	}
	if len(level.Vertices) <= 8 {
		t.Errorf("expected split vertices beyond the initial 8, got %d", len(level.Vertices))
	}
	if len(level.Segs) != 11 {
		t.Errorf("expected 11 segs, got %d", len(level.Segs))
	}
	if len(level.Vertices) != 10 {
		t.Errorf("expected 10 vertices, got %d", len(level.Vertices))
	}
	if len(level.Nodes) != 2 {
		t.Errorf("expected 2 interior nodes, got %d", len(level.Nodes))
	}
	if len(level.SubSectors) != 3 {
		t.Errorf("expected 3 subsectors, got %d", len(level.SubSectors))
	}
	checkLevel(t, level, true)
}

// Identical input must produce byte-identical output, whatever the algorithm
func TestDeterminism(t *testing.T) {
	builders := []func() *DoomLevel{divideRoomLevel, tIntersectionLevel,
		lShapeWithFenceLevel}
	for _, makeIt := range builders {
		for algorithm := BSP_CLASSIC; algorithm <= BSP_LITE; algorithm++ {
			one := makeIt()
			two := makeIt()
			CreateNODES(one, &BSPOptions{Algorithm: algorithm})
			CreateNODES(two, &BSPOptions{Algorithm: algorithm})
			if !reflect.DeepEqual(one.Segs, two.Segs) ||
				!reflect.DeepEqual(one.SubSectors, two.SubSectors) ||
				!reflect.DeepEqual(one.Nodes, two.Nodes) ||
				!reflect.DeepEqual(one.Vertices, two.Vertices) {
				t.Errorf("algorithm %d: two builds of %s differ", algorithm, one.Name)
			}
		}
	}
}

// All three algorithms must produce structurally sound trees on every
// fixture map
func TestAllAlgorithmsSound(t *testing.T) {
	builders := []func() *DoomLevel{divideRoomLevel, tIntersectionLevel,
		lShapeWithFenceLevel}
	for _, makeIt := range builders {
		for algorithm := BSP_CLASSIC; algorithm <= BSP_LITE; algorithm++ {
			level := makeIt()
			CreateNODES(level, &BSPOptions{Algorithm: algorithm})
			checkLevel(t, level, true)
		}
	}
}

// Square room whose walls belong to two different sectors (no divider
// linedef). The whole room is convex, so without keep-unique it collapses
// into one mixed subsector; with sector 0 marked keep-unique the builder
// must force a synthetic split so sector 0 gets subsectors of its own
func twoSectorConvexLevel() *DoomLevel {
	vertices := []wVertex{{0, 0}, {0, 1024}, {1024, 1024}, {1024, 0}}
	lines := []mapLine{
		{0, 1, 0, -1, 0}, // left - sector 0
		{1, 2, 0, -1, 0}, // top - sector 0
		{2, 3, 1, -1, 0}, // right - sector 1
		{3, 0, 1, -1, 0}, // bottom - sector 1
	}
	return makeTestLevel(vertices, lines, 2)
}

func TestKeepUniqueSectors(t *testing.T) {
	// Without keep-unique: one convex subsector mixing both sectors
	level := twoSectorConvexLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})
	if len(level.SubSectors) != 1 {
		t.Fatalf("expected 1 mixed subsector without keep-unique, got %d",
			len(level.SubSectors))
	}

	// With sector 0 keep-unique: forced split, no subsector may mix
	// sector 0 with anything else
	level = twoSectorConvexLevel()
	CreateNODES(level, &BSPOptions{
		Algorithm:  BSP_CLASSIC,
		KeepUnique: []bool{true, false},
	})
	if len(level.SubSectors) != 2 {
		t.Fatalf("expected 2 subsectors with keep-unique, got %d", len(level.SubSectors))
	}
	if len(level.Nodes) != 1 {
		t.Errorf("expected 1 interior node, got %d", len(level.Nodes))
	}
	for _, ss := range level.SubSectors {
		hasKept := false
		hasOther := false
		for i := 0; i < int(ss.Num); i++ {
			if segSector(level, &level.Segs[int(ss.First)+i]) == 0 {
				hasKept = true
			} else {
				hasOther = true
			}
		}
		if hasKept && hasOther {
			t.Errorf("subsector mixes keep-unique sector 0 with other sectors")
		}
	}
	// Partitions of forced splits are arbitrary, skip the side check
	checkLevel(t, level, false)
}

// Scrolling wall handling: segs made from type 48 linedefs carry noSplit.
// Quality penalizes partitions that would cut them; Classic doesn't care.
// This is observable on the L-map, where Classic's winning partition slices
// the bottom wall: marking that wall dontSplit makes Quality pick another
// root while Classic keeps its choice
func TestDontSplitChangesQualityRoot(t *testing.T) {
	dontSplit := make([]bool, 7)
	dontSplit[5] = true // the bottom wall Classic's root partition cuts

	classic := lShapeWithFenceLevel()
	CreateNODES(classic, &BSPOptions{Algorithm: BSP_CLASSIC, DontSplit: dontSplit})
	quality := lShapeWithFenceLevel()
	CreateNODES(quality, &BSPOptions{Algorithm: BSP_QUALITY, DontSplit: dontSplit})

	cRoot := classic.Nodes[len(classic.Nodes)-1]
	qRoot := quality.Nodes[len(quality.Nodes)-1]
	if cRoot.X == qRoot.X && cRoot.Y == qRoot.Y &&
		cRoot.Dx == qRoot.Dx && cRoot.Dy == qRoot.Dy {
		t.Errorf("expected Classic and Quality to pick different root partitions, both chose (%d,%d) delta (%d,%d)",
			cRoot.X, cRoot.Y, cRoot.Dx, cRoot.Dy)
	}
	// Classic ignores noSplit and keeps the x=512 wall as root
	if cRoot.X != 512 || cRoot.Y != 1024 || cRoot.Dx != 0 || cRoot.Dy != -512 {
		t.Errorf("Classic root partition (%d,%d) delta (%d,%d), want (512,1024) delta (0,-512)",
			cRoot.X, cRoot.Y, cRoot.Dx, cRoot.Dy)
	}
	// Quality moves to the y=512 wall, whose split is not protected
	if qRoot.X != 512 || qRoot.Y != 512 || qRoot.Dx != 512 || qRoot.Dy != 0 {
		t.Errorf("Quality root partition (%d,%d) delta (%d,%d), want (512,512) delta (512,0)",
			qRoot.X, qRoot.Y, qRoot.Dx, qRoot.Dy)
	}

	if treeDepth(quality) > treeDepth(classic) {
		t.Errorf("Quality tree depth %d exceeds Classic's %d",
			treeDepth(quality), treeDepth(classic))
	}
	checkLevel(t, classic, true)
	checkLevel(t, quality, true)
}

func treeDepth(level *DoomLevel) int {
	if len(level.Nodes) == 0 {
		return 0
	}
	var depthOf func(child uint16) int
	depthOf = func(child uint16) int {
		if child&SUBSECTOR_MASK != 0 {
			return 0
		}
		node := level.Nodes[child]
		right := depthOf(node.Child[0])
		left := depthOf(node.Child[1])
		if left > right {
			right = left
		}
		return right + 1
	}
	return depthOf(uint16(len(level.Nodes) - 1))
}

// IgnoreLineDef drops the flagged linedefs from seg creation entirely
func TestIgnoreLineDef(t *testing.T) {
	level := lShapeWithFenceLevel()
	ignore := make([]bool, 7)
	ignore[6] = true // drop the fence
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC, IgnoreLineDef: ignore})
	for i := range level.Segs {
		if level.Segs[i].LineDef == 6 {
			t.Errorf("segs were created from an ignored linedef")
		}
	}
	checkLevel(t, level, true)
}

// ReduceLineDefs drops 2-sided lines with the same sector on both sides and
// no middle texture - like the fence on the L-map
func TestReduceLineDefs(t *testing.T) {
	level := lShapeWithFenceLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC, ReduceLineDefs: true})
	for i := range level.Segs {
		if level.Segs[i].LineDef == 6 {
			t.Errorf("segs were created from the reduced fence linedef")
		}
	}
	// The L is concave, so one partition is still needed and it cuts the
	// bottom wall: 6 initial segs plus one split
	if len(level.Segs) != 7 {
		t.Errorf("expected 7 segs after reducing the fence, got %d", len(level.Segs))
	}
	if len(level.Nodes) != 1 {
		t.Errorf("expected 1 interior node, got %d", len(level.Nodes))
	}
	checkLevel(t, level, true)
}

// Offsets accumulate across splits: a split seg's far half starts a
// partition-distance into its linedef
func TestSplitSegOffsets(t *testing.T) {
	level := lShapeWithFenceLevel()
	CreateNODES(level, &BSPOptions{Algorithm: BSP_CLASSIC})
	for i := range level.Segs {
		seg := &level.Segs[i]
		line := level.LineDefs[seg.LineDef]
		lineStart := int(line.Start)
		if seg.Flip != 0 {
			lineStart = int(line.End)
		}
		vL := level.Vertices[lineStart]
		vS := level.Vertices[seg.Start]
		want := uint16(int(math.Hypot(float64(vS.X)-float64(vL.X),
			float64(vS.Y)-float64(vL.Y))))
		if seg.Offset != want {
			t.Errorf("seg %d (linedef %d) offset %d, want %d", i, seg.LineDef,
				seg.Offset, want)
		}
	}
}
