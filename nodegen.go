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

// nodegen -- the NODES builder. Port of ZenNode (c) Marc Rousseau, with the
// file-scope state of the original gathered into NodesWork so that a build
// is a value, not a mood of the process. One CreateNODES call owns all of
// it; builds must not run concurrently against the same NodesWork.
package main

import (
	"math"
	"sort"
)

// Empirical pool sizing factors derived from a test of all the .WAD files
// from id & Raven. Exhausting a pool means the map is far outside anything
// the format was designed for
const FACTOR_VERTEX = 1.7
const FACTOR_SEGS = 2.0
const FACTOR_NODE = 2.2
const FACTOR_SSECTOR = 50.0

type BSPOptions struct {
	Algorithm      int // BSP_CLASSIC / BSP_QUALITY / BSP_LITE
	ShowProgress   bool
	ReduceLineDefs bool
	IgnoreLineDef  []bool // nil, or per-linedef "make no segs from this"
	DontSplit      []bool // nil, or per-linedef "mark segs noSplit"
	KeepUnique     []bool // nil, or per-sector "own subsectors only"
}

// Working copy of one side of a linedef. Indices are int while the tree is
// being built; they get narrowed (and validated) to the format's 16 bits
// when the output arrays are produced
type SEG struct {
	start   int // vertex index
	end     int
	angle   BAM
	lineDef int
	flip    int // 0 - seg follows linedef direction, 1 - the opposite
	offset  int // distance along the linedef to the seg's start
	sector  int
	noSplit bool
	side    int // scratch, set by SortSegs
}

// An arena-pooled node. Emission order is kept in a chain through next;
// final ids are handed out in post-order by GetNodes
type NODE struct {
	Data wNode
	id   uint16
	next *NODE
}

type NodesWork struct {
	level   *DoomLevel
	options *BSPOptions

	// Vertex pool. len() is the live count; capacity is fixed up front so
	// that held *wVertex stay valid across AddVertex
	vertices    []wVertex
	maxVertices int

	// Seg arena. Split halves replace the original in place while the
	// recursion holds a contiguous window
	segs     []SEG
	tempSeg  []SEG // scratch for the three-way reorder in SortSegs
	segCount int
	maxSegs  int

	nodePool  []NODE
	nodesUsed int
	nodesLeft int
	nodeStart *NODE
	nodeCount int

	ssectorPool  []wSSector
	ssectorsLeft int
	ssectorCount int

	// Partition scalars, valid between ComputeStaticVariables and the next
	// selection. C is the constant term of the partition's line equation
	X, Y, DX, DY, H2, ANGLE int
	C                       float64

	currentAlias   *sAlias
	currentSide    []int8 // row of sideInfo for the current alias, or nil
	currentFlipped int

	lineDefAlias []sAlias // per linedef, plus a sentinel entry
	noAliases    int

	sideInfo [][]int8 // [alias][sector] side labels

	sectorCount      int
	usedSector       []uint8
	keepUnique       []bool
	uniqueSubsectors bool
	lineUsed         []bool // alias is convex / used as partition up the tree
	lineChecked      []bool // alias already tried within current selection

	convexList []int
	convexPtr  int

	score []sScoreInfo // Quality only

	progress *ProgressMeter

	// Scoring constants (see picknode.go), environment-overridable
	X1, X2, X3, X4 int
	Y1, Y2, Y3, Y4 int
}

// CreateSegs makes the initial SEG list from the *important* sidedefs.
// A sidedef is important if its linedef has non-zero length, and either the
// two sides reference different sectors or a visible middle texture exists
// (the latter only matters with ReduceLineDefs)
func (w *NodesWork) CreateSegs() {
	level := w.level
	maxSegs := 0
	for i := range level.LineDefs {
		if level.LineDefs[i].SideDef[0] != NO_SIDEDEF {
			maxSegs++
		}
		if level.LineDefs[i].SideDef[1] != NO_SIDEDEF {
			maxSegs++
		}
	}
	w.maxSegs = int(float64(maxSegs) * FACTOR_SEGS)
	w.segs = make([]SEG, w.maxSegs)
	w.tempSeg = make([]SEG, w.maxSegs)

	cur := 0
	for i := range level.LineDefs {
		lineDef := &level.LineDefs[i]
		vertS := &w.vertices[lineDef.Start]
		vertE := &w.vertices[lineDef.End]
		dx := int(vertE.X) - int(vertS.X)
		dy := int(vertE.Y) - int(vertS.Y)
		if dx == 0 && dy == 0 {
			continue
		}

		var sideRight, sideLeft *wSideDef
		if lineDef.SideDef[0] != NO_SIDEDEF {
			sideRight = &level.SideDefs[lineDef.SideDef[0]]
		}
		if lineDef.SideDef[1] != NO_SIDEDEF {
			sideLeft = &level.SideDefs[lineDef.SideDef[1]]
		}

		// Ignore the line if both sides point to the same sector & neither
		// side has any visible texture
		if w.options.ReduceLineDefs && sideRight != nil && sideLeft != nil &&
			sideRight.Sector == sideLeft.Sector {
			if sideLeft.MidTextureEmpty() {
				sideLeft = nil
			}
			if sideRight.MidTextureEmpty() {
				sideRight = nil
			}
			if sideLeft == nil && sideRight == nil {
				continue
			}
		}

		if w.options.IgnoreLineDef != nil && w.options.IgnoreLineDef[i] {
			continue
		}

		angle := ComputeAngle(dx, dy)
		split := w.options.DontSplit != nil && w.options.DontSplit[i]

		if sideRight != nil {
			w.segs[cur] = SEG{
				start:   int(lineDef.Start),
				end:     int(lineDef.End),
				angle:   angle,
				lineDef: i,
				flip:    0,
				sector:  int(sideRight.Sector),
				noSplit: split,
			}
			cur++
		}
		if sideLeft != nil {
			w.segs[cur] = SEG{
				start:   int(lineDef.End),
				end:     int(lineDef.Start),
				angle:   angle + BAM180,
				lineDef: i,
				flip:    1,
				sector:  int(sideLeft.Sector),
				noSplit: split,
			}
			cur++
		}
	}
	w.segCount = cur
}

// AddVertex returns the index of the vertex at (x,y), creating it if no
// vertex with those exact coordinates exists yet. Indices are stable once
// handed out
func (w *NodesWork) AddVertex(x, y int) int {
	for i := range w.vertices {
		if int(w.vertices[i].X) == x && int(w.vertices[i].Y) == y {
			return i
		}
	}
	if len(w.vertices) >= w.maxVertices {
		Log.Fatal("Error: maximum number of vertices exceeded.\n")
	}
	w.vertices = append(w.vertices, wVertex{X: int16(x), Y: int16(y)})
	return len(w.vertices) - 1
}

// FindBounds determines the bounding rectangle of a list of SEGs
func (w *NodesWork) FindBounds(bound *wBound, segs []SEG) {
	vert := &w.vertices[segs[0].start]
	bound.Minx, bound.Maxx = vert.X, vert.X
	bound.Miny, bound.Maxy = vert.Y, vert.Y
	for i := range segs {
		vertS := &w.vertices[segs[i].start]
		vertE := &w.vertices[segs[i].end]

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

		if loX < bound.Minx {
			bound.Minx = loX
		}
		if hiX > bound.Maxx {
			bound.Maxx = hiX
		}
		if loY < bound.Miny {
			bound.Miny = loY
		}
		if hiY > bound.Maxy {
			bound.Maxy = hiY
		}
	}
}

// CreateSSector records a subsector covering the given run of the seg arena
func (w *NodesWork) CreateSSector(first, noSegs int) uint16 {
	if w.ssectorsLeft == 0 {
		Log.Fatal("ERROR: ssectorPool exhausted\n")
	}
	w.ssectorsLeft--
	if w.ssectorCount >= int(SUBSECTOR_MASK) {
		Log.Fatal("Error: too many subsectors for the output format\n")
	}
	w.ssectorPool[w.ssectorCount] = wSSector{
		Num:   uint16(noSegs),
		First: uint16(first),
	}
	res := uint16(w.ssectorCount)
	w.ssectorCount++
	return res
}

// DivideSeg splits rSeg at its intersection with the current partition.
// rSeg and lSeg arrive as identical copies; the half on the side of rSeg's
// start vertex keeps that start, the other half gets the intersection point
// and an offset grown by the distance from the old start.
//
//	Partition line:
//	  DX*x - DY*y + C = 0              | DX  -DY | |-C|
//	rSeg line:                         |         |=|  |
//	  dx*x - dy*y + c = 0              | dx  -dy | |-c|
//
// Minimum precision to avoid overflow: dx,dy 16 bits; c 33 bits; det 32
// bits; x,y 50 bits - hence float64 for everything but the side test
func (w *NodesWork) DivideSeg(rSeg *SEG, lSeg *SEG) {
	vertS := &w.vertices[rSeg.start]
	vertE := &w.vertices[rSeg.end]

	// Which side of the partition line the start point is on
	sideS := w.DX*(int(vertS.Y)-w.Y) - w.DY*(int(vertS.X)-w.X)

	dx := float64(int(vertE.X) - int(vertS.X))
	dy := float64(int(vertE.Y) - int(vertS.Y))
	c := float64(int(vertE.Y)*int(vertS.X)) - float64(int(vertE.X)*int(vertS.Y))

	det := dx*float64(w.DY) - dy*float64(w.DX)
	x := (w.C*dx - c*float64(w.DX)) / det
	y := (w.C*dy - c*float64(w.DY)) / det

	newIndex := w.AddVertex(roundToInt(x), roundToInt(y))

	if rSeg.start == newIndex || rSeg.end == newIndex {
		vertN := &w.vertices[newIndex]
		Log.Fatal("NODES: End point duplicated in DivideSeg: LineDef #%d\n"+
			"       Partition: from (%d,%d) to (%d,%d)\n"+
			"       LineDef: from (%d,%d) to (%d,%d) split at (%d,%d)\n",
			rSeg.lineDef,
			w.X, w.Y, w.X+w.DX, w.Y+w.DY,
			vertS.X, vertS.Y, vertE.X, vertE.Y, vertN.X, vertN.Y)
	}

	dist := int(math.Hypot(x-float64(vertS.X), y-float64(vertS.Y)))

	// Fill in the parts of lSeg & rSeg that have changed
	if sideS < 0 {
		rSeg.end = newIndex
		lSeg.start = newIndex
		lSeg.offset += dist
	} else {
		rSeg.start = newIndex
		lSeg.end = newIndex
		rSeg.offset += dist
	}
}

// SplitSegs materialises noSplits splits at the front of segs[first:]. The
// tail of the arena shifts right to duplicate the split-marked segs, then
// each (original, duplicate) pair becomes the (right, left) halves
func (w *NodesWork) SplitSegs(first, noSplits int) {
	w.segCount += noSplits
	if w.segCount > w.maxSegs {
		Log.Fatal("Error: Too many SEGs have been split!\n")
	}
	copy(w.segs[first+noSplits:w.segCount], w.segs[first:w.segCount-noSplits])
	for i := 0; i < noSplits; i++ {
		w.DivideSeg(&w.segs[first+i], &w.segs[first+i+noSplits])
	}
}

// PartitionNode chooses a partition for segs [first, first+noSegs) and
// fills in the node's partition line and child bounding boxes. Returns
// ok=false when no valid partition exists and the list is a subsector
func (w *NodesWork) PartitionNode(node *NODE, first, noSegs int) (noLeft,
	noRight int, ok bool) {
	var noSplits int

	if !w.ChoosePartition(first, noSegs, &noLeft, &noRight, &noSplits) {
		forced := false
		if w.uniqueSubsectors {
			// Would this subsector mix a keep-unique sector with others?
			for i := range w.usedSector {
				w.usedSector[i] = 0
			}
			segs := w.segs[first : first+noSegs]
			for i := range segs {
				w.usedSector[segs[i].sector] = 1
			}
			noSectors := 0
			for i := 0; i < w.sectorCount; i++ {
				if w.usedSector[i] != 0 {
					noSectors++
				}
			}
			if noSectors > 1 {
				for i := 0; noSectors > 0 && i < w.sectorCount; i++ {
					if w.usedSector[i] != 0 {
						if w.keepUnique[i] {
							forced = true
							break
						}
						noSectors--
					}
				}
			}
		}
		if !forced {
			// Splits may have 'upset' the lineDef ordering - some special
			// effects assume the SEGS appear in the same order as the
			// lineDefs
			if noSegs > 1 {
				sort.Sort(segsByLineDef(w.segs[first : first+noSegs]))
			}
			return 0, 0, false
		}

		// Break the subsector up by sector along an arbitrary partition
		w.ComputeStaticVariables(&w.segs[first])
		w.SortSectors(first, noSegs, &noLeft, &noRight)

	} else if noSplits > 0 {
		w.SplitSegs(first+noRight, noSplits)
		noLeft += noSplits
		noRight += noSplits
	}

	node.Data.X = int16(w.X)
	node.Data.Y = int16(w.Y)
	node.Data.Dx = int16(w.DX)
	node.Data.Dy = int16(w.DY)

	w.FindBounds(&node.Data.Side[0], w.segs[first:first+noRight])
	w.FindBounds(&node.Data.Side[1], w.segs[first+noRight:first+noRight+noLeft])

	return noLeft, noRight, true
}

// CreateNode recursively builds the tree for segs [first, first+noSegs).
// A list of 'convex' aliases is maintained - lines that border the list and
// can never be partitions. A line is marked convex for this node and all
// children, and unmarked before returning; the alias chosen as partition is
// likewise convex for all children. Returns the node (leaf or interior) and
// the list's final seg count, grown by any splits made underneath
func (w *NodesWork) CreateNode(prev *NODE, first, noSegs int) (*NODE, int) {
	if w.nodesLeft == 0 {
		Log.Fatal("ERROR: nodePool exhausted\n")
	}
	w.nodesLeft--
	node := &w.nodePool[w.nodesUsed]
	w.nodesUsed++
	node.next = nil
	if prev != nil {
		prev.next = node
	}

	cptr := w.convexPtr

	noLeft, noRight := 0, 0
	ok := false
	if noSegs > 1 {
		noLeft, noRight, ok = w.PartitionNode(node, first, noSegs)
	}
	if !ok {
		w.convexPtr = cptr
		if w.nodeStart == nil {
			w.nodeStart = node
		}
		node.id = SUBSECTOR_MASK | w.CreateSSector(first, noSegs)
		w.progress.ShowDone()
		return node, noSegs
	}

	alias := w.currentAlias.index
	w.lineUsed[alias] = true
	for i := cptr; i < w.convexPtr; i++ {
		w.lineUsed[w.convexList[i]] = true
	}

	w.progress.GoRight()
	rNode, noRight := w.CreateNode(prev, first, noRight)
	node.Data.Child[0] = rNode.id

	w.progress.GoLeft()
	lNode, noLeft := w.CreateNode(rNode, first+noRight, noLeft)
	node.Data.Child[1] = lNode.id

	for w.convexPtr != cptr {
		w.convexPtr--
		w.lineUsed[w.convexList[w.convexPtr]] = false
	}
	w.lineUsed[alias] = false

	w.progress.Backup()

	// The node enters the chain only now that both subtrees are complete,
	// which is what makes the chain order a post-order: a parent's id always
	// exceeds its children's, and the renderer can walk the tree iteratively
	lNode.next = node
	if w.nodeCount >= int(SUBSECTOR_MASK) {
		Log.Fatal("Error: too many nodes for the output format\n")
	}
	node.id = uint16(w.nodeCount)
	w.nodeCount++

	w.progress.ShowDone()

	return node, noLeft + noRight
}

func (w *NodesWork) GetVertices() []wVertex {
	if len(w.vertices) > 65536 {
		Log.Fatal("Error: too many vertices for the output format\n")
	}
	vertices := make([]wVertex, len(w.vertices))
	copy(vertices, w.vertices)
	return vertices
}

func (w *NodesWork) GetSegs() []wSegs {
	if w.segCount > 65536 {
		Log.Fatal("Error: too many segs for the output format\n")
	}
	segs := make([]wSegs, w.segCount)
	for i := 0; i < w.segCount; i++ {
		seg := &w.segs[i]
		segs[i] = wSegs{
			Start:   uint16(seg.start),
			End:     uint16(seg.end),
			Angle:   seg.angle,
			LineDef: uint16(seg.lineDef),
			Flip:    uint16(seg.flip),
			Offset:  uint16(seg.offset),
		}
	}
	return segs
}

func (w *NodesWork) GetSSectors() []wSSector {
	ssectors := make([]wSSector, w.ssectorCount)
	copy(ssectors, w.ssectorPool[:w.ssectorCount])
	return ssectors
}

// GetNodes walks the emission chain skipping subsector-marked entries. The
// chain is in post-order, so the walk hands interior nodes out in exactly
// the order their ids were assigned
func (w *NodesWork) GetNodes() []wNode {
	nodes := make([]wNode, w.nodeCount)
	cur := w.nodeStart
	for i := 0; i < w.nodeCount; i++ {
		for cur.id&SUBSECTOR_MASK != 0 {
			cur = cur.next
		}
		nodes[i] = cur.Data
		cur = cur.next
	}
	return nodes
}

// CreateNODES builds the BSP tree for the level and transfers the new
// VERTEXES, SEGS, SSECTORS and NODES arrays into it
func CreateNODES(level *DoomLevel, options *BSPOptions) {
	w := &NodesWork{
		level:   level,
		options: options,
	}
	xc, yc := ScoringConstants()
	w.X1, w.X2, w.X3, w.X4 = xc[0], xc[1], xc[2], xc[3]
	w.Y1, w.Y2, w.Y3, w.Y4 = yc[0], yc[1], yc[2], yc[3]
	if w.X2 == 0 {
		w.X2 = 1
	}
	if w.Y2 == 0 {
		w.Y2 = 1
	}

	w.progress = CreateProgressMeter(options.ShowProgress)
	w.uniqueSubsectors = options.KeepUnique != nil

	level.NewSegs(nil)
	level.NewSubSectors(nil)
	level.NewNodes(nil)
	level.TrimVertices()
	level.PackVertices()

	noVertices := level.VertexCount()
	w.sectorCount = level.SectorCount()
	w.usedSector = make([]uint8, w.sectorCount)
	w.keepUnique = make([]bool, w.sectorCount)
	if options.KeepUnique != nil {
		copy(w.keepUnique, options.KeepUnique)
	} else {
		for i := range w.keepUnique {
			w.keepUnique[i] = true
		}
	}

	w.maxVertices = int(float64(noVertices) * FACTOR_VERTEX)
	if w.maxVertices < noVertices+2 {
		// CreateSideInfo borrows two scratch slots past the live vertices
		w.maxVertices = noVertices + 2
	}
	w.vertices = make([]wVertex, noVertices, w.maxVertices)
	copy(w.vertices, level.GetVertices())

	w.progress.Status("Creating SEGS ...")
	w.CreateSegs()

	if options.Algorithm != BSP_LITE {
		w.progress.Status("Getting LineDef Aliases ...")
		aliasList := w.GetLineDefAliases()

		w.lineChecked = make([]bool, w.noAliases)
		w.lineUsed = make([]bool, w.noAliases)

		w.progress.Status("Getting Sector Bounds ...")
		bound := w.GetSectorBounds()
		sectInfo := w.GetSectorInfo(bound)

		w.progress.Status("Creating Side Info ...")
		w.CreateSideInfo(bound, sectInfo, aliasList)

		// Make sure every seg is on its own right side! A concave sector can
		// wrap around a line, in which case the cache entry for it lies and
		// gets demoted to SPLIT
		for i := 0; i < w.segCount; i++ {
			w.ComputeStaticVariables(&w.segs[i])
			if w.WhichSide(&w.segs[i]) == SIDE_LEFT {
				alias := w.lineDefAlias[w.segs[i].lineDef].index
				w.sideInfo[alias][w.segs[i].sector] = SIDE_SPLIT
				Log.Verbose(2, "Sector #%d wraps around linedef #%d; side cache entry demoted.\n",
					w.segs[i].sector, w.segs[i].lineDef)
			}
		}
	} else {
		// Lite doesn't pay for the alias scan: identity mapping, and a
		// shared all-SPLIT side info row so the sector shortcut never fires
		w.noAliases = level.LineDefCount()
		w.lineDefAlias = make([]sAlias, w.noAliases+1)
		for i := 0; i < w.noAliases; i++ {
			w.lineDefAlias[i].index = i
		}
		w.lineDefAlias[w.noAliases].index = -1

		w.sideInfo = make([][]int8, w.noAliases)
		row := make([]int8, w.sectorCount) // zero value is SIDE_SPLIT
		for i := range w.sideInfo {
			w.sideInfo[i] = row
		}

		w.lineChecked = make([]bool, w.noAliases)
		w.lineUsed = make([]bool, w.noAliases)
	}

	if options.Algorithm == BSP_QUALITY {
		w.score = make([]sScoreInfo, w.noAliases)
	}
	w.convexList = make([]int, w.noAliases)
	w.convexPtr = 0

	w.progress.Status("Creating NODES ...")
	w.nodesLeft = int(FACTOR_NODE * float64(level.LineDefCount()))
	if w.nodesLeft < 1 {
		w.nodesLeft = 1
	}
	w.nodePool = make([]NODE, w.nodesLeft)
	w.ssectorsLeft = int(FACTOR_SSECTOR * float64(level.SectorCount()))
	if w.ssectorsLeft < 1 {
		w.ssectorsLeft = 1
	}
	w.ssectorPool = make([]wSSector, w.ssectorsLeft)

	w.CreateNode(nil, 0, w.segCount)

	w.progress.Finish()

	level.NewVertices(w.GetVertices())
	level.NewSegs(w.GetSegs())
	level.NewSubSectors(w.GetSSectors())
	level.NewNodes(w.GetNodes())
}
