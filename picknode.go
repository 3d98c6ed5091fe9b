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

// picknode -- the three partition selection algorithms of the Zennode family
// (c) Marc Rousseau. All of them score candidates with the arcane metric
//
//	metric = S ? (L * R) / (X1 ? X1 * S / X2 : 1) - (X3 * S + X4) * S
//	           : (L * R)
//
// where L, R, S are the counts of segs to the left, to the right and split,
// and X1-X4 are magic numbers derived empirically from how they affected the
// wads Marc Rousseau had at his disposal. Candidates whose alias was already
// tried in this subtree are skipped; candidates with nothing to their left
// are borders of a convex region and get pushed onto the convex list instead
// of scored.
package main

import (
	"sort"
)

const VERY_BAD_SCORE = -2147483648

// Lite starts out looking at this many candidates only
const LITE_WINDOW = 30

// ...and widens its view by this many when none of them worked out
const LITE_WINDOW_STEP = 5

type sScoreInfo struct {
	index   int // seg index within the list being scored
	invalid int // noSplit segs this partition would split
	metric1 int // seg balance metric, greater wins
	metric2 int // sector balance metric, greater wins
	total   int // sum of ranks under both orderings, lesser wins
}

type scoresByMetric1 []sScoreInfo

func (x scoresByMetric1) Len() int { return len(x) }
func (x scoresByMetric1) Less(i, j int) bool {
	if x[i].metric1 != x[j].metric1 {
		return x[i].metric1 > x[j].metric1
	}
	if x[i].metric2 != x[j].metric2 {
		return x[i].metric2 > x[j].metric2
	}
	return x[i].index < x[j].index
}
func (x scoresByMetric1) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

type scoresByMetric2 []sScoreInfo

func (x scoresByMetric2) Len() int { return len(x) }
func (x scoresByMetric2) Less(i, j int) bool {
	if x[i].metric2 != x[j].metric2 {
		return x[i].metric2 > x[j].metric2
	}
	if x[i].metric1 != x[j].metric1 {
		return x[i].metric1 > x[j].metric1
	}
	return x[i].index < x[j].index
}
func (x scoresByMetric2) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

type scoresByTotal []sScoreInfo

func (x scoresByTotal) Len() int { return len(x) }
func (x scoresByTotal) Less(i, j int) bool {
	if x[i].invalid != x[j].invalid {
		return x[i].invalid < x[j].invalid
	}
	if x[i].total != x[j].total {
		return x[i].total < x[j].total
	}
	return x[i].index < x[j].index
}
func (x scoresByTotal) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

// The metric above for the S > 0 case, parameterized so the same formula
// serves segs (X constants) and sectors (Y constants)
func zenFormula(product, splits, c1, c2, c3, c4 int) int {
	denom := 1
	if c1 != 0 {
		if t := c1 * splits / c2; t != 0 {
			denom = t
		}
	}
	return product/denom - (c3*splits+c4)*splits
}

func (w *NodesWork) pushConvex(alias int) {
	w.convexList[w.convexPtr] = alias
	w.convexPtr++
}

// countSides classifies every seg of the list against the current partition
// and tallies (left, split, right). With earlyExit, bails out as soon as the
// split count exceeds what the best candidate so far produced - no metric
// can recover from that many splits
func (w *NodesWork) countSides(segs []SEG, count *[3]int, earlyExit bool,
	maxSplits int) bool {
	if earlyExit {
		for j := range segs {
			count[w.WhichSide(&segs[j])+1]++
			if count[1] > maxSplits {
				return false
			}
		}
	} else {
		for j := range segs {
			count[w.WhichSide(&segs[j])+1]++
		}
	}
	return true
}

// pickPartition selects the best partition candidate for segs
// [first, first+noSegs) with the configured algorithm, or nil when the list
// is convex. The partition scalars are left set up for the winning candidate
// by SortSegs recomputing them, not here
func (w *NodesWork) pickPartition(first, noSegs int) *SEG {
	switch w.options.Algorithm {
	case BSP_QUALITY:
		return w.AlgorithmQuality(first, noSegs)
	case BSP_LITE:
		window := noSegs
		if window > LITE_WINDOW {
			window = LITE_WINDOW
		}
		return w.AlgorithmClassic(first, noSegs, window, 0)
	default:
		return w.AlgorithmClassic(first, noSegs, noSegs, 2)
	}
}

// AlgorithmClassic is ZenNode's original selector: minimize the number of
// split segs. Yields very small trees that are not well balanced and run
// deep. With window < noSegs this doubles as Lite: only the first window
// candidates are looked at, and the window grows until some candidate
// scores at all or the list is exhausted
func (w *NodesWork) AlgorithmClassic(first, noSegs, window,
	splitsSlack int) *SEG {
	segs := w.segs[first : first+noSegs]
	var pSeg *SEG
	// The maximum value the metric can possibly reach on this list
	bestMetric := (noSegs / 2) * (noSegs - noSegs/2)
	maxMetric := VERY_BAD_SCORE
	maxSplits := 0x7FFFFFFF

	i := 0
	for {
		for ; i < window; i++ {
			if w.options.ShowProgress && (i&15) == 0 {
				w.progress.ShowProgress()
			}
			testSeg := &segs[i]
			alias := w.lineDefAlias[testSeg.lineDef].index
			if w.lineChecked[alias] {
				continue
			}
			w.lineChecked[alias] = true
			var count [3]int
			w.ComputeStaticVariables(testSeg)
			if !w.countSides(segs, &count, maxMetric >= 0, maxSplits) {
				continue
			}
			lCount, sCount, rCount := count[0], count[1], count[2]

			// Only consider the SEG if it is not a boundary line
			if lCount+sCount == 0 {
				// Eliminate outer edges of the map from here & down
				w.pushConvex(alias)
				continue
			}

			var metric int
			if sCount > 0 {
				metric = zenFormula(lCount*rCount, sCount, w.X1, w.X2, w.X3, w.X4)
			} else {
				metric = lCount * rCount
			}
			if w.ANGLE&0x3FFF != 0 {
				metric--
			}
			if metric == bestMetric {
				return testSeg
			}
			if metric > maxMetric {
				pSeg = testSeg
				maxSplits = sCount + splitsSlack
				maxMetric = metric
			}
		}
		if maxMetric == VERY_BAD_SCORE && window < noSegs {
			window += LITE_WINDOW_STEP
			if window > noSegs {
				window = noSegs
			}
			continue
		}
		break
	}

	return pSeg
}

// AlgorithmQuality is ZenNode's 2nd selector. It scores every candidate
// twice - once on seg counts, once on how many sectors end up on each side -
// then ranks candidates under both orderings and takes the best rank sum,
// with candidates that split noSplit segs pushed to the back of the line.
// A given sector is usually made up of one or more subsectors, so balancing
// sectors balances the tree where it matters
func (w *NodesWork) AlgorithmQuality(first, noSegs int) *SEG {
	segs := w.segs[first : first+noSegs]
	noScores := 0

	for i := range segs {
		if w.options.ShowProgress && (i&15) == 0 {
			w.progress.ShowProgress()
		}
		testSeg := &segs[i]
		alias := w.lineDefAlias[testSeg.lineDef].index
		if w.lineChecked[alias] {
			continue
		}
		w.lineChecked[alias] = true
		var count [3]int
		w.ComputeStaticVariables(testSeg)

		curScore := &w.score[noScores]
		curScore.invalid = 0
		for j := range w.usedSector {
			w.usedSector[j] = 0
		}
		for j := range segs {
			destSeg := &segs[j]
			switch w.WhichSide(destSeg) {
			case SIDE_LEFT:
				count[0]++
				w.usedSector[destSeg.sector] |= 0xF0
			case SIDE_SPLIT:
				if destSeg.noSplit {
					curScore.invalid++
				}
				count[1]++
				w.usedSector[destSeg.sector] |= 0xFF
			case SIDE_RIGHT:
				count[2]++
				w.usedSector[destSeg.sector] |= 0x0F
			}
		}
		lCount, sCount, rCount := count[0], count[1], count[2]

		// Only consider the SEG if it is not a boundary line
		if lCount+sCount == 0 {
			w.pushConvex(alias)
			continue
		}

		lsCount, ssCount, rsCount := 0, 0, 0
		for j := 0; j < w.sectorCount; j++ {
			switch w.usedSector[j] {
			case 0xF0:
				lsCount++
			case 0xFF:
				ssCount++
			case 0x0F:
				rsCount++
			}
		}

		product1 := (lCount + sCount) * (rCount + sCount)
		product2 := (lsCount + ssCount) * (rsCount + ssCount)

		curScore.index = i
		if sCount > 0 {
			curScore.metric1 = zenFormula(product1, sCount, w.X1, w.X2, w.X3, w.X4)
		} else if product1 != 0 {
			curScore.metric1 = product1
		} else {
			curScore.metric1 = VERY_BAD_SCORE
		}
		if ssCount > 0 {
			curScore.metric2 = zenFormula(product2, ssCount, w.Y1, w.Y2, w.Y3, w.Y4)
		} else if product2 != 0 {
			curScore.metric2 = product2
		} else {
			curScore.metric2 = VERY_BAD_SCORE
		}
		noScores++
	}

	if noScores == 0 {
		return nil
	}
	if noScores > 1 {
		sc := w.score[:noScores]
		sort.Sort(scoresByMetric1(sc))
		rank := 0
		for i := range sc {
			sc[i].total = rank
			if i < len(sc)-1 && sc[i].metric1 != sc[i+1].metric1 {
				rank++
			}
		}
		sort.Sort(scoresByMetric2(sc))
		rank = 0
		for i := range sc {
			sc[i].total += rank
			if i < len(sc)-1 && sc[i].metric2 != sc[i+1].metric2 {
				rank++
			}
		}
		sort.Sort(scoresByTotal(sc))
	} else {
		w.score[0].total = 0
	}

	return &segs[w.score[0].index]
}

// ChoosePartition runs the selected algorithm and reorders the SEGs: those
// to the right of the partition first, then those to be split, then those to
// the left. Returns false when the list forms a valid SSECTOR
func (w *NodesWork) ChoosePartition(first, noSegs int, noLeft, noRight,
	noSplits *int) bool {
	copy(w.lineChecked, w.lineUsed)
	pSeg := w.pickPartition(first, noSegs)
	w.SortSegs(pSeg, first, noSegs, noLeft, noRight, noSplits)
	return pSeg != nil
}

// SortSegs classifies every seg against the chosen partition (remembering
// the label in seg.side), counts the three classes and rearranges the list
// into [right | split | left]. The reorder is stable within each class
func (w *NodesWork) SortSegs(pSeg *SEG, first, noSegs int, noLeft, noRight,
	noSplits *int) {
	if pSeg == nil {
		*noRight = noSegs
		*noSplits = 0
		*noLeft = 0
		return
	}

	w.ComputeStaticVariables(pSeg)

	segs := w.segs[first : first+noSegs]
	var count [3]int
	for i := range segs {
		segs[i].side = w.WhichSide(&segs[i])
		count[segs[i].side+1]++
	}
	*noLeft, *noSplits, *noRight = count[0], count[1], count[2]

	if *noLeft == 0 && *noSplits == 0 {
		Log.Panic("SortSegs: partition chosen with nothing on its left (linedef #%d)\n",
			pSeg.lineDef)
	}

	i := 0
	for i < noSegs && segs[i].side == SIDE_RIGHT {
		i++
	}
	if i < count[2] || count[1] > 0 {
		r := i
		sIdx := 0
		lIdx := *noSplits
		for ; i < noSegs; i++ {
			switch segs[i].side {
			case SIDE_LEFT:
				w.tempSeg[lIdx] = segs[i]
				lIdx++
			case SIDE_SPLIT:
				w.tempSeg[sIdx] = segs[i]
				sIdx++
			case SIDE_RIGHT:
				segs[r] = segs[i]
				r++
			}
		}
		copy(segs[r:noSegs], w.tempSeg[:noSegs-count[2]])
	}
}

// SortSectors rearranges a convex multi-sector list so that segs belonging
// to sectors that should be kept unique come first, sorted by sector, then
// splits off the leading same-sector run as the right side
func (w *NodesWork) SortSectors(first, noSegs int, noLeft, noRight *int) {
	segs := w.segs[first : first+noSegs]
	sort.Sort(&segsBySector{segs: segs, keepUnique: w.keepUnique})

	// Separate the 1st keep-unique sector - leave the rest
	sector := segs[0].sector
	i := 0
	for i < noSegs && segs[i].sector == sector {
		i++
	}
	*noRight = i
	*noLeft = noSegs - i
}

type segsByLineDef []SEG

func (x segsByLineDef) Len() int { return len(x) }
func (x segsByLineDef) Less(i, j int) bool {
	if x[i].lineDef != x[j].lineDef {
		return x[i].lineDef < x[j].lineDef
	}
	return x[i].flip < x[j].flip
}
func (x segsByLineDef) Swap(i, j int) { x[i], x[j] = x[j], x[i] }

type segsBySector struct {
	segs       []SEG
	keepUnique []bool
}

func (x *segsBySector) Len() int { return len(x.segs) }
func (x *segsBySector) Less(i, j int) bool {
	sector1 := x.segs[i].sector
	sector2 := x.segs[j].sector
	if x.keepUnique[sector1] != x.keepUnique[sector2] {
		return x.keepUnique[sector1]
	}
	if sector1 != sector2 {
		return sector1 < sector2
	}
	if x.segs[i].lineDef != x.segs[j].lineDef {
		return x.segs[i].lineDef < x.segs[j].lineDef
	}
	return x.segs[i].flip < x.segs[j].flip
}
func (x *segsBySector) Swap(i, j int) { x.segs[i], x.segs[j] = x.segs[j], x.segs[i] }
