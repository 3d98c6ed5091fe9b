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

// level -- the DoomLevel container. Holds the parsed lumps the nodes builder
// reads (vertices, linedefs, sidedefs, sectors) and receives the four arrays
// it produces (vertices, segs, subsectors, nodes). SIDEDEFS and SECTORS are
// never modified; LINEDEFS is rewritten because TrimVertices/PackVertices
// renumber the vertices linedefs refer to.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type DoomLevel struct {
	Name       string
	Vertices   []wVertex
	LineDefs   []wLineDef
	SideDefs   []wSideDef
	Sectors    []wSector
	Segs       []wSegs
	SubSectors []wSSector
	Nodes      []wNode
}

// LoadLevel parses the builder-relevant lumps of one level out of the wad
func LoadLevel(wad *WadFile, sched *LevelSchedule) (*DoomLevel, error) {
	level := &DoomLevel{
		Name: wad.Lumps[sched.MarkerIdx].NameString(),
	}
	if err := readLump(wad, sched, "VERTEXES", DOOM_VERTEX_SIZE,
		func(n int) interface{} {
			level.Vertices = make([]wVertex, n)
			return level.Vertices
		}); err != nil {
		return nil, err
	}
	if err := readLump(wad, sched, "LINEDEFS", DOOM_LINEDEF_SIZE,
		func(n int) interface{} {
			level.LineDefs = make([]wLineDef, n)
			return level.LineDefs
		}); err != nil {
		return nil, err
	}
	if err := readLump(wad, sched, "SIDEDEFS", DOOM_SIDEDEF_SIZE,
		func(n int) interface{} {
			level.SideDefs = make([]wSideDef, n)
			return level.SideDefs
		}); err != nil {
		return nil, err
	}
	if err := readLump(wad, sched, "SECTORS", DOOM_SECTOR_SIZE,
		func(n int) interface{} {
			level.Sectors = make([]wSector, n)
			return level.Sectors
		}); err != nil {
		return nil, err
	}
	return level, nil
}

func readLump(wad *WadFile, sched *LevelSchedule, name string, recSize int,
	alloc func(n int) interface{}) error {
	idx, ok := sched.ByName[name]
	if !ok {
		return fmt.Errorf("level has no %s lump", name)
	}
	data := wad.Lumps[idx].Data
	if len(data)%recSize != 0 {
		return fmt.Errorf("lump %s has a size that is not a multiple of %d",
			name, recSize)
	}
	target := alloc(len(data) / recSize)
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, target)
}

func (l *DoomLevel) VertexCount() int  { return len(l.Vertices) }
func (l *DoomLevel) LineDefCount() int { return len(l.LineDefs) }
func (l *DoomLevel) SideDefCount() int { return len(l.SideDefs) }
func (l *DoomLevel) SectorCount() int  { return len(l.Sectors) }

func (l *DoomLevel) GetVertices() []wVertex  { return l.Vertices }
func (l *DoomLevel) GetLineDefs() []wLineDef { return l.LineDefs }
func (l *DoomLevel) GetSideDefs() []wSideDef { return l.SideDefs }
func (l *DoomLevel) GetSectors() []wSector   { return l.Sectors }

// TrimVertices drops vertices no linedef refers to (editors leave those
// behind, and so does a previous nodebuilder run) and renumbers linedef
// references accordingly
func (l *DoomLevel) TrimVertices() {
	used := make([]bool, len(l.Vertices))
	for i := range l.LineDefs {
		used[l.LineDefs[i].Start] = true
		used[l.LineDefs[i].End] = true
	}
	remap := make([]uint16, len(l.Vertices))
	trimmed := make([]wVertex, 0, len(l.Vertices))
	for i, u := range used {
		if u {
			remap[i] = uint16(len(trimmed))
			trimmed = append(trimmed, l.Vertices[i])
		}
	}
	for i := range l.LineDefs {
		l.LineDefs[i].Start = remap[l.LineDefs[i].Start]
		l.LineDefs[i].End = remap[l.LineDefs[i].End]
	}
	l.Vertices = trimmed
}

// PackVertices coalesces vertices with identical coordinates into one,
// renumbering linedef references. Keeps first occurrence order, so doing it
// twice changes nothing
func (l *DoomLevel) PackVertices() {
	seen := make(map[wVertex]uint16)
	remap := make([]uint16, len(l.Vertices))
	packed := make([]wVertex, 0, len(l.Vertices))
	for i, v := range l.Vertices {
		if idx, ok := seen[v]; ok {
			remap[i] = idx
		} else {
			idx = uint16(len(packed))
			seen[v] = idx
			packed = append(packed, v)
			remap[i] = idx
		}
	}
	for i := range l.LineDefs {
		l.LineDefs[i].Start = remap[l.LineDefs[i].Start]
		l.LineDefs[i].End = remap[l.LineDefs[i].End]
	}
	l.Vertices = packed
}

// Bulk-replace surface used by the nodes builder to transfer its output

func (l *DoomLevel) NewVertices(vertices []wVertex)    { l.Vertices = vertices }
func (l *DoomLevel) NewSegs(segs []wSegs)              { l.Segs = segs }
func (l *DoomLevel) NewSubSectors(ssectors []wSSector) { l.SubSectors = ssectors }
func (l *DoomLevel) NewNodes(nodes []wNode)            { l.Nodes = nodes }

// LumpData serialises one of the level's lumps
func (l *DoomLevel) LumpData(name string) []byte {
	var buf bytes.Buffer
	var target interface{}
	switch name {
	case "VERTEXES":
		target = l.Vertices
	case "LINEDEFS":
		target = l.LineDefs
	case "SIDEDEFS":
		target = l.SideDefs
	case "SECTORS":
		target = l.Sectors
	case "SEGS":
		target = l.Segs
	case "SSECTORS":
		target = l.SubSectors
	case "NODES":
		target = l.Nodes
	default:
		Log.Panic("Don't know how to serialise lump %s\n", name)
	}
	if err := binary.Write(&buf, binary.LittleEndian, target); err != nil {
		Log.Panic("Couldn't serialise lump %s: %s\n", name, err.Error())
	}
	return buf.Bytes()
}
