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
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Level lumps are rewritten in this exact order, which is what vanilla and
// every port expects to find after the level marker
var LUMP_SORT_ORDER = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES",
	"SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR"}

// Without these lumps a level can't be processed and is copied through
var LUMP_MUSTEXIST = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES",
	"SECTORS"}

// These are created when absent - they are our output
var LUMP_CREATE = []string{"SEGS", "SSECTORS", "NODES"}

type WadHeader struct {
	MagicSig  uint32
	LumpCount uint32
	Directory uint32
}

// Directory entry as stored on disk
type LumpEntry struct {
	FilePos uint32
	Size    uint32
	Name    [8]byte
}

// A whole lump held in memory. Wads of the target format are small enough
// that slurping the file wholesale is the simplest correct thing
type Lump struct {
	Name [8]byte
	Data []byte
}

type WadFile struct {
	MagicSig uint32
	Lumps    []Lump
}

// One detected level: the marker lump plus the contiguous run of level lumps
// that follow it
type LevelSchedule struct {
	MarkerIdx int
	LumpCount int            // lumps after the marker belonging to this level
	ByName    map[string]int // level lump name -> index into WadFile.Lumps
	Valid     bool           // all of LUMP_MUSTEXIST present
}

// ByteSliceBeforeTerm returns a part of the original bytes excluding
// everything that starts with zero-byte character. This allows string
// operations (such as pattern matching) to be performed correctly on
// returned value
func ByteSliceBeforeTerm(b []byte) []byte {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return b
	}
	return b[:i]
}

func (l *Lump) NameString() string {
	return string(ByteSliceBeforeTerm(l.Name[:]))
}

func MakeLumpName(name string) [8]byte {
	var res [8]byte
	copy(res[:], name)
	return res
}

func LoadWAD(fname string) (*WadFile, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hdr WadHeader
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("couldn't read wad header: %s", err.Error())
	}
	if hdr.MagicSig != IWAD_MAGIC_SIG && hdr.MagicSig != PWAD_MAGIC_SIG {
		return nil, fmt.Errorf("%s is not a wad file", fname)
	}

	entries := make([]LumpEntry, hdr.LumpCount)
	if _, err := f.Seek(int64(hdr.Directory), 0); err != nil {
		return nil, err
	}
	if err := binary.Read(f, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("couldn't read wad directory: %s", err.Error())
	}

	wad := &WadFile{
		MagicSig: hdr.MagicSig,
		Lumps:    make([]Lump, hdr.LumpCount),
	}
	for i, entry := range entries {
		wad.Lumps[i].Name = entry.Name
		wad.Lumps[i].Data = make([]byte, entry.Size)
		if entry.Size == 0 {
			continue
		}
		if _, err := f.ReadAt(wad.Lumps[i].Data, int64(entry.FilePos)); err != nil {
			return nil, fmt.Errorf("couldn't read lump %s: %s",
				wad.Lumps[i].NameString(), err.Error())
		}
	}
	return wad, nil
}

// SaveWAD writes lumps back to back after the header, directory last
func (wad *WadFile) SaveWAD(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := WadHeader{
		MagicSig:  wad.MagicSig,
		LumpCount: uint32(len(wad.Lumps)),
		Directory: 0, // patched below
	}
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return err
	}

	entries := make([]LumpEntry, len(wad.Lumps))
	pos := uint32(binary.Size(&hdr))
	for i := range wad.Lumps {
		entries[i] = LumpEntry{
			FilePos: pos,
			Size:    uint32(len(wad.Lumps[i].Data)),
			Name:    wad.Lumps[i].Name,
		}
		if _, err := f.Write(wad.Lumps[i].Data); err != nil {
			return err
		}
		pos += entries[i].Size
	}
	hdr.Directory = pos
	if err := binary.Write(f, binary.LittleEndian, entries); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	return binary.Write(f, binary.LittleEndian, &hdr)
}

func isLevelLumpName(name string) bool {
	for _, known := range LUMP_SORT_ORDER {
		if name == known {
			return true
		}
	}
	return false
}

// FindLevels detects levels: any non-level-lump followed by a run of level
// lumps containing all the mandatory ones is a level marker. Invalid levels
// are reported and left untouched
func (wad *WadFile) FindLevels() []*LevelSchedule {
	var res []*LevelSchedule
	i := 0
	for i < len(wad.Lumps)-1 {
		if isLevelLumpName(wad.Lumps[i].NameString()) ||
			!isLevelLumpName(wad.Lumps[i+1].NameString()) {
			i++
			continue
		}
		sched := &LevelSchedule{
			MarkerIdx: i,
			ByName:    make(map[string]int),
		}
		j := i + 1
		for j < len(wad.Lumps) && isLevelLumpName(wad.Lumps[j].NameString()) {
			name := wad.Lumps[j].NameString()
			if _, dup := sched.ByName[name]; dup {
				Log.Error("Level %s has a duplicate of lump %s - only the first instance is used.\n",
					wad.Lumps[i].NameString(), name)
			} else {
				sched.ByName[name] = j
			}
			j++
		}
		sched.LumpCount = j - i - 1
		sched.Valid = true
		for _, must := range LUMP_MUSTEXIST {
			if _, ok := sched.ByName[must]; !ok {
				Log.Error("Level %s is not valid: missing lump %s\n",
					wad.Lumps[i].NameString(), must)
				sched.Valid = false
			}
		}
		if sched.Valid {
			for _, creatable := range LUMP_CREATE {
				if _, ok := sched.ByName[creatable]; !ok {
					Log.Verbose(1, "Level %s has no %s lump, it will be created.\n",
						wad.Lumps[i].NameString(), creatable)
				}
			}
			res = append(res, sched)
		}
		i = j
	}
	return res
}

// ReplaceLevel swaps in the rebuilt lumps of one level, conforming the lump
// sequence after the marker to LUMP_SORT_ORDER and creating the output lumps
// that were absent in the input. Schedules obtained before the call are
// invalidated by it, so levels must be processed back to front (or schedules
// re-obtained); the driver goes by the latter
func (wad *WadFile) ReplaceLevel(sched *LevelSchedule, level *DoomLevel) {
	rebuilt := map[string][]byte{
		"LINEDEFS": level.LumpData("LINEDEFS"),
		"VERTEXES": level.LumpData("VERTEXES"),
		"SEGS":     level.LumpData("SEGS"),
		"SSECTORS": level.LumpData("SSECTORS"),
		"NODES":    level.LumpData("NODES"),
	}

	newRun := make([]Lump, 0, sched.LumpCount+len(LUMP_CREATE))
	for _, name := range LUMP_SORT_ORDER {
		if data, ok := rebuilt[name]; ok {
			newRun = append(newRun, Lump{Name: MakeLumpName(name), Data: data})
			continue
		}
		if idx, ok := sched.ByName[name]; ok {
			newRun = append(newRun, wad.Lumps[idx])
		}
	}

	out := make([]Lump, 0, len(wad.Lumps)+len(newRun)-sched.LumpCount)
	out = append(out, wad.Lumps[:sched.MarkerIdx+1]...)
	out = append(out, newRun...)
	out = append(out, wad.Lumps[sched.MarkerIdx+1+sched.LumpCount:]...)
	wad.Lumps = out
}
