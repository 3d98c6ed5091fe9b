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

// Inspired by zokumbsp's parser. Parameters that take a modifier accept it
// glued to the switch character: -na=2, -v, -vv etc. Returns false when
// arguments were bad enough that the program shouldn't continue
func (c *ProgramConfig) FromCommandLine() bool {
	args := os.Args[1:]
	outputModifier := false
	for _, arg := range args {
		if len(arg) < 1 {
			break
		}

		if outputModifier {
			c.OutputFileName = arg
			outputModifier = false
			continue
		}

		if arg[0] != '-' {
			if c.InputFileName != "" {
				// No logic for concatenating multiple wads into one exists
				Log.Error("This program doesn't support specifying more than one input file - aborting.\n")
				return false
			}
			c.InputFileName = arg
			continue
		}

		if len(arg) < 2 {
			continue
		}
		switch arg[1] {
		case 'n':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				if enabled {
					if !c.parseNodesParams(rest) {
						return false
					}
				} else if len(rest) > 0 {
					Log.Error("Syntax error: garbage after -n-; characters were ignored.\n")
				}
			}
		case 'r':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				c.ReduceLineDefs = enabled
				if len(rest) > 0 {
					Log.Error("Syntax error: -r parameter is followed by garbage; expected -r, -r+ or -r-.\n")
				}
			}
		case 'p':
			{
				enabled, rest := isEnabled([]byte(arg)[2:])
				c.ShowProgress = enabled
				if len(rest) > 0 {
					Log.Error("Syntax error: -p parameter is followed by garbage; expected -p, -p+ or -p-.\n")
				}
			}
		case 'o':
			{
				outputModifier = true
			}
		case 'v':
			{
				// Each 'v' adds a level: -v, -vv, -vvv
				c.VerbosityLevel++
				for _, ch := range arg[2:] {
					if ch != 'v' {
						Log.Error("Syntax error: only 'v' characters may follow -v.\n")
						break
					}
					c.VerbosityLevel++
				}
			}
		case '-':
			{
				if arg == "--help" {
					PrintUsage()
					return false
				}
				Log.Error("Unrecognised argument %s was ignored.\n", arg)
			}
		default:
			{
				Log.Error("Unrecognised argument %s was ignored.\n", arg)
			}
		}
	}
	if outputModifier {
		Log.Error("Syntax error: -o must be followed by a file name.\n")
		return false
	}
	return true
}

// Nodes parameters look like: a=2 or a=2u, or just u
func (c *ProgramConfig) parseNodesParams(rest []byte) bool {
	for len(rest) > 0 {
		switch rest[0] {
		case 'a':
			{
				if len(rest) < 3 || rest[1] != '=' {
					Log.Error("Syntax error: -na must be followed by =1, =2 or =3.\n")
					return false
				}
				v, err := strconv.Atoi(string(rest[2:3]))
				if err != nil || v < BSP_CLASSIC || v > BSP_LITE {
					Log.Error("Invalid nodes algorithm (must be 1, 2 or 3).\n")
					return false
				}
				c.Algorithm = v
				rest = rest[3:]
			}
		case 'u':
			{
				c.UniqueSubsectors = true
				rest = rest[1:]
			}
		default:
			{
				Log.Error("Syntax error: unknown nodes parameter '%s'.\n", string(rest[0]))
				return false
			}
		}
	}
	return true
}

// A switch may be followed by '+' (explicit enable), '-' (disable), or
// immediately by its modifiers. Returns enabled state and the remainder
func isEnabled(rest []byte) (bool, []byte) {
	if len(rest) == 0 {
		return true, rest
	}
	switch rest[0] {
	case '+':
		return true, rest[1:]
	case '-':
		return false, rest[1:]
	}
	return true, rest
}

func PrintUsage() {
	Log.Printf("ZenNode-Go ver %s\n", VERSION)
	Log.Printf("Usage: zennode [options] input.wad [-o output.wad]\n")
	Log.Printf("  -na=#  Partition algorithm: 1 Classic, 2 Quality, 3 Lite\n")
	Log.Printf("  -nu    Keep sectors in subsectors of their own\n")
	Log.Printf("  -r     Reduce linedefs (omit no-texture same-sector 2-sided lines)\n")
	Log.Printf("  -p     Show progress while building\n")
	Log.Printf("  -v     Increase verbosity (repeatable)\n")
}
