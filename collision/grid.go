// Package collision implements the broad phase spatial hash and the engine
// that turns per-frame geometry snapshots into collision events.
package collision

import (
	"fmt"

	"arena-server/geometry"
)

const (
	DefaultArenaWidth  = 10000
	DefaultArenaHeight = 10000
)

// Grid maps arena coordinates to bin indices
type Grid struct {
	Width, Height int
	BinSize       int
}

// NewGrid panics if any dimension is not positive
func NewGrid(width, height, binSize int) Grid {
	if width <= 0 || height <= 0 || binSize <= 0 {
		panic(fmt.Sprintf("collision: invalid grid %dx%d bin %d", width, height, binSize))
	}
	return Grid{Width: width, Height: height, BinSize: binSize}
}

// Cols is the number of whole bins across
func (g Grid) Cols() int { return g.Width / g.BinSize }

// Rows is the number of whole bins down
func (g Grid) Rows() int { return g.Height / g.BinSize }

// BinCount is the number of whole bins in the arena
func (g Grid) BinCount() int { return g.Cols() * g.Rows() }

// MarginBinCount bounds every index Bin can return, so the engine scans this
// range. It is not a (Cols+1)x(Rows+1) layout: see Bin.
func (g Grid) MarginBinCount() int { return (g.Cols() + 1) * (g.Rows() + 1) }

// Bin returns the bin index for p by floor division, so a point on a
// boundary belongs to the bin that starts there. Coordinates left of or
// above the arena clamp to the first bin; anything past the last whole bin
// lands in the margin column or row.
//
// Rows keep a stride of Cols, so margin column Cols of row by shares its
// index with column 0 of row by+1. Entities there become extra candidates
// and the narrow phase drops them.
func (g Grid) Bin(p geometry.Point) int {
	bx := clamp(p.X/g.BinSize, p.X, g.Cols())
	by := clamp(p.Y/g.BinSize, p.Y, g.Rows())
	return bx + by*g.Cols()
}

func clamp(b, coord, hi int) int {
	if coord < 0 {
		return 0
	}
	if b > hi {
		return hi
	}
	return b
}
