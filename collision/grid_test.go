package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arena-server/geometry"
)

func TestGridBin(t *testing.T) {
	g := NewGrid(10000, 10000, 1000)
	assert.Equal(t, 21, g.Bin(geometry.Point{X: 1000, Y: 2000}))
	assert.Equal(t, 21, g.Bin(geometry.Point{X: 1999, Y: 2999}))
	assert.Equal(t, 0, g.Bin(geometry.Point{X: 0, Y: 0}))
}

func TestGridBinClampsOutsideArena(t *testing.T) {
	g := NewGrid(10000, 10000, 1000)
	assert.Equal(t, 0, g.Bin(geometry.Point{X: -50, Y: -1}))
	assert.Equal(t, 10, g.Bin(geometry.Point{X: 10000, Y: 0}))
	assert.Equal(t, 110, g.Bin(geometry.Point{X: 25000, Y: 99999}))
	assert.Less(t, g.Bin(geometry.Point{X: 10000, Y: 10000}), g.MarginBinCount())
}

func TestGridMarginColumnSharesNextRow(t *testing.T) {
	g := NewGrid(10000, 10000, 1000)
	margin := g.Bin(geometry.Point{X: 10500, Y: 2500})
	assert.Equal(t, g.Bin(geometry.Point{X: 0, Y: 3000}), margin)
	assert.Equal(t, 30, margin)

	last := g.Bin(geometry.Point{X: 99999, Y: 99999})
	assert.Equal(t, g.Cols()+g.Rows()*g.Cols(), last)
	assert.Less(t, last, g.MarginBinCount())
}

func TestGridBinCounts(t *testing.T) {
	g := NewGrid(10000, 10000, 1000)
	assert.Equal(t, 100, g.BinCount())
	assert.Equal(t, 121, g.MarginBinCount())

	adaptive := NewGrid(10000, 10000, 1414)
	assert.Equal(t, 49, adaptive.BinCount())
	assert.Equal(t, 64, adaptive.MarginBinCount())
}

func TestGridNonSquare(t *testing.T) {
	g := NewGrid(20000, 10000, 1000)
	assert.Equal(t, 20, g.Cols())
	assert.Equal(t, 10, g.Rows())
	assert.Equal(t, 41, g.Bin(geometry.Point{X: 1500, Y: 2500}))
	assert.Equal(t, 231, g.MarginBinCount())
}

func TestNewGridRejectsZeroBin(t *testing.T) {
	assert.Panics(t, func() { NewGrid(10000, 10000, 0) })
	assert.Panics(t, func() { NewGrid(0, 10000, 1000) })
}
