package collision

import (
	"errors"
	"fmt"
	"math"

	"arena-server/entity"
	"arena-server/geometry"
)

// MinBinSize keeps tiny objects from exploding the bin count
const MinBinSize = 250

// ErrDuplicateEntity is raised when one id is inserted twice into a build
var ErrDuplicateEntity = errors.New("collision: duplicate entity in spatial map")

// Geometries is one category's geometry keyed by entity id
type Geometries map[entity.ID]*geometry.Geometry

// IDSet is a set of entity ids
type IDSet map[entity.ID]struct{}

// BinSet is a set of bin indices
type BinSet map[int]struct{}

// SpatialMap lists the entities touching each bin
type SpatialMap map[int]IDSet

// SpatialIndex lists the bins each entity touches
type SpatialIndex map[entity.ID]BinSet

// Builder accumulates one category's spatial map and index
type Builder struct {
	grid  Grid
	m     SpatialMap
	index SpatialIndex
}

func NewBuilder(grid Grid) *Builder {
	return &Builder{grid: grid, m: SpatialMap{}, index: SpatialIndex{}}
}

// Insert adds id into every bin one of g's vertices falls in. Panics with
// ErrDuplicateEntity if id was already inserted.
func (b *Builder) Insert(id entity.ID, g *geometry.Geometry) {
	if _, ok := b.index[id]; ok {
		panic(fmt.Errorf("%w: id %d", ErrDuplicateEntity, id))
	}
	bins := make(BinSet, 2)
	// the closing vertex repeats the first
	for _, p := range g[:4] {
		bin := b.grid.Bin(p)
		bins[bin] = struct{}{}
		ids, ok := b.m[bin]
		if !ok {
			ids = IDSet{}
			b.m[bin] = ids
		}
		ids[id] = struct{}{}
	}
	b.index[id] = bins
}

// Build returns the accumulated map and index
func (b *Builder) Build() (SpatialMap, SpatialIndex) {
	return b.m, b.index
}

// BuildMap hashes every geometry in geoms into grid
func BuildMap(geoms Geometries, grid Grid) (SpatialMap, SpatialIndex) {
	b := NewBuilder(grid)
	for id, g := range geoms {
		b.Insert(id, g)
	}
	return b.Build()
}

// CalcBinSize picks a bin size that bounds the diagonal of the largest box
// in any category. It is a heuristic: boxes are assumed square.
func CalcBinSize(categories ...Geometries) int {
	maxSqr := 0
	for _, geoms := range categories {
		for _, g := range geoms {
			if s := geometry.BoxSideLenSqr(g); s > maxSqr {
				maxSqr = s
			}
		}
	}
	size := int(math.Sqrt(float64(maxSqr)) * math.Sqrt2)
	if size < MinBinSize {
		return MinBinSize
	}
	return size
}
