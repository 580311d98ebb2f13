package world

import (
	"math/rand"

	"go.uber.org/zap"

	"arena-server/geometry"
)

// MaxSpin bounds generated baddie spin, in hundredths of a radian per second
const MaxSpin = 120

// LevelParams drives procedural level generation
type LevelParams struct {
	// BaseSize scales every object; 1000 suits a 10000 unit arena
	BaseSize int
	// Sparsity from 1 (dense) to 10 (sparse)
	Sparsity int
	// WallPct is the share of generated objects that are walls
	WallPct int
	// BaddieSpeed caps each velocity component, in units per second
	BaddieSpeed int
}

var levels = map[int]LevelParams{
	1:  {BaseSize: 1000, Sparsity: 10, WallPct: 25, BaddieSpeed: 600},
	2:  {BaseSize: 800, Sparsity: 8, WallPct: 25, BaddieSpeed: 600},
	99: {BaseSize: 100, Sparsity: 5, WallPct: 20, BaddieSpeed: 600},
	-1: {BaseSize: 20, Sparsity: 5, WallPct: 20, BaddieSpeed: 600},
}

// Params returns the generation parameters for level n. Levels without their
// own entry reuse level 1's.
func Params(n int) LevelParams {
	if p, ok := levels[n]; ok {
		return p
	}
	return levels[1]
}

// BuildLevel creates the world for level n. Level 0 is a fixed layout;
// every other level is generated from a seed derived from n, so the same
// level always has the same layout.
func BuildLevel(n int, opts ...Option) *World {
	var w *World
	if n == 0 {
		w = buildLevel0(opts...)
	} else {
		w = generate(n, Params(n), opts...)
	}
	w.logger.Info("level built",
		zap.Int("level", n),
		zap.Int("entities", w.Len()),
	)
	return w
}

func buildLevel0(opts ...Option) *World {
	w := New(1000, opts...)
	f := w.Factory()
	w.Add(f.MakeCannon(geometry.Point{X: w.width / 2, Y: w.height / 2}))
	for _, c := range []geometry.Point{{X: 2500, Y: 2500}, {X: 7500, Y: 2500}, {X: 7500, Y: 7500}, {X: 2500, Y: 7500}} {
		w.Add(f.MakeWall(c))
	}
	baddies := []struct {
		at, vel geometry.Vector
	}{
		{geometry.Point{X: 1000, Y: 1000}, geometry.Vector{X: 100, Y: 200}},
		{geometry.Point{X: 4000, Y: 2000}, geometry.Vector{X: -200, Y: 100}},
		{geometry.Point{X: 6000, Y: 500}, geometry.Vector{X: 200, Y: 75}},
		{geometry.Point{X: 2000, Y: 6000}, geometry.Vector{X: 100, Y: -200}},
		{geometry.Point{X: 1500, Y: 9000}, geometry.Vector{X: 200, Y: 0}},
		{geometry.Point{X: 6500, Y: 7500}, geometry.Vector{X: 50, Y: -200}},
	}
	for _, b := range baddies {
		w.Add(f.MakeBaddie(b.at, b.vel, 0.5))
	}
	return w
}

func generate(n int, p LevelParams, opts ...Option) *World {
	w := New(p.BaseSize, opts...)
	f := w.Factory()
	rng := rand.New(rand.NewSource(int64(n)))
	// inclusive on both ends
	between := func(lo, hi int) int {
		return lo + rng.Intn(hi-lo+1)
	}

	center := geometry.Point{X: w.width / 2, Y: w.height / 2}
	w.Add(f.MakeCannon(center))
	keepOut := p.BaseSize * 2

	for y := p.BaseSize; y < w.height; y += p.BaseSize {
		for x := between(p.BaseSize/2, p.BaseSize*p.Sparsity); x < w.width; x += between(p.BaseSize/2, p.BaseSize*p.Sparsity) {
			at := geometry.Point{X: x, Y: y}
			if abs(x-center.X) < keepOut && abs(y-center.Y) < keepOut {
				continue
			}
			if between(0, 100) < p.WallPct {
				w.Add(f.MakeWall(at))
				continue
			}
			vel := geometry.Vector{
				X: between(-p.BaddieSpeed, p.BaddieSpeed),
				Y: between(-p.BaddieSpeed, p.BaddieSpeed),
			}
			w.Add(f.MakeBaddie(at, vel, float64(between(-MaxSpin, MaxSpin))/100))
		}
	}
	return w
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
