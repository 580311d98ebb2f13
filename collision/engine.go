package collision

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arena-server/entity"
	"arena-server/geometry"
)

// ErrMissingGeometry is raised when an indexed id has no current geometry
var ErrMissingGeometry = errors.New("collision: missing geometry for indexed entity")

// Categories is a geometry snapshot for every tracked entity kind
type Categories map[entity.Kind]Geometries

// Pair is an ordered (subject, object) id pair
type Pair struct {
	Subject, Object entity.ID
}

// Pairs deduplicates detected pairs
type Pairs map[Pair]struct{}

// Report summarizes one Process call
type Report struct {
	BinSize     int
	BinsScanned int
	Candidates  int
	Detected    map[Kind]int
}

type options struct {
	width, height int
	binSize       int
	workers       int
	logger        *zap.Logger
}

// Option configures an Engine
type Option func(*options)

// WithArena sets the arena dimensions
func WithArena(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithBinSize fixes the bin size instead of deriving it from the snapshot
func WithBinSize(size int) Option {
	return func(o *options) {
		o.binSize = size
	}
}

// WithWorkers caps the number of detection goroutines
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

type spatial struct {
	m     SpatialMap
	index SpatialIndex
}

// Engine detects collisions between tracked categories and dispatches them to
// handlers. An engine is built from one frame's snapshot and used for that
// frame only.
type Engine[W any] struct {
	grid     Grid
	workers  int
	handlers *Handlers[W]
	spatial  map[entity.Kind]spatial
	logger   *zap.Logger
}

// NewEngine hashes every category of snapshot into a fresh spatial map.
// Unless WithBinSize is given the bin size comes from CalcBinSize over all
// categories.
func NewEngine[W any](snapshot Categories, handlers *Handlers[W], opts ...Option) *Engine[W] {
	o := options{
		width:   DefaultArenaWidth,
		height:  DefaultArenaHeight,
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.binSize <= 0 {
		all := make([]Geometries, 0, len(snapshot))
		for _, geoms := range snapshot {
			all = append(all, geoms)
		}
		o.binSize = CalcBinSize(all...)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if handlers == nil {
		handlers = NewHandlers[W]()
	}

	grid := NewGrid(o.width, o.height, o.binSize)
	e := &Engine[W]{
		grid:     grid,
		workers:  o.workers,
		handlers: handlers,
		spatial:  make(map[entity.Kind]spatial, len(snapshot)),
		logger:   o.logger,
	}
	for kind, geoms := range snapshot {
		m, idx := BuildMap(geoms, grid)
		e.spatial[kind] = spatial{m: m, index: idx}
	}
	return e
}

func (e *Engine[W]) BinSize() int { return e.grid.BinSize }

func (e *Engine[W]) Grid() Grid { return e.grid }

// SpatialMap returns the bin map built for kind, or nil if it was not tracked
func (e *Engine[W]) SpatialMap(kind entity.Kind) SpatialMap {
	return e.spatial[kind].m
}

// SpatialIndex returns the bin index built for kind, or nil if it was not tracked
func (e *Engine[W]) SpatialIndex(kind entity.Kind) SpatialIndex {
	return e.spatial[kind].index
}

// partial is one worker's detection result
type partial struct {
	pairs      [kindCount]Pairs
	candidates int
}

// workerPanic carries a recovered panic value back to the caller
type workerPanic struct {
	value any
}

func (p workerPanic) Error() string {
	return fmt.Sprintf("collision: detection worker panicked: %v", p.value)
}

// Process tests every candidate pair in current and then calls the handlers
// with ctx. Detection runs in parallel over bin ranges. Dispatch is
// sequential: kinds in registration order, pairs sorted by id, each unique
// pair once. Handlers run only after detection has finished, so their
// mutations never affect which pairs were detected.
//
// Panics with ErrMissingGeometry if an id from the snapshot has no entry in
// current.
func (e *Engine[W]) Process(ctx W, current Categories) Report {
	kinds := e.handlers.order
	bins := e.grid.MarginBinCount()

	workers := e.workers
	if workers > bins {
		workers = bins
	}
	chunk := (bins + workers - 1) / workers
	partials := make([]partial, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, bins)
		out := &partials[w]
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = workerPanic{value: r}
				}
			}()
			e.detect(lo, hi, kinds, current, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var wp workerPanic
		if errors.As(err, &wp) {
			panic(wp.value)
		}
		panic(err)
	}

	report := Report{
		BinSize:     e.grid.BinSize,
		BinsScanned: bins,
		Detected:    make(map[Kind]int, len(kinds)),
	}
	for _, k := range kinds {
		merged := Pairs{}
		for i := range partials {
			for p := range partials[i].pairs[k] {
				merged[p] = struct{}{}
			}
		}
		report.Detected[k] = len(merged)
		e.dispatch(ctx, k, merged)
	}
	for i := range partials {
		report.Candidates += partials[i].candidates
	}

	e.logger.Debug("collision frame processed",
		zap.Int("bin_size", report.BinSize),
		zap.Int("bins", report.BinsScanned),
		zap.Int("candidates", report.Candidates),
	)
	return report
}

func (e *Engine[W]) detect(lo, hi int, kinds []Kind, current Categories, out *partial) {
	for _, k := range kinds {
		out.pairs[k] = Pairs{}
	}
	for bin := lo; bin < hi; bin++ {
		for _, k := range kinds {
			subjectKind, objectKind := k.Pairing()
			subjects := e.spatial[subjectKind].m[bin]
			objects := e.spatial[objectKind].m[bin]
			if len(subjects) == 0 || len(objects) == 0 {
				continue
			}
			for s := range subjects {
				sg := mustGeometry(current, subjectKind, s)
				for o := range objects {
					pair := Pair{Subject: s, Object: o}
					if _, seen := out.pairs[k][pair]; seen {
						continue
					}
					out.candidates++
					og := mustGeometry(current, objectKind, o)
					if geometry.IsCollision(sg.Points(), og.Points()) {
						out.pairs[k][pair] = struct{}{}
					}
				}
			}
		}
	}
}

func (e *Engine[W]) dispatch(ctx W, k Kind, pairs Pairs) {
	if len(pairs) == 0 {
		return
	}
	sorted := make([]Pair, 0, len(pairs))
	for p := range pairs {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Subject != sorted[j].Subject {
			return sorted[i].Subject < sorted[j].Subject
		}
		return sorted[i].Object < sorted[j].Object
	})
	h := e.handlers.get(k)
	for _, p := range sorted {
		h.OnCollision(ctx, Event{Kind: k, Subject: p.Subject, Object: p.Object})
	}
}

func mustGeometry(current Categories, kind entity.Kind, id entity.ID) *geometry.Geometry {
	g, ok := current[kind][id]
	if !ok || g == nil {
		panic(fmt.Errorf("%w: %s %d", ErrMissingGeometry, kind, id))
	}
	return g
}
