package collision

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-server/entity"
	"arena-server/geometry"
)

// recorder is a minimal frame context that logs every event
type recorder struct {
	events []Event
}

func record(ctx *recorder, ev Event) {
	ctx.events = append(ctx.events, ev)
}

func recordAll() *Handlers[*recorder] {
	h := NewHandlers[*recorder]()
	for _, k := range Kinds() {
		h.Handle(k, record)
	}
	return h
}

func TestProcessDispatchesOnlyCollidingPair(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1200, 1200, 1000), 2: box(6500, 6500, 1000)},
		entity.Baddie: {3: box(1200, 1200, 750), 4: box(4000, 4000, 750)},
	}
	h := NewHandlers[*recorder]().Handle(BaddieWall, record)
	engine := NewEngine(snapshot, h)

	var rec recorder
	report := engine.Process(&rec, snapshot)

	require.Len(t, rec.events, 1)
	assert.Equal(t, Event{Kind: BaddieWall, Subject: 3, Object: 1}, rec.events[0])
	assert.Equal(t, 1, report.Detected[BaddieWall])
	assert.Equal(t, 1414, report.BinSize)
}

type velocities map[entity.ID]geometry.Vector

type reverser struct{}

func (reverser) OnCollision(v velocities, ev Event) {
	v[ev.Subject] = geometry.Scale(v[ev.Subject], -1)
}

func TestProcessHandlerMutatesVelocity(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1200, 1200, 1000)},
		entity.Baddie: {2: box(1200, 1200, 750)},
	}
	h := NewHandlers[velocities]().Register(BaddieWall, reverser{})
	v := velocities{2: {X: 1000, Y: -250}}

	NewEngine(snapshot, h).Process(v, snapshot)

	assert.Equal(t, geometry.Vector{X: -1000, Y: 250}, v[2])
}

func TestProcessPairSharingBinsDispatchedOnce(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1000, 1000, 1000)},
		entity.Baddie: {2: box(1000, 1000, 750)},
	}
	engine := NewEngine(snapshot, recordAll(), WithBinSize(1000))
	require.Len(t, engine.SpatialIndex(entity.Wall)[1], 4)
	require.Len(t, engine.SpatialIndex(entity.Baddie)[2], 4)

	var rec recorder
	engine.Process(&rec, snapshot)

	assert.Equal(t, []Event{{Kind: BaddieWall, Subject: 2, Object: 1}}, rec.events)
}

func TestProcessArgumentOrder(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {10: box(2000, 2000, 1000)},
		entity.Baddie: {20: box(2400, 2000, 750), 21: box(8000, 8000, 750)},
		entity.Bullet: {30: box(1600, 2000, 100), 31: box(8000, 7700, 100)},
		entity.Cannon: {40: box(8300, 8000, 200)},
	}
	var rec recorder
	NewEngine(snapshot, recordAll()).Process(&rec, snapshot)

	assert.Equal(t, []Event{
		{Kind: BaddieWall, Subject: 20, Object: 10},
		{Kind: BulletWall, Subject: 30, Object: 10},
		{Kind: BulletBaddie, Subject: 31, Object: 21},
		{Kind: BaddieCannon, Subject: 21, Object: 40},
	}, rec.events)
}

func TestProcessFollowsRegistrationOrder(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(5000, 5000, 1000)},
		entity.Baddie: {2: box(5300, 5000, 750)},
		entity.Bullet: {3: box(4600, 5000, 100)},
	}
	h := NewHandlers[*recorder]().
		Handle(BulletWall, record).
		Handle(BaddieWall, record)
	assert.Equal(t, []Kind{BulletWall, BaddieWall}, h.Order())

	var rec recorder
	NewEngine(snapshot, h).Process(&rec, snapshot)

	require.Len(t, rec.events, 2)
	assert.Equal(t, BulletWall, rec.events[0].Kind)
	assert.Equal(t, BaddieWall, rec.events[1].Kind)
}

func TestProcessIgnoresUnregisteredKinds(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(5000, 5000, 1000)},
		entity.Bullet: {3: box(4600, 5000, 100)},
	}
	var rec recorder
	report := NewEngine(snapshot, NewHandlers[*recorder]().Handle(BaddieWall, record)).Process(&rec, snapshot)

	assert.Empty(t, rec.events)
	assert.NotContains(t, report.Detected, BulletWall)
}

func TestProcessDetectsAtArenaEdge(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(9900, 9900, 1000)},
		entity.Baddie: {2: box(9950, 9950, 750)},
	}
	var rec recorder
	NewEngine(snapshot, recordAll(), WithBinSize(1000)).Process(&rec, snapshot)

	assert.Equal(t, []Event{{Kind: BaddieWall, Subject: 2, Object: 1}}, rec.events)
}

func TestProcessMarginColumnNeighboursAreNotEvents(t *testing.T) {
	wall := box(10400, 2500, 400)
	baddie := box(300, 3500, 400)
	m, _ := BuildMap(Geometries{1: wall, 2: baddie}, NewGrid(10000, 10000, 1000))
	require.Equal(t, IDSet{1: {}, 2: {}}, m[30])

	snapshot := Categories{
		entity.Wall:   {1: wall},
		entity.Baddie: {2: baddie},
	}
	var rec recorder
	NewEngine(snapshot, recordAll(), WithBinSize(1000)).Process(&rec, snapshot)

	assert.Empty(t, rec.events)
}

func TestProcessUsesCurrentGeometry(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1200, 1200, 1000)},
		entity.Baddie: {2: box(1200, 1200, 750)},
	}
	current := Categories{
		entity.Wall:   snapshot[entity.Wall],
		entity.Baddie: {2: box(1400, 1400, 10)},
	}
	var rec recorder
	NewEngine(snapshot, recordAll()).Process(&rec, current)
	assert.Len(t, rec.events, 1)

	current[entity.Baddie][2] = box(1950, 1950, 10)
	rec.events = nil
	NewEngine(snapshot, recordAll()).Process(&rec, current)
	assert.Empty(t, rec.events)
}

func TestProcessMissingGeometryPanics(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1200, 1200, 1000)},
		entity.Baddie: {2: box(1200, 1200, 750)},
	}
	current := Categories{entity.Wall: snapshot[entity.Wall]}
	engine := NewEngine(snapshot, recordAll())

	err := recoverError(func() { engine.Process(&recorder{}, current) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingGeometry))
}

func TestProcessWorkerPanicReachesCaller(t *testing.T) {
	snapshot := Categories{
		entity.Wall:   {1: box(1200, 1200, 1000)},
		entity.Baddie: {2: box(1200, 1200, 750)},
	}
	open := *box(1200, 1200, 750)
	open[4] = geometry.Point{}
	current := Categories{
		entity.Wall:   snapshot[entity.Wall],
		entity.Baddie: {2: &open},
	}
	engine := NewEngine(snapshot, recordAll(), WithWorkers(4))

	assert.PanicsWithValue(t, geometry.ErrOpenPolygon, func() {
		engine.Process(&recorder{}, current)
	})
}

func TestProcessSameResultForAnyWorkerCount(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	snapshot := Categories{
		entity.Wall:   {},
		entity.Baddie: {},
		entity.Bullet: {},
		entity.Cannon: {1: box(5000, 5000, 200)},
	}
	var alloc entity.Allocator
	alloc.Next()
	scatter := func(kind entity.Kind, n, size int) {
		for i := 0; i < n; i++ {
			snapshot[kind][alloc.Next()] = box(rng.Intn(10000), rng.Intn(10000), size)
		}
	}
	scatter(entity.Wall, 40, 1000)
	scatter(entity.Baddie, 60, 750)
	scatter(entity.Bullet, 80, 100)

	var want recorder
	NewEngine(snapshot, recordAll(), WithWorkers(1)).Process(&want, snapshot)
	require.NotEmpty(t, want.events)

	for _, workers := range []int{2, 3, 8, 500} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var got recorder
			NewEngine(snapshot, recordAll(), WithWorkers(workers)).Process(&got, snapshot)
			assert.Equal(t, want.events, got.events)
		})
	}
}

func TestHandlersRegisterTwicePanics(t *testing.T) {
	h := NewHandlers[*recorder]().Handle(BulletWall, record)
	assert.Panics(t, func() { h.Handle(BulletWall, record) })
	assert.Panics(t, func() { h.Handle(Kind(99), record) })
}

func TestKindPairing(t *testing.T) {
	s, o := BulletBaddie.Pairing()
	assert.Equal(t, entity.Bullet, s)
	assert.Equal(t, entity.Baddie, o)
	assert.Equal(t, "baddie-cannon", BaddieCannon.String())
}
