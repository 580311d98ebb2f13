package world

import (
	"time"

	"go.uber.org/zap"

	"arena-server/collision"
	"arena-server/entity"
	"arena-server/geometry"
)

// ReloadTime is the minimum gap between two shots
const ReloadTime = time.Second

// LevelState is the outcome of one frame
type LevelState uint8

const (
	Playing LevelState = iota
	Complete
	GameOver
)

func (s LevelState) String() string {
	switch s {
	case Complete:
		return "complete"
	case GameOver:
		return "game_over"
	}
	return "playing"
}

// FrameStats describes what one Update did
type FrameStats struct {
	Removed  int
	Kills    int
	Bounces  int
	Hits     int
	Missed   int
	Detected map[collision.Kind]int
}

// frame is the mutable context handed to collision handlers
type frame struct {
	w       *World
	remove  map[entity.ID]struct{}
	bounced map[entity.ID]struct{}
	killed  map[entity.ID]struct{}
	hits    int
}

func (f *frame) scheduleRemoval(id entity.ID) {
	f.remove[id] = struct{}{}
}

// bounceOff sends a baddie back the way it came. A baddie touching several
// walls reverses only once per frame.
type bounceOff struct{}

func (bounceOff) OnCollision(f *frame, ev collision.Event) {
	if _, done := f.bounced[ev.Subject]; done {
		return
	}
	f.bounced[ev.Subject] = struct{}{}
	s := f.w.shapes[ev.Subject]
	s.MoveBack()
	s.Reverse()
}

// absorb removes a bullet that hit a wall
type absorb struct{}

func (absorb) OnCollision(f *frame, ev collision.Event) {
	f.scheduleRemoval(ev.Subject)
}

// kill removes a bullet and the baddie it hit
type kill struct{}

func (kill) OnCollision(f *frame, ev collision.Event) {
	f.scheduleRemoval(ev.Subject)
	f.scheduleRemoval(ev.Object)
	f.killed[ev.Object] = struct{}{}
}

// ram damages the cannon and destroys the baddie that hit it
type ram struct{}

func (ram) OnCollision(f *frame, ev collision.Event) {
	if _, gone := f.remove[ev.Subject]; gone {
		return
	}
	f.scheduleRemoval(ev.Subject)
	if f.w.health[ev.Object] > 0 {
		f.w.health[ev.Object]--
	}
	f.hits++
}

// rules is shared by every world; handlers keep no state of their own.
// Kills are dispatched before cannon hits so a baddie shot on the frame it
// reaches the cannon does no damage.
var rules = collision.NewHandlers[*frame]().
	Register(collision.BaddieWall, bounceOff{}).
	Register(collision.BulletWall, absorb{}).
	Register(collision.BulletBaddie, kill{}).
	Register(collision.BaddieCannon, ram{})

// Update advances the world by dt milliseconds: moves every shape, drops
// bullets that left the arena, then resolves collisions.
func (w *World) Update(dt int) (LevelState, FrameStats) {
	for id, s := range w.shapes {
		switch w.kinds[id] {
		case entity.Baddie, entity.Cannon:
			s.Advance(dt, true, w.width, w.height)
		case entity.Bullet, entity.Wall:
			s.Advance(dt, false, w.width, w.height)
		}
	}
	w.updateGeometry()

	var stats FrameStats
	for id, k := range w.kinds {
		if k == entity.Bullet && !w.insideArena(w.shapes[id].Center) {
			w.Remove(id)
			stats.Missed++
		}
	}

	f := &frame{
		w:       w,
		remove:  make(map[entity.ID]struct{}),
		bounced: make(map[entity.ID]struct{}),
		killed:  make(map[entity.ID]struct{}),
	}
	cats := w.Categories()
	opts := []collision.Option{
		collision.WithArena(w.width, w.height),
		collision.WithLogger(w.logger),
	}
	if w.workers > 0 {
		opts = append(opts, collision.WithWorkers(w.workers))
	}
	engine := collision.NewEngine(cats, rules, opts...)
	report := engine.Process(f, cats)

	for id := range f.remove {
		w.Remove(id)
	}
	w.score += len(f.killed)

	stats.Removed = len(f.remove) + stats.Missed
	stats.Kills = len(f.killed)
	stats.Bounces = len(f.bounced)
	stats.Hits = f.hits
	stats.Detected = report.Detected

	if len(f.remove) > 0 {
		w.logger.Debug("frame resolved",
			zap.Int("removed", stats.Removed),
			zap.Int("kills", stats.Kills),
			zap.Int("cannon_hits", stats.Hits),
		)
	}
	return w.state(), stats
}

func (w *World) state() LevelState {
	if _, ok := w.health[w.cannon]; ok && w.health[w.cannon] <= 0 {
		return GameOver
	}
	if w.Count(entity.Baddie) == 0 {
		return Complete
	}
	return Playing
}

// TryFire shoots a bullet from the cannon in dir if the cannon has reloaded
// since prev. It returns the time of the most recent shot.
func (w *World) TryFire(now, prev time.Time, dir geometry.Direction) (time.Time, error) {
	id, ok := w.Cannon()
	if !ok {
		return prev, ErrNoCannon
	}
	if !now.After(prev.Add(ReloadTime)) {
		return prev, nil
	}
	w.Add(w.factory.MakeBullet(w.shapes[id].Center, geometry.DirectionVector(dir)))
	return now, nil
}

// MoveCannon starts the cannon moving in dir
func (w *World) MoveCannon(dir geometry.Direction) error {
	id, ok := w.Cannon()
	if !ok {
		return ErrNoCannon
	}
	w.shapes[id].SetMovement(dir, CannonSpeed)
	return nil
}

func (w *World) StopCannon() error {
	id, ok := w.Cannon()
	if !ok {
		return ErrNoCannon
	}
	w.shapes[id].Stop()
	return nil
}
