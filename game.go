package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"arena-server/geometry"
	"arena-server/world"
)

// ErrSessionFull is returned when a session has no room for another player
var ErrSessionFull = errors.New("session full")

// Broadcaster sends messages to one connected client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// RunRecorder persists finished runs
type RunRecorder interface {
	RecordRun(r RunRow) (int64, error)
}

// Game runs one session's world on its own ticker
type Game struct {
	mu        sync.RWMutex
	sessionID string
	cfg       GameConfig
	logger    *zap.Logger
	recorder  RunRecorder
	analytics *Analytics

	world     *world.World
	level     int
	// banked is the score of levels completed in this run
	banked    int
	runStart  time.Time
	lastFire  time.Time
	// restartAt is set while the game-over screen is showing
	restartAt time.Time

	players map[string]*Player
	// order holds player ids by join time
	order   []string
	clients map[string]Broadcaster
	pilot   string

	tick    uint64
	running bool
	stop    chan struct{}
	// onCrash runs once the loop has stopped on a failed tick
	onCrash func()
	now     func() time.Time
}

// NewGame builds a game at cfg.StartLevel. recorder and analytics may be nil.
func NewGame(sessionID string, cfg GameConfig, recorder RunRecorder, analytics *Analytics, logger *zap.Logger) *Game {
	g := &Game{
		sessionID: sessionID,
		cfg:       cfg,
		logger:    logger.With(zap.String("session", sessionID)),
		recorder:  recorder,
		analytics: analytics,
		players:   make(map[string]*Player),
		clients:   make(map[string]Broadcaster),
		stop:      make(chan struct{}),
		now:       time.Now,
	}
	g.loadLevel(cfg.StartLevel)
	g.runStart = g.now()
	return g
}

func (g *Game) loadLevel(n int) {
	g.level = n
	g.world = world.BuildLevel(n,
		world.WithArena(g.cfg.ArenaWidth, g.cfg.ArenaHeight),
		world.WithWorkers(g.cfg.Workers),
		world.WithLogger(g.logger),
	)
	g.lastFire = time.Time{}
}

// Run starts the game loop. A panic inside a tick ends the session.
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(g.cfg.TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := g.safeUpdate(); err != nil {
				g.logger.Error("tick failed, stopping session", zap.Error(err))
				g.mu.Lock()
				g.broadcastMsg(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session crashed"}})
				g.mu.Unlock()
				g.Stop()
				if g.onCrash != nil {
					g.onCrash()
				}
				return
			}
		case <-g.stop:
			return
		}
	}
}

func (g *Game) safeUpdate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()
	g.update()
	return nil
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// AddPlayer joins a player. The first player pilots the cannon, later
// players spectate until the pilot leaves.
func (g *Game) AddPlayer(name string, authID int64) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= g.cfg.MaxPlayers {
		return nil, ErrSessionFull
	}
	role := RoleSpectator
	if g.pilot == "" {
		role = RolePilot
	}
	p := NewPlayer(name, role)
	p.AuthPlayerID = authID
	g.players[p.ID] = p
	g.order = append(g.order, p.ID)
	if role == RolePilot {
		g.pilot = p.ID
	}
	return p, nil
}

// RemovePlayer drops a player and hands the cannon to the longest-waiting
// spectator if the pilot left
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[id]; !ok {
		return
	}
	delete(g.players, id)
	delete(g.clients, id)
	for i, pid := range g.order {
		if pid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if g.pilot != id {
		return
	}
	g.pilot = ""
	if len(g.order) > 0 {
		next := g.players[g.order[0]]
		next.Role = RolePilot
		g.pilot = next.ID
		if c, ok := g.clients[next.ID]; ok {
			c.SendJSON(Envelope{T: MsgWelcome, Data: g.welcomeFor(next)})
		}
	}
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// Welcome describes the session to a player who just joined
func (g *Game) Welcome(playerID string) (WelcomeMsg, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[playerID]
	if !ok {
		return WelcomeMsg{}, false
	}
	return g.welcomeFor(p), true
}

func (g *Game) welcomeFor(p *Player) WelcomeMsg {
	return WelcomeMsg{
		ID:     p.ID,
		Role:   p.Role.String(),
		Level:  g.level,
		Width:  g.world.Width(),
		Height: g.world.Height(),
	}
}

// HandleInput applies a pilot's input. Input from spectators is ignored.
func (g *Game) HandleInput(playerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || !p.IsPilot() || !g.restartAt.IsZero() {
		return
	}

	var err error
	switch input.Move {
	case MoveUp:
		err = g.world.MoveCannon(geometry.Up)
	case MoveDown:
		err = g.world.MoveCannon(geometry.Down)
	case MoveStop:
		err = g.world.StopCannon()
	}
	if err != nil {
		g.logger.Debug("move ignored", zap.Error(err))
	}

	var dir geometry.Direction
	switch input.Fire {
	case FireLeft:
		dir = geometry.Left
	case FireRight:
		dir = geometry.Right
	default:
		return
	}
	last, err := g.world.TryFire(g.now(), g.lastFire, dir)
	if err != nil {
		g.logger.Debug("fire ignored", zap.Error(err))
		return
	}
	if !last.Equal(g.lastFire) {
		g.lastFire = last
		p.Shots++
	}
}

// Players lists players in join order
func (g *Game) Players() []PlayerInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	infos := make([]PlayerInfo, 0, len(g.order))
	for _, id := range g.order {
		infos = append(infos, g.players[id].ToInfo())
	}
	return infos
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// Level returns the level being played
func (g *Game) Level() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.level
}

// update runs one game tick
func (g *Game) update() {
	run := g.step()
	if run != nil {
		g.record(*run)
	}
}

// step advances the world under the lock and returns a run to persist when
// the cannon was destroyed this tick
func (g *Game) step() *RunRow {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	now := g.now()

	if !g.restartAt.IsZero() {
		if now.Before(g.restartAt) {
			return nil
		}
		g.restartAt = time.Time{}
		g.banked = 0
		g.runStart = now
		g.loadLevel(g.cfg.StartLevel)
		g.broadcastMsg(Envelope{T: MsgLevel, Data: LevelMsg{Level: g.level}})
	}

	dt := int(g.cfg.TickDuration() / time.Millisecond)
	state, _ := g.world.Update(dt)

	var run *RunRow
	switch state {
	case world.Complete:
		g.banked += g.world.Score()
		score := g.banked
		g.analytics.Track(EvtLevelComplete, g.pilotAuthID(), g.sessionID, fmt.Sprintf(`{"level":%d,"score":%d}`, g.level, score))
		g.logger.Info("level complete", zap.Int("level", g.level), zap.Int("score", score))
		g.loadLevel(g.level + 1)
		g.broadcastMsg(Envelope{T: MsgLevel, Data: LevelMsg{Level: g.level, Score: score}})
	case world.GameOver:
		run = g.finishRun(OutcomeDestroyed, now)
		g.restartAt = now.Add(g.cfg.RestartDelay)
		g.broadcastMsg(Envelope{T: MsgOver, Data: OverMsg{Level: run.Level, Score: run.Score}})
	}

	if g.tick%g.cfg.BroadcastEvery() == 0 {
		g.broadcastState()
	}
	return run
}

func (g *Game) finishRun(outcome string, now time.Time) *RunRow {
	run := &RunRow{
		SessionID: g.sessionID,
		Level:     g.level,
		Score:     g.score(),
		Duration:  now.Sub(g.runStart),
		Outcome:   outcome,
		Pilot:     "nobody",
	}
	if p, ok := g.players[g.pilot]; ok {
		run.Pilot = p.Name
		run.PlayerID = p.AuthPlayerID
	}
	g.analytics.Track(EvtGameOver, run.PlayerID, g.sessionID, fmt.Sprintf(`{"level":%d,"score":%d}`, run.Level, run.Score))
	g.logger.Info("cannon destroyed", zap.Int("level", run.Level), zap.Int("score", run.Score))
	return run
}

// Abandon records the current run when the session closes mid-game
func (g *Game) Abandon() {
	g.mu.Lock()
	var run *RunRow
	if g.restartAt.IsZero() && g.score() > 0 {
		run = g.finishRun(OutcomeAbandoned, g.now())
	}
	g.mu.Unlock()
	if run != nil {
		g.record(*run)
	}
}

func (g *Game) record(run RunRow) {
	if g.recorder == nil {
		return
	}
	if _, err := g.recorder.RecordRun(run); err != nil {
		g.logger.Error("record run", zap.Error(err))
	}
}

// score is the run's total over every level played
func (g *Game) score() int {
	return g.banked + g.world.Score()
}

func (g *Game) pilotAuthID() int64 {
	if p, ok := g.players[g.pilot]; ok {
		return p.AuthPlayerID
	}
	return 0
}

// Snapshot builds the state frame for the current tick
func (g *Game) Snapshot() GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshot()
}

func (g *Game) snapshot() GameState {
	ids := g.world.IDs()
	state := GameState{
		Tick:     g.tick,
		Level:    g.level,
		Health:   g.world.Health(),
		Score:    g.score(),
		Entities: make([]EntityState, 0, len(ids)),
	}
	for _, id := range ids {
		e := g.world.Entity(id)
		s, _ := g.world.Shape(id)
		state.Entities = append(state.Entities, EntityState{
			ID:       uint32(e.ID),
			Kind:     uint8(e.Kind),
			X:        s.Center.X,
			Y:        s.Center.Y,
			Size:     s.Size,
			Rotation: float32(s.Rotation),
		})
	}
	state.Digest = digestEntities(state.Entities)
	return state
}

// digestEntities hashes the msgpack encoding of es
func digestEntities(es []EntityState) uint64 {
	data, err := msgpack.Marshal(es)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// broadcastState sends the current state to all clients as one binary frame
func (g *Game) broadcastState() {
	if len(g.clients) == 0 {
		return
	}
	data, err := msgpack.Marshal(g.snapshot())
	if err != nil {
		g.logger.Error("marshal state", zap.Error(err))
		return
	}
	for _, c := range g.clients {
		c.SendBinary(data)
	}
}

// broadcastMsg sends a message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, c := range g.clients {
		c.SendJSON(msg)
	}
}
