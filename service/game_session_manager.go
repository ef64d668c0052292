package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
)

const (
	defaultSessionTTL = 30 * time.Minute
	janitorInterval   = time.Minute
	recordTimeout     = 2 * time.Second
	subscriberBuffer  = 16
	minBoardDimension = 1
	MaxBoardDimension = 30
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidLevel      = fmt.Errorf("level must be between %d and %d", game.MinLevel, game.MaxLevel)
	ErrInvalidDimensions = fmt.Errorf("rows and cols must be between %d and %d", minBoardDimension, MaxBoardDimension)
	ErrMissingLogger     = errors.New("logger is required")
	ErrManagerStopped    = errors.New("session manager stopped")
)

var _ i.GameSessionManager = &GameSessionManager{}

type session struct {
	game        *game.Session
	subscribers map[int]chan game.Event
	nextSub     int
	lastActive  atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// GameSessionManager creates minesweeper sessions, routes player commands to
// them and records every finished game.
type GameSessionManager struct {
	sessions      map[uuid.UUID]*session
	results       i.ResultRepo
	leaderboard   i.Leaderboard
	logger        i.Logger
	endDelay      time.Duration
	tickInterval  time.Duration
	ttl           time.Duration
	randomFactory func() game.Random
	now           func() time.Time
	stop          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	sync.RWMutex
}

// Config holds the dependencies and settings of a GameSessionManager.
type Config struct {
	Results       i.ResultRepo  // Results may be nil, in which case games are not archived.
	Leaderboard   i.Leaderboard // Leaderboard may be nil, in which case wins are not ranked.
	Logger        i.Logger
	EndDelay      time.Duration // EndDelay is the pause before a win or loss is announced.
	TickInterval  time.Duration // TickInterval is the clock period, one second by default.
	SessionTTL    time.Duration // SessionTTL is how long an idle session is kept.
	RandomFactory func() game.Random
}

// NewGameSessionManager creates a manager and starts its idle-session janitor.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}

	gsm := &GameSessionManager{
		sessions:      make(map[uuid.UUID]*session),
		results:       c.Results,
		leaderboard:   c.Leaderboard,
		logger:        c.Logger,
		endDelay:      c.EndDelay,
		tickInterval:  c.TickInterval,
		ttl:           c.SessionTTL,
		randomFactory: c.RandomFactory,
		now:           time.Now,
		stop:          make(chan struct{}),
	}
	if gsm.ttl <= 0 {
		gsm.ttl = defaultSessionTTL
	}
	if gsm.randomFactory == nil {
		gsm.randomFactory = func() game.Random { return game.DefaultRandom }
	}

	gsm.wg.Add(1)
	go gsm.janitor(janitorInterval)
	return gsm, nil
}

// NewSession implements i.GameSessionManager.
func (g *GameSessionManager) NewSession(ctx context.Context, level, rows, cols int) (uuid.UUID, game.Snapshot, error) {
	params, err := resolveParams(level, rows, cols)
	if err != nil {
		return uuid.Nil, game.Snapshot{}, err
	}

	gs, err := game.NewSession(game.SessionConfig{
		Params:       params,
		Random:       g.randomFactory(),
		EndDelay:     g.endDelay,
		TickInterval: g.tickInterval,
	})
	if err != nil {
		return uuid.Nil, game.Snapshot{}, fmt.Errorf("creating game session: %w", err)
	}

	go gs.Start()
	snap, err := gs.Snapshot(ctx)
	if err != nil {
		gs.Stop()
		return uuid.Nil, game.Snapshot{}, err
	}

	s := &session{game: gs, subscribers: make(map[int]chan game.Event)}
	s.touch(g.now())

	g.Lock()
	if g.stopped() {
		g.Unlock()
		gs.Stop()
		return uuid.Nil, game.Snapshot{}, ErrManagerStopped
	}
	id := g.saveSession(s)
	g.wg.Add(1)
	g.Unlock()

	go g.listenGameChan(id, s)

	g.logger.Info(fmt.Sprintf("started session %s: level=%d rows=%d cols=%d mines=%d", id, params.Level, params.Rows, params.Cols, snap.Mines))
	return id, snap, nil
}

// resolveParams validates a requested board. Zero rows or cols take the
// level's default.
func resolveParams(level, rows, cols int) (game.Params, error) {
	if level < game.MinLevel || level > game.MaxLevel {
		return game.Params{}, ErrInvalidLevel
	}

	defaults := game.LevelConfig(level)
	if rows == 0 {
		rows = defaults.Rows
	}
	if cols == 0 {
		cols = defaults.Cols
	}
	if !validDimension(rows) || !validDimension(cols) {
		return game.Params{}, ErrInvalidDimensions
	}
	return game.Params{Rows: rows, Cols: cols, Level: level}, nil
}

func (g *GameSessionManager) stopped() bool {
	select {
	case <-g.stop:
		return true
	default:
		return false
	}
}

func validDimension(n int) bool {
	return n >= minBoardDimension && n <= MaxBoardDimension
}

// saveSession stores s under a fresh ID. The caller holds the lock.
func (g *GameSessionManager) saveSession(s *session) uuid.UUID {
	id := uuid.New()
	for {
		if _, ok := g.sessions[id]; !ok {
			break
		}
		id = uuid.New()
	}
	g.sessions[id] = s
	return id
}

func (g *GameSessionManager) lookup(id uuid.UUID) (*session, error) {
	g.RLock()
	defer g.RUnlock()
	s, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(g.now())
	return s, nil
}

// Snapshot implements i.GameSessionManager.
func (g *GameSessionManager) Snapshot(ctx context.Context, id uuid.UUID) (game.Snapshot, error) {
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.game.Snapshot(ctx)
}

// Reveal implements i.GameSessionManager.
func (g *GameSessionManager) Reveal(ctx context.Context, id uuid.UUID, index int) (game.Snapshot, error) {
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.game.Reveal(ctx, index)
}

// ToggleFlag implements i.GameSessionManager.
func (g *GameSessionManager) ToggleFlag(ctx context.Context, id uuid.UUID, index int) (game.Snapshot, error) {
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.game.ToggleFlag(ctx, index)
}

// Reset implements i.GameSessionManager.
func (g *GameSessionManager) Reset(ctx context.Context, id uuid.UUID) (game.Snapshot, error) {
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.game.Reset(ctx)
}

// Configure implements i.GameSessionManager.
func (g *GameSessionManager) Configure(ctx context.Context, id uuid.UUID, level, rows, cols int) (game.Snapshot, error) {
	params, err := resolveParams(level, rows, cols)
	if err != nil {
		return game.Snapshot{}, err
	}
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return s.game.Resize(ctx, params.Level, params.Rows, params.Cols)
}

// Advance implements i.GameSessionManager.
func (g *GameSessionManager) Advance(ctx context.Context, id uuid.UUID) (game.Snapshot, bool, error) {
	s, err := g.lookup(id)
	if err != nil {
		return game.Snapshot{}, false, err
	}

	snap, complete, err := s.game.Advance(ctx)
	if err != nil {
		return snap, false, err
	}
	if complete {
		g.logger.Info(fmt.Sprintf("session %s completed every level", id))
	} else {
		g.logger.Info(fmt.Sprintf("session %s advanced to level %d", id, snap.Level))
	}
	return snap, complete, nil
}

// Close implements i.GameSessionManager.
func (g *GameSessionManager) Close(id uuid.UUID) error {
	g.Lock()
	s, ok := g.sessions[id]
	delete(g.sessions, id)
	g.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.game.Stop()
	g.logger.Info(fmt.Sprintf("closed session %s", id))
	return nil
}

// Subscribe implements i.GameSessionManager.
func (g *GameSessionManager) Subscribe(id uuid.UUID) (<-chan game.Event, func(), error) {
	g.Lock()
	defer g.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	key := s.nextSub
	s.nextSub++
	ch := make(chan game.Event, subscriberBuffer)
	s.subscribers[key] = ch

	unsubscribe := func() {
		g.Lock()
		defer g.Unlock()
		if sub, ok := s.subscribers[key]; ok {
			delete(s.subscribers, key)
			close(sub)
		}
	}
	return ch, unsubscribe, nil
}

// listenGameChan forwards session events to subscribers and records
// finished games until the session stops.
func (g *GameSessionManager) listenGameChan(id uuid.UUID, s *session) {
	defer g.wg.Done()
	for event := range s.game.Events() {
		g.broadcast(s, event)

		switch event.Type {
		case game.EventWon:
			g.record(id, event.Snapshot, dmn.OutcomeWon)
		case game.EventLost:
			g.record(id, event.Snapshot, dmn.OutcomeLost)
		}
	}

	g.Lock()
	for key, sub := range s.subscribers {
		delete(s.subscribers, key)
		close(sub)
	}
	g.Unlock()
}

func (g *GameSessionManager) broadcast(s *session, event game.Event) {
	g.RLock()
	defer g.RUnlock()
	for _, sub := range s.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}

// record archives a finished game. Failures are logged and never reach the
// session.
func (g *GameSessionManager) record(id uuid.UUID, snap game.Snapshot, outcome dmn.Outcome) {
	g.logger.Info(fmt.Sprintf("session %s %s level %d in %ds", id, outcome, snap.Level, snap.Elapsed))

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if g.results != nil {
		result := &dmn.Result{
			ID:         uuid.New(),
			SessionID:  id,
			Level:      snap.Level,
			Rows:       snap.Rows,
			Cols:       snap.Cols,
			Mines:      snap.Mines,
			Outcome:    outcome,
			Elapsed:    snap.Elapsed,
			FinishedAt: g.now().UTC(),
		}
		if err := g.results.Save(ctx, result); err != nil {
			g.logger.Error(fmt.Sprintf("saving result of session %s: %s", id, err))
		}
	}

	if outcome == dmn.OutcomeWon && g.leaderboard != nil && rankable(snap) {
		if err := g.leaderboard.Submit(ctx, snap.Level, id, snap.Elapsed); err != nil {
			g.logger.Error(fmt.Sprintf("submitting leaderboard time of session %s: %s", id, err))
		}
	}
}

// rankable reports whether a board has its level's standard size. Only
// those games compete on the level's leaderboard.
func rankable(snap game.Snapshot) bool {
	level := game.LevelConfig(snap.Level)
	return snap.Rows == level.Rows && snap.Cols == level.Cols
}

func (g *GameSessionManager) janitor(interval time.Duration) {
	defer g.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.evictIdle()
		}
	}
}

// evictIdle stops sessions that received no command within the TTL.
func (g *GameSessionManager) evictIdle() int {
	cutoff := g.now().Add(-g.ttl).UnixNano()

	g.Lock()
	var idle []*session
	for id, s := range g.sessions {
		if s.lastActive.Load() < cutoff {
			idle = append(idle, s)
			delete(g.sessions, id)
			g.logger.Warning(fmt.Sprintf("evicting idle session %s", id))
		}
	}
	g.Unlock()

	for _, s := range idle {
		s.game.Stop()
	}
	return len(idle)
}

// StopAll stops every session and waits for their results to be recorded.
func (g *GameSessionManager) StopAll() {
	g.Lock()
	g.stopOnce.Do(func() {
		close(g.stop)
	})
	all := make([]*session, 0, len(g.sessions))
	for id, s := range g.sessions {
		all = append(all, s)
		delete(g.sessions, id)
	}
	g.Unlock()

	for _, s := range all {
		s.game.Stop()
	}
	g.wg.Wait()
}
