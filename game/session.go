package game

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Session-related errors.
var (
	ErrSessionStopped = errors.New("session stopped")
	ErrInvalidIndex   = errors.New("cell index out of range")
	ErrGameNotWon     = errors.New("game is not won")
)

// Event types published by a session.
const (
	EventState = "state" // EventState carries the board after a change or a clock tick.
	EventWon   = "won"   // EventWon is published once per won game, after the end delay.
	EventLost  = "lost"  // EventLost is published once per lost game, after the end delay.
)

const (
	defaultTickInterval = time.Second
	eventBufferSize     = 64
)

// Event is a notification about the board of a session.
type Event struct {
	Type     string
	Snapshot Snapshot
}

// SessionConfig holds the settings used to create a Session.
type SessionConfig struct {
	Params       Params
	Random       Random
	EndDelay     time.Duration
	TickInterval time.Duration // TickInterval defaults to one second.
}

type command struct {
	apply func(*Board) (bool, error)
	reply chan commandResult
}

type commandResult struct {
	snapshot Snapshot
	err      error
}

// Session runs a board inside a single goroutine. Player commands and clock
// ticks are processed one at a time, so the board is never mutated
// concurrently.
type Session struct {
	board        *Board
	tickInterval time.Duration
	commands     chan command
	outcomes     chan State
	events       chan Event
	final        *Snapshot // final holds the ended board until its outcome is published.
	version      uint64    // version counts board changes, clock ticks included.
	stop         chan struct{}
	done         chan struct{}
	stopOnce     sync.Once
}

// NewSession creates a session with a freshly generated board.
func NewSession(c SessionConfig) (*Session, error) {
	s := &Session{
		tickInterval: c.TickInterval,
		commands:     make(chan command),
		outcomes:     make(chan State),
		events:       make(chan Event, eventBufferSize),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	if s.tickInterval <= 0 {
		s.tickInterval = defaultTickInterval
	}

	board, err := NewBoard(BoardConfig{
		Params:     c.Params,
		Random:     c.Random,
		EndDelay:   c.EndDelay,
		OnWin:      func() { s.notify(StateWon) },
		OnGameOver: func() { s.notify(StateLost) },
	})
	if err != nil {
		return nil, err
	}
	s.board = board
	return s, nil
}

// Start processes commands and clock ticks until Stop is called.
func (s *Session) Start() {
	ticker := time.NewTicker(s.tickInterval)
	defer func() {
		ticker.Stop()
		s.board.Close()
		close(s.events)
		close(s.done)
	}()

	for {
		select {
		case <-s.stop:
			return
		case cmd := <-s.commands:
			s.handleCommand(cmd)
		case <-ticker.C:
			if s.board.Tick() {
				s.publishState()
			}
		case st := <-s.outcomes:
			s.publishOutcome(st)
		}
	}
}

// Stop ends the session loop and closes the event channel. It is safe to
// call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Events returns the channel on which board events are published. State
// events are dropped when the reader falls behind.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) handleCommand(cmd command) {
	wasOver := s.board.Over()
	changed, err := cmd.apply(s.board)
	if changed {
		s.version++
	}
	if !s.board.Over() {
		// A board regenerated during the end delay still reports its outcome.
		if s.final != nil {
			s.publishOutcome(s.final.State)
		}
		s.final = nil
	} else if !wasOver {
		snap := s.snapshot()
		s.final = &snap
	}

	snap := s.snapshot()
	cmd.reply <- commandResult{snapshot: snap, err: err}
	if changed {
		s.publish(Event{Type: EventState, Snapshot: snap})
	}
}

func (s *Session) notify(st State) {
	select {
	case s.outcomes <- st:
	case <-s.done:
	}
}

func (s *Session) publishState() {
	s.version++
	s.publish(Event{Type: EventState, Snapshot: s.snapshot()})
}

func (s *Session) snapshot() Snapshot {
	snap := s.board.Snapshot()
	snap.Version = s.version
	return snap
}

// publishOutcome emits the end-of-game event of the board that ended most
// recently, at most once per game.
func (s *Session) publishOutcome(st State) {
	if s.final == nil || s.final.State != st {
		return
	}
	event := Event{Type: EventLost, Snapshot: *s.final}
	if st == StateWon {
		event.Type = EventWon
	}
	s.final = nil

	select {
	case s.events <- event:
	case <-s.stop:
	}
}

func (s *Session) publish(e Event) {
	select {
	case s.events <- e:
	default:
	}
}

// do sends a command to the loop and waits for its result.
func (s *Session) do(ctx context.Context, apply func(*Board) (bool, error)) (Snapshot, error) {
	cmd := command{apply: apply, reply: make(chan commandResult, 1)}

	select {
	case s.commands <- cmd:
	case <-s.done:
		return Snapshot{}, ErrSessionStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.snapshot, res.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Reveal opens the cell at index.
func (s *Session) Reveal(ctx context.Context, index int) (Snapshot, error) {
	return s.do(ctx, func(b *Board) (bool, error) {
		if !b.InBounds(index) {
			return false, ErrInvalidIndex
		}
		return b.Reveal(index), nil
	})
}

// ToggleFlag flips the flag on the cell at index.
func (s *Session) ToggleFlag(ctx context.Context, index int) (Snapshot, error) {
	return s.do(ctx, func(b *Board) (bool, error) {
		if !b.InBounds(index) {
			return false, ErrInvalidIndex
		}
		return b.ToggleFlag(index), nil
	})
}

// Reset regenerates the board with the same dimensions and level.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	return s.do(ctx, func(b *Board) (bool, error) {
		b.Reset()
		return true, nil
	})
}

// Configure applies new board params, regenerating the board if they differ.
func (s *Session) Configure(ctx context.Context, p Params) (Snapshot, error) {
	return s.do(ctx, func(b *Board) (bool, error) {
		return b.SetParams(p)
	})
}

// Resize switches the board to another level and size, keeping its reset
// key. Unchanged dimensions leave the current game untouched.
func (s *Session) Resize(ctx context.Context, level, rows, cols int) (Snapshot, error) {
	return s.do(ctx, func(b *Board) (bool, error) {
		return b.SetParams(Params{
			Rows:     rows,
			Cols:     cols,
			Level:    level,
			ResetKey: b.Params().ResetKey,
		})
	})
}

// Snapshot returns the current board.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.do(ctx, func(*Board) (bool, error) {
		return false, nil
	})
}

// Advance moves a won board to the next level using that level's default
// dimensions. It reports whether the last level was just completed, in which
// case play restarts from the first level.
func (s *Session) Advance(ctx context.Context) (Snapshot, bool, error) {
	var complete bool
	snap, err := s.do(ctx, func(b *Board) (bool, error) {
		if b.State() != StateWon {
			return false, ErrGameNotWon
		}
		next, done := NextLevel(b.Params().Level)
		complete = done
		level := LevelConfig(next)
		return b.SetParams(Params{
			Rows:     level.Rows,
			Cols:     level.Cols,
			Level:    next,
			ResetKey: b.Params().ResetKey,
		})
	})
	if err != nil {
		return snap, false, err
	}
	return snap, complete, nil
}
