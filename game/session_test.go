package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startSession(t *testing.T, p Params, rnd Random) *Session {
	t.Helper()
	s, err := NewSession(SessionConfig{
		Params:       p,
		Random:       rnd,
		EndDelay:     -1,
		TickInterval: 5 * time.Millisecond,
	})
	assert.NoError(t, err)
	go s.Start()
	t.Cleanup(s.Stop)
	return s
}

// waitForEvent drains events until one of the given type arrives.
func waitForEvent(t *testing.T, s *Session, eventType string) Event {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case e, ok := <-s.Events():
			if !ok {
				t.Fatalf("events closed before %q", eventType)
			}
			if e.Type == eventType {
				return e
			}
		case <-timeout:
			t.Fatalf("no %q event", eventType)
		}
	}
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("reveal returns the updated board", func(t *testing.T) {
		s := startSession(t, Params{Rows: 4, Cols: 4, Level: 1}, layout(4, 4, 3, 15))
		snap, err := s.Reveal(ctx, 0)
		assert.NoError(t, err)
		assert.Equal(t, CellOpen, snap.Cells[0].State)
		assert.Equal(t, CellHidden, snap.Cells[7].State)

		e := waitForEvent(t, s, EventState)
		assert.Equal(t, CellOpen, e.Snapshot.Cells[0].State)
	})

	t.Run("invalid index", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		_, err := s.Reveal(ctx, 9)
		assert.ErrorIs(t, err, ErrInvalidIndex)
		_, err = s.ToggleFlag(ctx, -1)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("flag and reset", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		snap, err := s.ToggleFlag(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, CellFlagged, snap.Cells[4].State)
		assert.Equal(t, 0, snap.MinesLeft)

		snap, err = s.Reset(ctx)
		assert.NoError(t, err)
		for _, c := range snap.Cells {
			assert.Equal(t, CellHidden, c.State)
		}
		assert.Equal(t, 0, snap.Elapsed)
	})

	t.Run("configure regenerates on change", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		snap, err := s.Configure(ctx, Params{Rows: 5, Cols: 4, Level: 2})
		assert.NoError(t, err)
		assert.Len(t, snap.Cells, 20)
		assert.Equal(t, 2, snap.Level)

		_, err = s.Configure(ctx, Params{Rows: 0, Cols: 4, Level: 2})
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("version grows with every change", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		first, err := s.Snapshot(ctx)
		assert.NoError(t, err)

		flagged, err := s.ToggleFlag(ctx, 4)
		assert.NoError(t, err)
		assert.Greater(t, flagged.Version, first.Version)

		_, err = s.Reveal(ctx, 9)
		assert.ErrorIs(t, err, ErrInvalidIndex)
		snap, err := s.Snapshot(ctx)
		assert.NoError(t, err)
		assert.Equal(t, flagged.Version, snap.Version)

		e := waitForEvent(t, s, EventState)
		assert.Equal(t, flagged.Version, e.Snapshot.Version)
	})

	t.Run("resize keeps the game when nothing changes", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		_, err := s.Reveal(ctx, 0)
		assert.NoError(t, err)

		snap, err := s.Resize(ctx, 1, 3, 3)
		assert.NoError(t, err)
		assert.Equal(t, CellOpen, snap.Cells[0].State)

		snap, err = s.Resize(ctx, 1, 4, 4)
		assert.NoError(t, err)
		assert.Len(t, snap.Cells, 16)
		assert.Equal(t, StateInProgress, snap.State)
		assert.Equal(t, CellHidden, snap.Cells[0].State)
	})
}

func TestSessionOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("win is published once", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3))
		snap, err := s.Reveal(ctx, 0)
		assert.NoError(t, err)
		assert.Equal(t, StateWon, snap.State)

		e := waitForEvent(t, s, EventWon)
		assert.Equal(t, StateWon, e.Snapshot.State)

		select {
		case e := <-s.Events():
			assert.NotEqual(t, EventWon, e.Type)
		case <-time.After(30 * time.Millisecond):
		}
	})

	t.Run("loss is published with every mine open", func(t *testing.T) {
		s := startSession(t, Params{Rows: 4, Cols: 4, Level: 1}, layout(4, 4, 3, 15))
		_, err := s.Reveal(ctx, 15)
		assert.NoError(t, err)

		e := waitForEvent(t, s, EventLost)
		assert.Equal(t, StateLost, e.Snapshot.State)
		assert.Equal(t, CellMine, e.Snapshot.Cells[3].State)
		assert.Equal(t, CellMine, e.Snapshot.Cells[15].State)
	})
}

func TestSessionOutcomeBeforeDelay(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(SessionConfig{
		Params:       Params{Rows: 3, Cols: 3, Level: 1},
		Random:       layout(3, 3),
		EndDelay:     time.Hour,
		TickInterval: time.Hour,
	})
	assert.NoError(t, err)
	go s.Start()
	t.Cleanup(s.Stop)

	_, err = s.Reveal(ctx, 0)
	assert.NoError(t, err)
	snap, err := s.Reset(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StateInProgress, snap.State)

	e := waitForEvent(t, s, EventWon)
	assert.Equal(t, StateWon, e.Snapshot.State)

	_, err = s.Reset(ctx)
	assert.NoError(t, err)
	select {
	case e := <-s.Events():
		assert.NotEqual(t, EventWon, e.Type)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestSessionClock(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))

	time.Sleep(20 * time.Millisecond)
	snap, err := s.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.Elapsed)

	_, err = s.Reveal(ctx, 0)
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.Elapsed >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSessionAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("only a won game advances", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
		_, _, err := s.Advance(ctx)
		assert.ErrorIs(t, err, ErrGameNotWon)
	})

	t.Run("next level uses the level table", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3))
		_, err := s.Reveal(ctx, 0)
		assert.NoError(t, err)

		snap, complete, err := s.Advance(ctx)
		assert.NoError(t, err)
		assert.False(t, complete)
		assert.Equal(t, 2, snap.Level)
		assert.Equal(t, 8, snap.Rows)
		assert.Equal(t, 8, snap.Cols)
		assert.Equal(t, StateInProgress, snap.State)
	})

	t.Run("last level completes the campaign", func(t *testing.T) {
		s := startSession(t, Params{Rows: 3, Cols: 3, Level: 3}, layout(3, 3))
		_, err := s.Reveal(ctx, 0)
		assert.NoError(t, err)

		snap, complete, err := s.Advance(ctx)
		assert.NoError(t, err)
		assert.True(t, complete)
		assert.Equal(t, 1, snap.Level)
		assert.Len(t, snap.Cells, 36)
	})
}

func TestSessionStop(t *testing.T) {
	s := startSession(t, Params{Rows: 3, Cols: 3, Level: 1}, layout(3, 3, 4))
	s.Stop()
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}

	for range s.Events() {
	}
	_, err := s.Reveal(context.Background(), 0)
	assert.ErrorIs(t, err, ErrSessionStopped)
}

func TestSessionContext(t *testing.T) {
	s, err := NewSession(SessionConfig{Params: Params{Rows: 3, Cols: 3, Level: 1}})
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNextLevel(t *testing.T) {
	next, complete := NextLevel(1)
	assert.Equal(t, 2, next)
	assert.False(t, complete)

	next, complete = NextLevel(3)
	assert.Equal(t, 1, next)
	assert.True(t, complete)
}
