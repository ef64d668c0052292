package gameapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512
)

// stream upgrades the request and pushes every event of the session until
// either side goes away.
func (gc *GameController) stream(ctx *gin.Context) {
	id, ok := sessionID(ctx)
	if !ok {
		return
	}

	events, unsubscribe, err := gc.gameSessionManager.Subscribe(id)
	if err != nil {
		gc.fail(ctx, err)
		return
	}

	ws, err := gc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		unsubscribe()
		gc.logger.Warning(fmt.Sprintf("upgrading stream of session %s: %s", id, err))
		return
	}

	s := &socket{
		id:          id,
		ws:          ws,
		events:      events,
		unsubscribe: unsubscribe,
		closed:      make(chan struct{}),
		logger:      gc.logger,
	}

	// Taken after subscribing, so queued events at or below its version are stale.
	snap, err := gc.gameSessionManager.Snapshot(ctx.Request.Context(), id)
	if err == nil {
		s.first = &EventMessage{Type: game.EventState, Game: toGameResponse(snap)}
		s.seen = snap.Version
	}

	go s.readPump()
	s.writePump()
}

// socket is one WebSocket client following a session.
type socket struct {
	id          uuid.UUID
	ws          *websocket.Conn
	events      <-chan game.Event
	unsubscribe func()
	first       *EventMessage
	seen        uint64 // seen is the newest board version already sent.
	closed      chan struct{}
	logger      i.Logger
}

// readPump drains the connection so control frames are handled, and
// reports when the client leaves.
func (s *socket) readPump() {
	defer close(s.closed)

	s.ws.SetReadLimit(maxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warning(fmt.Sprintf("stream of session %s: %s", s.id, err))
			}
			return
		}
	}
}

func (s *socket) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.unsubscribe()
		_ = s.ws.Close()
	}()

	if s.first != nil {
		if err := s.write(s.first); err != nil {
			return
		}
	}

	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if s.stale(event) {
				continue
			}
			if err := s.write(&EventMessage{Type: event.Type, Game: toGameResponse(event.Snapshot)}); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.closed:
			return
		}
	}
}

// stale reports whether a state event shows a board older than one already
// sent. Outcome events always go through.
func (s *socket) stale(e game.Event) bool {
	if e.Type != game.EventState {
		return false
	}
	if e.Snapshot.Version <= s.seen {
		return true
	}
	s.seen = e.Snapshot.Version
	return false
}

func (s *socket) write(msg *EventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding event of session %s: %s", s.id, err))
		return err
	}

	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warning(fmt.Sprintf("writing to stream of session %s: %s", s.id, err))
		return err
	}
	return nil
}
