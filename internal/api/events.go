package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vytor/quizflash/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventMessage is the envelope for everything sent on the events socket.
type eventMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// handleQuizEvents streams the caller's session events over a websocket. The
// first message is a full snapshot; clients may send {"type":"sync"} at any
// time for another one.
func (s *Server) handleQuizEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := s.QuizService.Subscribe(r.Context(), user.ID)
	defer cancel()

	log.Info("events socket opened")
	defer log.Info("events socket closed")

	syncs := make(chan struct{}, 1)
	closed := make(chan struct{})
	go readPump(conn, log, syncs, closed)

	send := func(msg eventMessage) bool {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Error("failed to encode event: %v", err)
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug("events socket write failed: %v", err)
			return false
		}
		return true
	}

	snapshot := func() eventMessage {
		return eventMessage{Type: "snapshot", Payload: s.QuizService.State(r.Context(), user.ID)}
	}

	if !send(snapshot()) {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !send(eventMessage{Type: string(ev.Type), Payload: ev}) {
				return
			}
		case <-syncs:
			if !send(snapshot()) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes client messages until the socket closes. Only sync
// requests are understood; anything else is ignored.
func readPump(conn *websocket.Conn, log *logger.Logger, syncs chan<- struct{}, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("events socket read error: %v", err)
			}
			return
		}

		var msg eventMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed client message: %v", err)
			continue
		}
		switch msg.Type {
		case "sync", "ping":
			select {
			case syncs <- struct{}{}:
			default:
			}
		default:
			log.Debug("ignoring client message type %q", msg.Type)
		}
	}
}

