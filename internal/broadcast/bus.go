// Package broadcast implements the Broadcast Bus (spec component C5): a
// registry of live WebSocket subscribers, fanned out to on every finished
// Aggregator pipeline run, with per-session heartbeat liveness.
//
// Adapted from the hub/register/unregister/broadcast loop shape of a
// DAG-visualization WebSocket streamer, generalized to keyed sessions with
// a heartbeat timer and the envelope format this system's subscribers
// expect.
package broadcast

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// heartbeatInterval is how often the bus pings each session.
	heartbeatInterval = 5 * time.Second
	// clientTimeout is how long a session may go without a seen ping/pong
	// before it is forcibly unsubscribed.
	clientTimeout = 10 * time.Second
)

var busLogger = log.New(log.Writer(), "[BROADCAST] ", log.LstdFlags)

// envelope is the wire shape of every broadcast frame: the inner message
// is double-encoded so subscribers can dispatch on parse_type before
// parsing the payload itself.
type envelope struct {
	ParseType string `json:"parse_type"`
	Message   string `json:"message"`
}

type session struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	lastSeen time.Time
	mu       sync.Mutex
}

// Bus is the Broadcast Bus. Zero value is not usable; construct with New.
type Bus struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

// New builds a Bus that accepts connections from any origin, matching the
// teacher's development-mode CheckOrigin.
func New() *Bus {
	return &Bus{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// ServeWS upgrades r to a WebSocket connection and registers a new
// session for it. It returns once the session has fully unregistered.
func (b *Bus) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		busLogger.Printf("upgrade error: %v", err)
		return
	}

	id := uuid.New().String()
	s := &session{
		id:       id,
		conn:     conn,
		send:     make(chan []byte, 64),
		lastSeen: time.Now(),
	}

	b.register(s)
	defer b.unregister(id)

	conn.SetPongHandler(func(string) error {
		s.mu.Lock()
		s.lastSeen = time.Now()
		s.mu.Unlock()
		return nil
	})
	conn.SetPingHandler(func(string) error {
		s.mu.Lock()
		s.lastSeen = time.Now()
		s.mu.Unlock()
		return conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second))
	})

	done := make(chan struct{})
	go b.writePump(s, done)
	b.readLoop(s, done)
}

// register adds s to the registry under its session id.
func (b *Bus) register(s *session) {
	b.mu.Lock()
	b.sessions[s.id] = s
	b.mu.Unlock()
	busLogger.Printf("session=%s subscribed (total=%d)", s.id, b.Count())
}

// unregister removes session id from the registry, closing its send
// channel and connection. Idempotent.
func (b *Bus) unregister(id string) {
	b.mu.Lock()
	s, ok := b.sessions[id]
	if ok {
		delete(b.sessions, id)
	}
	b.mu.Unlock()
	if ok {
		close(s.send)
		s.conn.Close()
		busLogger.Printf("session=%s unsubscribed (total=%d)", id, b.Count())
	}
}

// Count returns the number of live sessions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

// Broadcast serializes payload once and enqueues it on every registered
// session's send channel. When a session's channel is full the frame is
// dropped for that session and logged; the session stays registered.
func (b *Bus) Broadcast(parseType string, payload any) {
	inner, err := json.Marshal(payload)
	if err != nil {
		busLogger.Printf("marshal payload for parse_type=%s failed: %v", parseType, err)
		return
	}
	frame, err := json.Marshal(envelope{ParseType: parseType, Message: string(inner)})
	if err != nil {
		busLogger.Printf("marshal envelope for parse_type=%s failed: %v", parseType, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.sessions {
		select {
		case s.send <- frame:
		default:
			busLogger.Printf("session=%s send buffer full, dropping frame", s.id)
		}
	}
}

// writePump drains s.send onto the socket and drives the heartbeat timer
// until done is closed or a write fails.
func (b *Bus) writePump(s *session, done chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				busLogger.Printf("session=%s write error: %v", s.id, err)
				b.unregister(s.id)
				return
			}
		case <-ticker.C:
			s.mu.Lock()
			idle := time.Since(s.lastSeen)
			s.mu.Unlock()
			if idle > clientTimeout {
				busLogger.Printf("session=%s heartbeat timeout", s.id)
				b.unregister(s.id)
				return
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				b.unregister(s.id)
				return
			}
		}
	}
}

// readLoop ignores inbound data frames (the bus is unidirectional) and
// returns when a read fails, which is how gorilla/websocket reports a
// Close frame; ServeWS then unregisters the session. Continuation frames
// are reassembled by the library and never reach this loop, so they do not
// close the session.
func (b *Bus) readLoop(s *session, done chan struct{}) {
	defer close(done)
	for {
		messageType, _, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.CloseMessage {
			return
		}
	}
}
