// Package trace implements an optional execution tracer (SPEC_FULL.md
// §4.10) that broadcasts one message per VM instruction to connected
// websocket clients. It is grounded on the teacher's
// internal/network/websocket.go (WebSocketConn/WebSocketServer wrapping
// gorilla/websocket), trimmed to a single broadcast-only server with no
// inbound message handling, since a trace stream has nothing to read back.
package trace

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ysetl/internal/bytecode"
)

// Event is one traced instruction, serialized as JSON to every connected
// client.
type Event struct {
	FrameDepth int    `json:"frame_depth"`
	IP         int    `json:"ip"`
	Op         string `json:"op"`
}

const clientQueueDepth = 64

// client wraps one websocket connection with a bounded outbound queue, so a
// slow or stalled browser tab can never block the VM's dispatch loop. id is
// a per-connection identifier, logged on the rare path where a client's
// queue overflows, so a trace viewer reconnecting mid-session can be told
// apart from a dropped one.
type client struct {
	id    uuid.UUID
	conn  *websocket.Conn
	queue chan Event
}

// Server broadcasts Events to every connected client and implements
// vm.Tracer (via OnStep) so it can be attached directly to a VM.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer returns a Server ready to accept connections at its ServeHTTP
// handler. Origin checking is left permissive, matching the teacher's
// WebSocketServer default (this is a local diagnostics tool, not
// internet-facing).
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and starts a per-client writer pump.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.New(), conn: conn, queue: make(chan Event, clientQueueDepth)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.pump(c)
}

func (s *Server) pump(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for ev := range c.queue {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// OnStep implements vm.Tracer. It never blocks: a client whose queue is full
// has its oldest queued frame discarded to make room, since a trace stream
// is a best-effort diagnostic view of recent execution, not a
// delivery-guaranteed log — a stalled viewer should catch up to the
// present, not replay a backlog.
func (s *Server) OnStep(frameDepth, ip int, op bytecode.Op) {
	def, ok := bytecode.Definitions[op]
	name := "UNKNOWN"
	if ok {
		name = def.Name
	}
	ev := Event{FrameDepth: frameDepth, IP: ip, Op: name}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.queue <- ev:
		default:
			log.Printf("trace: client %s queue full, dropping oldest event", c.id)
			select {
			case <-c.queue:
			default:
			}
			select {
			case c.queue <- ev:
			default:
			}
		}
	}
}
