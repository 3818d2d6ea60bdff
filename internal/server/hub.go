package server

import (
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// subscriber is one WebSocket connection following a game. Writes are
// serialised by mu; gorilla connections allow one concurrent writer.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *subscriber) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// hub fans game updates out to subscribers, keyed by game ID.
type hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func newHub(logger *log.Logger, origins []string) *hub {
	h := &hub{
		logger: logger,
		subs:   make(map[string]map[*subscriber]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

// originChecker allows any origin when none are configured, otherwise only
// the listed ones.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[origin] || allowed[u.Scheme+"://"+u.Host]
	}
}

func (h *hub) add(id string, c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscriber]struct{})
	}
	h.subs[id][c] = struct{}{}
}

func (h *hub) remove(id string, c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[id], c)
	if len(h.subs[id]) == 0 {
		delete(h.subs, id)
	}
}

// broadcast sends v to every subscriber of id. Dead connections are closed
// and their read loop removes them.
func (h *hub) broadcast(id string, v any) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[id]))
	for c := range h.subs[id] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(v); err != nil {
			h.logger.Printf("ws %s: send to %s: %v", id, c.conn.RemoteAddr(), err)
			c.conn.Close()
		}
	}
}

// drop disconnects every subscriber of id.
func (h *hub) drop(id string) {
	h.mu.Lock()
	subs := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	for c := range subs {
		c.conn.Close()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	all := h.subs
	h.subs = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()

	for _, subs := range all {
		for c := range subs {
			c.conn.Close()
		}
	}
}

func (h *hub) count(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[id])
}

// handleSubscribe upgrades to a WebSocket, sends the current state and then
// pushes every accepted move. Incoming messages are ignored.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Holding the game lock until the first state is sent keeps updates in
	// order for the new subscriber.
	unlock := s.lockGame(id)
	g, err := s.loadGame(id)
	if err != nil {
		unlock()
		s.fail(w, err)
		return
	}

	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unlock()
		// Upgrade has already answered the client.
		s.logger.Printf("ws %s: upgrade: %v", id, err)
		return
	}

	c := &subscriber{conn: conn}
	s.hub.add(id, c)
	err = c.send(stateOf(g))
	unlock()
	if err != nil {
		s.hub.remove(id, c)
		conn.Close()
		return
	}

	go func() {
		defer func() {
			s.hub.remove(id, c)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
