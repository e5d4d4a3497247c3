package telemetry

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/swervesim/internal/logging"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/storage"
)

const clientBuffer = 256

// Snapshot is the dashboard view of one module at one tick.
type Snapshot struct {
	Module string `json:"module"`
	storage.FrameRecord
}

// Message is what websocket clients receive.
type Message struct {
	Type      string     `json:"type"`
	Snapshots []Snapshot `json:"snapshots"`
}

type client struct {
	send chan []byte
}

type Hub struct {
	mu      sync.Mutex
	latest  map[string]Snapshot
	clients map[*client]bool
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		latest:  make(map[string]Snapshot),
		clients: make(map[*client]bool),
		logger:  logger.WithPrefix("telemetry"),
	}
}

type feed struct {
	hub    *Hub
	module string
}

func (f feed) OnFrame(fr sim.Frame) { f.hub.Publish(f.module, fr) }

// Feed returns an observer that publishes frames for the named module.
func (h *Hub) Feed(module string) sim.Observer {
	return feed{hub: h, module: module}
}

// Publish records fr as the latest snapshot for module and broadcasts it.
func (h *Hub) Publish(module string, fr sim.Frame) {
	snap := Snapshot{Module: module, FrameRecord: storage.NewFrameRecord(fr)}
	msg, err := json.Marshal(Message{Type: "frame", Snapshots: []Snapshot{snap}})
	if err != nil {
		h.logger.Error("encode snapshot", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[module] = snap
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow client")
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// Snapshots returns the latest snapshot of every module, sorted by name.
func (h *Hub) Snapshots() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotsLocked()
}

func (h *Hub) snapshotsLocked() []Snapshot {
	out := make([]Snapshot, 0, len(h.latest))
	for _, s := range h.latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

func (h *Hub) Snapshot(module string) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.latest[module]
	return s, ok
}

// register adds a client and queues the current snapshots as its first
// message.
func (h *Hub) register() (*client, error) {
	c := &client{send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	msg, err := json.Marshal(Message{Type: "hello", Snapshots: h.snapshotsLocked()})
	if err != nil {
		return nil, err
	}
	c.send <- msg
	h.clients[c] = true
	return c, nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
