package connector

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/presence-bridge/backend/internal/activity"
	"github.com/presence-bridge/backend/internal/ws"
)

// presence tracks the session currently announced by the process-detection
// producer. It has its own lock so process dispatch never contends with
// registry mutation from the other loops.
type presence struct {
	mu            sync.Mutex
	activeSession string // "" when no live session
	lastPID       uint64
}

// Connector is the dispatch core: it tracks connected clients, merges the
// three producer channels and the transport event stream, and broadcasts
// one normalized payload shape to every client.
type Connector struct {
	mu      sync.RWMutex
	clients map[string]*client

	presence presence

	// welcome is sent verbatim to every client on connect, before any
	// broadcast traffic.
	welcome string

	events <-chan ws.Event
	ipc    <-chan activity.Cmd
	proc   <-chan activity.ProcessEvent
	sock   <-chan activity.Cmd
}

func New(welcome string, events <-chan ws.Event, ipc <-chan activity.Cmd, proc <-chan activity.ProcessEvent, sock <-chan activity.Cmd) *Connector {
	return &Connector{
		clients: make(map[string]*client),
		welcome: welcome,
		events:  events,
		ipc:     ipc,
		proc:    proc,
		sock:    sock,
	}
}

// Run starts the four dispatch loops. Each loop owns exactly one receive
// end and exits when its channel closes or ctx is cancelled; no loop ever
// waits on another.
func (c *Connector) Run(ctx context.Context) {
	go c.drainTransport(ctx)
	go c.drainIPC(ctx)
	go c.drainProcess(ctx)
	go c.drainSocket(ctx)
}

func (c *Connector) drainTransport(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.events:
			if !ok {
				return
			}
			switch ev.Kind {
			case ws.Connected:
				c.addClient(ev.ID, ev.Conn)
			case ws.Disconnected:
				c.removeClient(ev.ID)
			case ws.Inbound:
				c.echo(ev.ID, ev.Data)
			}
		}
	}
}

// addClient sends the welcome payload to the new connection, then registers
// it so it receives subsequent broadcasts.
func (c *Connector) addClient(id string, conn *websocket.Conn) {
	cl := newClient(id, conn)
	cl.trySend([]byte(c.welcome))

	c.mu.Lock()
	c.clients[id] = cl
	c.mu.Unlock()
}

func (c *Connector) removeClient(id string) {
	c.mu.Lock()
	cl, ok := c.clients[id]
	if ok {
		delete(c.clients, id)
		cl.close()
	}
	c.mu.Unlock()
}

// echo forwards an inbound message back to the connection it came from.
// A registered connection must exist for every inbound message; a miss
// means the transport and registry disagree about liveness.
func (c *Connector) echo(id string, data []byte) {
	c.mu.RLock()
	cl, ok := c.clients[id]
	c.mu.RUnlock()

	if !ok {
		log.Printf("BUG: inbound message for unknown client %s, dropping", id)
		return
	}
	cl.trySend(data)
}

// ClientCount reports the number of registered clients. Producers consult
// it before doing any transform work so that events arriving with no
// audience cost nothing.
func (c *Connector) ClientCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// broadcast sends the same bytes to every registered client. The handle
// list is snapshotted under the read lock and sends happen outside it, so
// a wedged connection cannot stall registry mutation. A client whose
// buffer is full is dropped; delivery is best-effort by design.
func (c *Connector) broadcast(data []byte) {
	c.mu.RLock()
	clients := make([]*client, 0, len(c.clients))
	for _, cl := range c.clients {
		clients = append(clients, cl)
	}
	c.mu.RUnlock()

	for _, cl := range clients {
		if !cl.trySend(data) {
			log.Printf("Client %s can't keep up, disconnecting", cl.id)
			c.removeClient(cl.id)
		}
	}
}
