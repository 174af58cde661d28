package ws

import "github.com/gorilla/websocket"

// EventKind discriminates transport events delivered to the connector.
type EventKind int

const (
	Connected EventKind = iota
	Disconnected
	Inbound
)

// Event is one connect/disconnect/message occurrence on the transport.
// Conn is set only on Connected; Data only on Inbound.
type Event struct {
	Kind EventKind
	ID   string
	Conn *websocket.Conn
	Data []byte
}
