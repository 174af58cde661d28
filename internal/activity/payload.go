package activity

// Payload is the one wire shape broadcast to every connected client.
// Activity is nil for the "nothing is active" form; clients clear their
// displayed state when they receive it.
type Payload struct {
	Activity *Activity `json:"activity"`
	PID      uint64    `json:"pid"`
	SocketID string    `json:"socketId"`
}

// EmptyPayload builds the clear form of the payload for the given process
// id and socket id.
func EmptyPayload(pid uint64, socketID string) Payload {
	return Payload{PID: pid, SocketID: socketID}
}
