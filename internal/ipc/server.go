package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/presence-bridge/backend/internal/activity"
)

// readyPayload is sent in response to a handshake so clients know the
// bridge is accepting commands.
const readyPayload = `{"cmd":"DISPATCH","evt":"READY","data":{"v":1}}`

// DefaultSocketPath returns the conventional bridge socket location.
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), "presence-bridge-ipc-0")
}

// Server listens on a unix domain socket and feeds decoded activity
// commands to the IPC producer channel.
type Server struct {
	path string
	cmds chan<- activity.Cmd
	ln   net.Listener
}

func NewServer(path string, cmds chan<- activity.Cmd) *Server {
	if path == "" {
		path = DefaultSocketPath()
	}
	return &Server{path: path, cmds: cmds}
}

// Start binds the socket and begins accepting connections. The listener
// closes when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	// A stale socket file from a previous run would fail the bind.
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	s.ln = ln

	log.Printf("IPC server listening on %s", s.path)

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	go s.acceptLoop()
	return nil
}

// Close stops the listener and unlinks the socket file. Safe to call more
// than once and concurrently with the ctx-driven shutdown.
func (s *Server) Close() {
	if s.ln != nil {
		s.ln.Close()
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("IPC socket cleanup error: %v", err)
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}
		go s.serve(conn)
	}
}

// serve handles one IPC peer. Errors end only this connection; the accept
// loop keeps running.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	for {
		op, payload, err := ReadFrame(conn)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Printf("IPC read error: %v", err)
			}
			return
		}

		switch op {
		case OpHandshake:
			if err := WriteFrame(conn, OpFrame, []byte(readyPayload)); err != nil {
				log.Printf("IPC handshake reply error: %v", err)
				return
			}
		case OpPing:
			if err := WriteFrame(conn, OpPong, payload); err != nil {
				return
			}
		case OpClose:
			return
		case OpFrame:
			var cmd activity.Cmd
			if err := json.Unmarshal(payload, &cmd); err != nil {
				log.Printf("IPC command decode error: %v", err)
				return
			}
			s.cmds <- cmd
		default:
			log.Printf("IPC unknown opcode %d, closing connection", op)
			return
		}
	}
}
