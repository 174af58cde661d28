package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Opcode identifies the frame type on the IPC socket.
type Opcode uint32

const (
	OpHandshake Opcode = iota
	OpFrame
	OpClose
	OpPing
	OpPong
)

// maxFrameSize bounds a single frame payload so a misbehaving peer cannot
// make the server allocate arbitrarily large buffers.
const maxFrameSize = 64 * 1024

// ReadFrame reads one frame: little-endian opcode and payload length
// followed by the JSON payload bytes.
func ReadFrame(r io.Reader) (Opcode, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	op := Opcode(binary.LittleEndian.Uint32(header[:4]))
	length := binary.LittleEndian.Uint32(header[4:])
	if length > maxFrameSize {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return op, payload, nil
}

// WriteFrame writes one frame in the format ReadFrame expects.
func WriteFrame(w io.Writer, op Opcode, payload []byte) error {
	header := make([]byte, 8, 8+len(payload))
	binary.LittleEndian.PutUint32(header[:4], uint32(op))
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))
	_, err := w.Write(append(header, payload...))
	return err
}
