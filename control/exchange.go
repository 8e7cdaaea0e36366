package control

import (
	"errors"
	"fmt"
	"io"
)

// readBufSize is the fixed chunk size of the response read loop.
const readBufSize = 1024

// exchange writes the command payload in one call, then streams the response
// to out until the server closes its side. Each chunk is forwarded as soon as
// it arrives; a long-running command's output appears incrementally. The
// protocol is single-shot: nothing is written after the first read, and the
// channel is not reusable afterwards.
func exchange(conn io.ReadWriter, command []byte, out io.Writer) error {
	n, err := conn.Write(command)
	if err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if n < len(command) {
		return &TransportError{Op: "write", Err: fmt.Errorf("short write: %d of %d bytes", n, len(command))}
	}

	buf := make([]byte, readBufSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return &TransportError{Op: "read", Err: fmt.Errorf("forwarding response: %w", werr)}
			}
		}
		if errors.Is(err, io.EOF) {
			// Orderly close, the response is complete.
			return nil
		}
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
	}
}
