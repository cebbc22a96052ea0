package message

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Native messaging size limits.
const (
	// MaxInbound is the largest message a browser may send to a host.
	MaxInbound = 64 << 20
	// MaxOutbound is the largest message a host may send to a browser.
	MaxOutbound = 1 << 20
)

// ReadFrame reads one length-prefixed frame: a 32-bit little-endian byte
// count followed by that many bytes. Returns io.EOF on a clean end of input.
func ReadFrame(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	if size > MaxInbound {
		return nil, fmt.Errorf("%d bytes (max %d): %w", size, MaxInbound, ErrTooLarge)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame writes data as one length-prefixed frame.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxOutbound {
		return fmt.Errorf("%d bytes (max %d): %w", len(data), MaxOutbound, ErrTooLarge)
	}
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// Conn exchanges framed messages over a reader and writer, typically the
// host's stdin and stdout. Send is safe for concurrent use.
type Conn struct {
	r  io.Reader
	w  io.Writer
	mu sync.Mutex
}

// NewConn returns a Conn reading from r and writing to w.
func NewConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{r: r, w: w}
}

// Receive reads the next request. Decode errors carry the request ID when
// one could be read; transport errors, including io.EOF, carry none.
func (c *Conn) Receive() (Request, string, error) {
	data, err := ReadFrame(c.r)
	if err != nil {
		return nil, "", err
	}
	return DecodeRequest(data)
}

// Send writes one response.
func (c *Conn) Send(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode %s response: %w", resp.Type, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteFrame(c.w, data)
}
