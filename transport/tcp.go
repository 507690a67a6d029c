package transport

import (
	"io"
	"net"
	"time"

	"github.com/dnsscience/dnsasync/internal/bufpool"
)

// idleReadTimeout bounds how long one TCP Recv waits for a complete frame,
// the wait for the length prefix included: a connection that delivers no
// complete frame for this long fails Recv, as does a server that sends a
// length prefix and then stalls mid-body.
const idleReadTimeout = 30 * time.Second

// TCPConn frames each direction with a 16-bit big-endian length prefix
// followed by exactly that many bytes (spec.md §6 "TCP framing"), the same
// read-loop shape the teacher's DoT listener uses on its accept side,
// mirrored here for the dial side.
type TCPConn struct {
	conn net.Conn
}

// DialTCP connects to host:port with a bounded dial timeout.
func DialTCP(host string, port int) (*TCPConn, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, itoa(port)), dialTimeout)
	if err != nil {
		return nil, ioErr("transport.DialTCP", err)
	}
	return &TCPConn{conn: conn}, nil
}

func (c *TCPConn) Protocol() Protocol  { return TCP }
func (c *TCPConn) IsMulticast() bool   { return false }
func (c *TCPConn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Send writes the 2-byte length prefix followed by b. A frame longer than
// 65535 bytes cannot be expressed and is rejected before any bytes go out.
func (c *TCPConn) Send(b []byte) error {
	if len(b) > 65535 {
		return ioErr("transport.TCPConn.Send: frame too large", nil)
	}
	header := [2]byte{byte(len(b) >> 8), byte(len(b))}
	if _, err := c.conn.Write(header[:]); err != nil {
		return ioErr("transport.TCPConn.Send: header", err)
	}
	if _, err := c.conn.Write(b); err != nil {
		return ioErr("transport.TCPConn.Send: body", err)
	}
	return nil
}

// Recv reads one complete length-prefixed frame, accumulating across
// multiple TCP reads the way the teacher's handleConnection loop does. A
// zero-length frame is returned as an empty, non-nil slice — decode.go
// rejects it as too short for a header, which is the correct outcome per
// spec.md §8's "length prefix of 0" boundary case.
func (c *TCPConn) Recv() ([]byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(idleReadTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	var lenBuf [2]byte
	if _, err := io.ReadFull(c.conn, lenBuf[:]); err != nil {
		return nil, ioErr("transport.TCPConn.Recv: length prefix", err)
	}
	frameLen := int(lenBuf[0])<<8 | int(lenBuf[1])
	if frameLen == 0 {
		return []byte{}, nil
	}

	buf := bufpool.GetTCP()
	defer bufpool.PutTCP(buf)
	body := buf[:frameLen]
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return nil, ioErr("transport.TCPConn.Recv: body", err)
	}
	out := make([]byte, frameLen)
	copy(out, body)
	return out, nil
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}
