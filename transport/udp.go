package transport

import (
	"net"

	"github.com/dnsscience/dnsasync/internal/bufpool"
)

// UDPConn wraps a connected UDP socket: one DNS message per datagram
// (spec.md §6 "UDP framing"), bound to an ephemeral local port and
// connected to exactly one remote server.
type UDPConn struct {
	conn *net.UDPConn
	raddr *net.UDPAddr
}

// DialUDP binds an ephemeral local UDP socket and connects it to
// host:port. Connecting (rather than using WriteTo/ReadFrom) means the
// kernel filters out datagrams from any other source automatically.
func DialUDP(host string, port int) (*UDPConn, error) {
	raddr, err := resolveUDPAddr(host, port)
	if err != nil {
		return nil, ioErr("transport.DialUDP: resolve", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, ioErr("transport.DialUDP: dial", err)
	}
	return &UDPConn{conn: conn, raddr: raddr}, nil
}

func (c *UDPConn) Protocol() Protocol  { return UDP }
func (c *UDPConn) IsMulticast() bool   { return false }
func (c *UDPConn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Send writes b as a single datagram. DNS messages without EDNS stay under
// 512 bytes (spec.md §6); a larger message is still written whole. This
// layer does not inspect the TC bit and never falls back to TCP.
func (c *UDPConn) Send(b []byte) error {
	if _, err := c.conn.Write(b); err != nil {
		return ioErr("transport.UDPConn.Send", err)
	}
	return nil
}

// Recv blocks for exactly one inbound datagram and returns its payload.
func (c *UDPConn) Recv() ([]byte, error) {
	buf := bufpool.GetUDP()
	defer bufpool.PutUDP(buf)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, ioErr("transport.UDPConn.Recv", err)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

func (c *UDPConn) Close() error {
	return c.conn.Close()
}
