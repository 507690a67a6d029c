// Package transport provides the two wire-level personalities this client
// speaks — UDP datagram framing and TCP length-prefixed framing — plus a
// multicast variant of the UDP client for mDNS-style link-local discovery.
// Every Conn here moves raw bytes only; the codec in dnsmsg sits at the
// inner end of the pipeline (spec.md §4.3).
package transport

import (
	"net"
	"time"

	"github.com/dnsscience/dnsasync/errkind"
)

// Protocol tags which wire framing a Conn uses.
type Protocol uint8

const (
	UDP Protocol = iota
	TCP
)

func (p Protocol) String() string {
	if p == TCP {
		return "tcp"
	}
	return "udp"
}

// Conn is the minimal interface the transaction engine drives: send one
// complete message's bytes, receive one complete message's bytes, close.
// Framing (UDP datagram boundaries, TCP length prefixes) is handled inside
// each implementation so the engine never sees partial frames.
type Conn interface {
	Protocol() Protocol
	Send(b []byte) error
	Recv() ([]byte, error)
	Close() error
	// IsMulticast reports whether this conn was created via DialMulticast;
	// the engine disables RD and accepts unsolicited inbound messages only
	// for multicast conns (spec.md §4.3).
	IsMulticast() bool
}

func ioErr(op string, err error) error {
	return errkind.New(errkind.IO, op, err)
}

// dialTimeout bounds connection establishment; it does not bound per-query
// response waiting, which is the transaction engine's timeout (txn package).
const dialTimeout = 5 * time.Second

func resolveUDPAddr(host string, port int) (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", net.JoinHostPort(host, itoa(port)))
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
