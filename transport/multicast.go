package transport

import (
	"context"
	"net"

	"golang.org/x/net/ipv4"

	"github.com/dnsscience/dnsasync/internal/bufpool"
)

// MulticastGroup and MulticastPort are the well-known mDNS rendezvous
// point (spec.md §4.3, RFC 6762 §5).
const (
	MulticastGroup = "224.0.0.251"
	MulticastPort  = 5353
	multicastTTL   = 255
)

// MulticastConn joins the mDNS multicast group on every up, multicast-
// capable interface. Unlike UDPConn it is not connected to a single peer:
// Recv returns datagrams from any source, and the caller (the transaction
// engine) is responsible for deciding whether an inbound message answers a
// known transaction or is an unsolicited query to hand to a callback.
type MulticastConn struct {
	pktConn *ipv4.PacketConn
	udp     *net.UDPConn
	dest    *net.UDPAddr
}

// DialMulticast binds 0.0.0.0:5353 with SO_REUSEADDR/SO_REUSEPORT (so it can
// coexist with another mDNS responder on the host) and joins 224.0.0.251 on
// every interface that is up and multicast-capable.
func DialMulticast() (*MulticastConn, error) {
	lc := net.ListenConfig{Control: PlatformControl}
	pc, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("0.0.0.0", itoa(MulticastPort)))
	if err != nil {
		return nil, ioErr("transport.DialMulticast: listen", err)
	}
	udpConn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, ioErr("transport.DialMulticast: not a UDP conn", nil)
	}

	p := ipv4.NewPacketConn(udpConn)
	group := net.ParseIP(MulticastGroup)

	ifaces, err := net.Interfaces()
	if err != nil {
		udpConn.Close()
		return nil, ioErr("transport.DialMulticast: interfaces", err)
	}

	joined := 0
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		ifaceCopy := iface
		if err := p.JoinGroup(&ifaceCopy, &net.UDPAddr{IP: group}); err == nil {
			joined++
		}
	}
	if joined == 0 {
		udpConn.Close()
		return nil, ioErr("transport.DialMulticast: no interfaces joined", nil)
	}

	if err := p.SetMulticastTTL(multicastTTL); err != nil {
		udpConn.Close()
		return nil, ioErr("transport.DialMulticast: set ttl", err)
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		udpConn.Close()
		return nil, ioErr("transport.DialMulticast: set loopback", err)
	}
	udpConn.SetReadBuffer(65536)

	return &MulticastConn{
		pktConn: p,
		udp:     udpConn,
		dest:    &net.UDPAddr{IP: group, Port: MulticastPort},
	}, nil
}

func (c *MulticastConn) Protocol() Protocol { return UDP }
func (c *MulticastConn) IsMulticast() bool  { return true }

// Send writes b to the multicast group rather than to a single connected
// peer.
func (c *MulticastConn) Send(b []byte) error {
	if _, err := c.udp.WriteTo(b, c.dest); err != nil {
		return ioErr("transport.MulticastConn.Send", err)
	}
	return nil
}

// Recv returns the next datagram's payload only, discarding its source;
// callers that need the source for an unsolicited-query reply should use
// RecvFrom instead.
func (c *MulticastConn) Recv() ([]byte, error) {
	b, _, err := c.RecvFrom()
	return b, err
}

// RecvFrom returns the next datagram's payload along with its source
// address, so an unsolicited inbound query (spec.md §4.3) can be answered
// directly via ReplyTo.
func (c *MulticastConn) RecvFrom() ([]byte, net.Addr, error) {
	buf := bufpool.GetUDP()
	defer bufpool.PutUDP(buf)
	n, addr, err := c.udp.ReadFrom(buf)
	if err != nil {
		return nil, nil, ioErr("transport.MulticastConn.RecvFrom", err)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, addr, nil
}

// ReplyTo sends b directly to addr rather than to the multicast group, for
// answering an unsolicited query from a single peer.
func (c *MulticastConn) ReplyTo(addr net.Addr, b []byte) error {
	if _, err := c.udp.WriteTo(b, addr); err != nil {
		return ioErr("transport.MulticastConn.ReplyTo", err)
	}
	return nil
}

func (c *MulticastConn) Close() error {
	return c.udp.Close()
}
