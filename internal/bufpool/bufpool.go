// Package bufpool reduces per-query allocation pressure with sync.Pool
// buffer classes sized for the two transports this client speaks: UDP
// datagrams and TCP length-prefixed frames.
package bufpool

import "sync"

const (
	// UDPBufferSize covers one standard (non-EDNS) DNS datagram.
	UDPBufferSize = 512
	// TCPBufferSize covers the largest message a 16-bit RDLENGTH/frame
	// length can express.
	TCPBufferSize = 65535
)

var udpPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, UDPBufferSize)
		return &buf
	},
}

var tcpPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, TCPBufferSize)
		return &buf
	},
}

// GetUDP returns a 512-byte buffer sized for one datagram.
func GetUDP() []byte {
	bufPtr := udpPool.Get().(*[]byte)
	return (*bufPtr)[:UDPBufferSize]
}

// PutUDP returns buf to the UDP pool. Undersized buffers (never produced by
// GetUDP, but possible if a caller hands back a slice of their own) are
// dropped rather than pooled.
func PutUDP(buf []byte) {
	if cap(buf) < UDPBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	udpPool.Put(&buf)
}

// GetTCP returns a 65535-byte buffer sized for the largest possible frame.
func GetTCP() []byte {
	bufPtr := tcpPool.Get().(*[]byte)
	return (*bufPtr)[:TCPBufferSize]
}

// PutTCP returns buf to the TCP pool.
func PutTCP(buf []byte) {
	if cap(buf) < TCPBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	tcpPool.Put(&buf)
}
