package bufpool

import "testing"

func TestGetUDP_Size(t *testing.T) {
	buf := GetUDP()
	if len(buf) != UDPBufferSize {
		t.Fatalf("expected len %d, got %d", UDPBufferSize, len(buf))
	}
	PutUDP(buf)
}

func TestGetTCP_Size(t *testing.T) {
	buf := GetTCP()
	if len(buf) != TCPBufferSize {
		t.Fatalf("expected len %d, got %d", TCPBufferSize, len(buf))
	}
	PutTCP(buf)
}
