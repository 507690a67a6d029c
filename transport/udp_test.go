package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPConn_SendRecv(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	defer server.Close()

	serverAddr := server.LocalAddr().(*net.UDPAddr)
	client, err := DialUDP("127.0.0.1", serverAddr.Port)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte("ping")))

	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, from, err := server.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))

	_, err = server.WriteToUDP([]byte("pong"), from)
	require.NoError(t, err)

	got, err := client.Recv()
	require.NoError(t, err)
	require.Equal(t, "pong", string(got))
	require.Equal(t, UDP, client.Protocol())
	require.False(t, client.IsMulticast())
}
