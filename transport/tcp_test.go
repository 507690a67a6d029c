package transport

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTCPConn_SendRecv(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var lenBuf [2]byte
		io.ReadFull(conn, lenBuf[:])
		frameLen := int(lenBuf[0])<<8 | int(lenBuf[1])
		body := make([]byte, frameLen)
		io.ReadFull(conn, body)

		reply := []byte("reply-" + string(body))
		header := [2]byte{byte(len(reply) >> 8), byte(len(reply))}
		conn.Write(header[:])
		conn.Write(reply)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	client, err := DialTCP("127.0.0.1", addr.Port)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte("hi")))

	got, err := client.Recv()
	require.NoError(t, err)
	require.Equal(t, "reply-hi", string(got))
	<-done
}

func TestTCPConn_Send_RejectsOversizedFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	client, err := DialTCP("127.0.0.1", addr.Port)
	require.NoError(t, err)
	defer client.Close()

	oversized := make([]byte, 70000)
	err = client.Send(oversized)
	require.Error(t, err)
}
