package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialMulticast_JoinsGroup(t *testing.T) {
	conn, err := DialMulticast()
	if err != nil {
		t.Skipf("no multicast-capable interface available in this environment: %v", err)
	}
	defer conn.Close()

	assert.True(t, conn.IsMulticast())
	assert.Equal(t, UDP, conn.Protocol())
}
