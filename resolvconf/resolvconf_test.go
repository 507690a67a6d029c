package resolvconf

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	text := "nameserver 8.8.8.8\nnameserver 8.8.4.4\n"
	servers, warnings, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, servers, 2)
	assert.Equal(t, "8.8.8.8", servers[0].IP.String())
	assert.Equal(t, DefaultPort, servers[0].Port)
}

func TestParse_IgnoresOtherDirectivesAndComments(t *testing.T) {
	text := "# comment\nsearch example.com\noptions rotate\nnameserver 1.1.1.1\n"
	servers, _, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "1.1.1.1", servers[0].IP.String())
}

func TestParse_SkipsMalformedIPWithWarning(t *testing.T) {
	text := "nameserver not-an-ip\nnameserver 9.9.9.9\n"
	servers, warnings, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, servers, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Line)
}

func TestParse_NoUsableServersFails(t *testing.T) {
	text := "nameserver garbage\n"
	_, warnings, err := Parse(strings.NewReader(text))
	require.Error(t, err)
	require.Len(t, warnings, 1)
}

func TestPreferred_PrefersIPv4(t *testing.T) {
	servers := []Server{
		{IP: mustParseIP("2001:db8::1"), Port: 53},
		{IP: mustParseIP("8.8.8.8"), Port: 53},
	}
	pref, ok := Preferred(servers)
	require.True(t, ok)
	assert.Equal(t, "8.8.8.8", pref.IP.String())
}

func TestPreferred_FallsBackToFirstWhenNoIPv4(t *testing.T) {
	servers := []Server{
		{IP: mustParseIP("2001:db8::1"), Port: 53},
		{IP: mustParseIP("2001:db8::2"), Port: 53},
	}
	pref, ok := Preferred(servers)
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", pref.IP.String())
}

func TestPreferred_Empty(t *testing.T) {
	_, ok := Preferred(nil)
	assert.False(t, ok)
}

func mustParseIP(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		panic("bad test IP: " + s)
	}
	return ip
}
