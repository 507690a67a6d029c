package dnsmsg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	n, err := ParseName("www.example.com.")
	require.NoError(t, err)
	require.Len(t, n.Labels, 3)
	assert.Equal(t, "www.example.com.", n.String())
}

func TestParseName_Root(t *testing.T) {
	n, err := ParseName(".")
	require.NoError(t, err)
	assert.True(t, n.IsRoot())
	assert.Equal(t, ".", n.String())
}

func TestParseName_LabelBoundary(t *testing.T) {
	ok := strings.Repeat("a", 63)
	_, err := ParseName(ok + ".com.")
	require.NoError(t, err)

	tooLong := strings.Repeat("a", 64)
	_, err = ParseName(tooLong + ".com.")
	require.Error(t, err)
}

func TestParseName_NameBoundary(t *testing.T) {
	// 4 labels of 63 bytes would be 4*(1+63) + 1 = 257 wire bytes, so use
	// 3 labels of 63 plus one of 61 to land exactly on 255
	// (3*64 + 62 + 1 = 255).
	labels := []string{
		strings.Repeat("a", 63),
		strings.Repeat("b", 63),
		strings.Repeat("c", 63),
		strings.Repeat("d", 61),
	}
	name := strings.Join(labels, ".") + "."
	n, err := ParseName(name)
	require.NoError(t, err)
	assert.Equal(t, 255, n.WireLen())

	_, err = ParseName(name + "e")
	require.Error(t, err)
}
