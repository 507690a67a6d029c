package dnsmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildHeader writes a 12-byte header with the given section counts.
func buildHeader(qd, an, ns, ar uint16) []byte {
	b := make([]byte, headerWireLen)
	b[4], b[5] = byte(qd>>8), byte(qd)
	b[6], b[7] = byte(an>>8), byte(an)
	b[8], b[9] = byte(ns>>8), byte(ns)
	b[10], b[11] = byte(ar>>8), byte(ar)
	return b
}

func TestDecode_PointerCycle(t *testing.T) {
	// A question name whose only label is a pointer aimed at itself.
	// Position 12 is the first byte after the header; a pointer there
	// pointing back to 12 is a zero-hop self-cycle.
	buf := buildHeader(1, 0, 0, 0)
	buf = append(buf, 0xC0, 0x0C) // pointer -> offset 12 (itself)
	buf = append(buf, 0, byte(TypeA), 0, byte(ClassIN))

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecode_PointerMustPointBackward(t *testing.T) {
	// A pointer that targets a later offset than its own position must be
	// rejected outright, never merely looped on.
	buf := buildHeader(1, 0, 0, 0)
	buf = append(buf, 0xC0, 0x10) // pointer -> offset 16, which is ahead of byte 12
	buf = append(buf, 0, byte(TypeA), 0, byte(ClassIN))

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecode_TwoPointerCycle(t *testing.T) {
	// label at 12 points to 14, label at 14 points back to 12: neither
	// pointer is self-referential, but together they cycle forever unless
	// the backward-only rule or the visited set catches it.
	buf := buildHeader(1, 0, 0, 0)
	buf = append(buf, 0xC0, 0x0E) // offset 12: pointer -> 14
	buf = append(buf, 0xC0, 0x0C) // offset 14: pointer -> 12
	buf = append(buf, 0, byte(TypeA), 0, byte(ClassIN))

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecode_LabelLengthTooLong(t *testing.T) {
	buf := buildHeader(1, 0, 0, 0)
	buf = append(buf, 64) // label length byte 64 exceeds the 63-byte max
	buf = append(buf, make([]byte, 64)...)
	buf = append(buf, 0, 0, byte(TypeA), 0, byte(ClassIN))

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecode_ReservedLabelBits(t *testing.T) {
	buf := buildHeader(1, 0, 0, 0)
	buf = append(buf, 0x40) // top bits 01: reserved, not a valid label or pointer
	buf = append(buf, 0, byte(TypeA), 0, byte(ClassIN))

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestDecode_EmptyMessage(t *testing.T) {
	_, err := Decode([]byte{})
	require.Error(t, err)
}

func TestDecode_CompressionWithinBoundedTime(t *testing.T) {
	// Sanity check that a legitimate chain of pointers (not a cycle)
	// resolves normally and quickly: a.example.com. followed by an
	// answer whose owner name is a pointer back to the question's name.
	a := MustParseName("a.example.com.")

	msg := Message{
		Header:   Header{ID: 1, QR: true},
		Question: []Question{{Name: a, Type: TypeA, Class: ClassIN}},
		Answer: []ResourceRecord{{
			Name: a, Type: TypeA, Class: ClassIN, TTL: 60,
			Data: ARecord{Address: [4]byte{1, 2, 3, 4}},
		}},
	}
	wire, err := Encode(msg)
	require.NoError(t, err)

	got, err := Decode(wire)
	require.NoError(t, err)
	require.Len(t, got.Answer, 1)
	assert.True(t, got.Answer[0].Name.Equal(a))
}
