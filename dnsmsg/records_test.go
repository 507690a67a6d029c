package dnsmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestARecord_StringAddress(t *testing.T) {
	r := ARecord{Address: [4]byte{127, 0, 0, 1}}
	assert.Equal(t, "127.0.0.1", r.StringAddress())
}

func TestAAAARecord_StringAddress(t *testing.T) {
	r := AAAARecord{Address: [16]byte{
		0x2a, 0x00, 0x14, 0x50, 0x40, 0x01, 0x08, 0x09,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20, 0x0e,
	}}
	assert.Equal(t, "2a00:1450:4001:0809:0000:0000:0000:200e", r.StringAddress())
}

func TestPTRRecord_String(t *testing.T) {
	r := PTRRecord{Target: MustParseName("dns.google.")}
	assert.Equal(t, "PTRRecord: dns.google", r.String())
}

func TestTXTRecord_KeyValues(t *testing.T) {
	r := TXTRecord{Strings: []string{"v=spf1 -all", "plain", "a=b=c"}}
	kv := r.KeyValues()
	assert.Equal(t, "spf1 -all", kv["v"])
	assert.Equal(t, "b=c", kv["a"])
	_, hasPlain := kv["plain"]
	assert.False(t, hasPlain)
}

func TestSOARecord_RoundTrip(t *testing.T) {
	name := MustParseName("example.com.")
	msg := Message{
		Header:   Header{ID: 1, QR: true},
		Question: []Question{{Name: name, Type: TypeSOA, Class: ClassIN}},
		Answer: []ResourceRecord{{
			Name: name, Type: TypeSOA, Class: ClassIN, TTL: 3600,
			Data: SOARecord{
				PrimaryNS: MustParseName("ns1.example.com."),
				Admin:     MustParseName("hostmaster.example.com."),
				Serial:    2024010100,
				Refresh:   7200,
				Retry:     3600,
				Expire:    1209600,
				Minimum:   300,
			},
		}},
	}

	wire, err := Encode(msg)
	require.NoError(t, err)

	got, err := Decode(wire)
	require.NoError(t, err)
	require.Len(t, got.Answer, 1)
	soa, ok := got.Answer[0].Data.(SOARecord)
	require.True(t, ok)
	assert.Equal(t, uint32(2024010100), soa.Serial)
	assert.Equal(t, uint32(300), soa.Minimum)
	assert.True(t, soa.PrimaryNS.Equal(MustParseName("ns1.example.com.")))
}

func TestOtherRecord_UnknownType(t *testing.T) {
	name := MustParseName("example.com.")
	msg := Message{
		Header:   Header{ID: 1, QR: true},
		Question: []Question{{Name: name, Type: Type(9999), Class: ClassIN}},
		Answer: []ResourceRecord{{
			Name: name, Type: Type(9999), Class: ClassIN, TTL: 60,
			Data: OtherRecord{TypeCode: Type(9999), Raw: []byte{1, 2, 3, 4}},
		}},
	}

	wire, err := Encode(msg)
	require.NoError(t, err)

	got, err := Decode(wire)
	require.NoError(t, err)
	require.Len(t, got.Answer, 1)
	other, ok := got.Answer[0].Data.(OtherRecord)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, other.Raw)
}
