package dnsmsg

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_Query(t *testing.T) {
	name := MustParseName("www.example.com.")
	msg := NewQuery(0x1234, name, TypeA, ClassIN)

	wire, err := Encode(msg)
	require.NoError(t, err)

	got, err := Decode(wire)
	require.NoError(t, err)

	assert.Equal(t, msg.Header.ID, got.Header.ID)
	assert.True(t, got.Header.RD)
	assert.False(t, got.Header.QR)
	require.Len(t, got.Question, 1)
	assert.True(t, got.Question[0].Name.Equal(name))
	assert.Equal(t, TypeA, got.Question[0].Type)
}

func TestRoundTrip_AnswerWithCompression(t *testing.T) {
	example := MustParseName("example.com.")
	www := MustParseName("www.example.com.")

	msg := Message{
		Header:   Header{ID: 7, QR: true, RD: true, RA: true},
		Question: []Question{{Name: www, Type: TypeA, Class: ClassIN}},
		Answer: []ResourceRecord{
			{Name: www, Type: TypeCNAME, Class: ClassIN, TTL: 300, Data: CNAMERecord{Target: example}},
			{Name: example, Type: TypeA, Class: ClassIN, TTL: 300, Data: ARecord{Address: [4]byte{93, 184, 216, 34}}},
		},
	}

	wire, err := Encode(msg)
	require.NoError(t, err)

	// The second answer's owner name ("example.com.") was already written
	// as a suffix of the question's name, so its owner name (like the
	// CNAME target in the first answer) must be a 2-byte pointer in the
	// wire form, not a re-spelled label.
	// A cheap proxy for that: the encoded message must be far smaller than
	// naively repeating "example.com." three times over.
	assert.Less(t, len(wire), 120)

	got, err := Decode(wire)
	require.NoError(t, err)
	require.Len(t, got.Answer, 2)
	assert.True(t, got.Answer[0].Name.Equal(www))
	cname, ok := got.Answer[0].Data.(CNAMERecord)
	require.True(t, ok)
	assert.True(t, cname.Target.Equal(example))
	assert.True(t, got.Answer[1].Name.Equal(example))
	a, ok := got.Answer[1].Data.(ARecord)
	require.True(t, ok)
	assert.Equal(t, "93.184.216.34", a.StringAddress())
}

func TestDecode_CrossCheckAgainstMiekgDNS(t *testing.T) {
	// Build a reference packet with an independent, widely used DNS
	// library and confirm our decoder agrees with it. This is a test-only
	// use of github.com/miekg/dns — it never appears in non-test code.
	ref := new(dns.Msg)
	ref.SetQuestion("mail.example.org.", dns.TypeMX)
	ref.Id = 0xBEEF
	ref.Answer = append(ref.Answer, &dns.MX{
		Hdr:        dns.RR_Header{Name: "mail.example.org.", Rrtype: dns.TypeMX, Class: dns.ClassINET, Ttl: 600},
		Preference: 10,
		Mx:         "mx1.example.org.",
	})
	ref.Response = true
	wire, err := ref.Pack()
	require.NoError(t, err)

	got, err := Decode(wire)
	require.NoError(t, err)

	assert.Equal(t, uint16(0xBEEF), got.Header.ID)
	assert.True(t, got.Header.QR)
	require.Len(t, got.Question, 1)
	assert.Equal(t, "mail.example.org.", got.Question[0].Name.String())
	assert.Equal(t, TypeMX, got.Question[0].Type)

	require.Len(t, got.Answer, 1)
	mx, ok := got.Answer[0].Data.(MXRecord)
	require.True(t, ok)
	assert.Equal(t, uint16(10), mx.Preference)
	assert.Equal(t, "mx1.example.org.", mx.Exchange.String())
}

func TestDecode_TruncatedHeader(t *testing.T) {
	_, err := Decode([]byte{0, 1, 2})
	require.Error(t, err)
}

func TestDecode_RDLengthOverrun(t *testing.T) {
	name := MustParseName("a.test.")
	msg := Message{
		Header:   Header{ID: 1, QDCount: 1},
		Question: []Question{{Name: name, Type: TypeA, Class: ClassIN}},
	}
	wire, err := Encode(msg)
	require.NoError(t, err)

	// Append a bogus answer RR header claiming more RDATA than exists.
	rr := append([]byte{}, wire...)
	rr = append(rr, 0)                // root name
	rr = append(rr, 0, byte(TypeA))   // type
	rr = append(rr, 0, byte(ClassIN)) // class
	rr = append(rr, 0, 0, 0, 60)      // ttl
	rr = append(rr, 0, 10)            // rdlength = 10, but nothing follows

	hdr := append([]byte{}, rr...)
	// bump ANCOUNT to 1 so the decoder attempts to read the bogus RR
	hdr[7] = 1

	_, err = Decode(hdr)
	require.Error(t, err)
}

func TestDecode_TCPZeroLengthFrame(t *testing.T) {
	// An empty TCP frame is not a valid DNS message (too short for even
	// the header); decode must reject it rather than panic.
	_, err := Decode(nil)
	require.Error(t, err)
}
