// Package dnsmsg implements a bit-exact RFC 1035 DNS wire codec: message
// encoding/decoding, the name-compression scheme, and typed resource
// records. The codec is pure: it never performs I/O, it only translates
// between Message values and byte slices.
package dnsmsg

// Type is a DNS RR/QTYPE code (RFC 1035/1035bis). Recognized codes per
// spec.md §6.
type Type uint16

const (
	TypeA     Type = 1
	TypeNS    Type = 2
	TypeCNAME Type = 5
	TypeSOA   Type = 6
	TypePTR   Type = 12
	TypeMX    Type = 15
	TypeTXT   Type = 16
	TypeAAAA  Type = 28
	TypeSRV   Type = 33

	// QTYPE-only meta-types; never appear in an answer RR.
	TypeAXFR  Type = 252
	TypeMAILB Type = 253
	TypeMAILA Type = 254
	TypeANY   Type = 255
)

func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypeSOA:
		return "SOA"
	case TypePTR:
		return "PTR"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeAAAA:
		return "AAAA"
	case TypeSRV:
		return "SRV"
	case TypeAXFR:
		return "AXFR"
	case TypeMAILB:
		return "MAILB"
	case TypeMAILA:
		return "MAILA"
	case TypeANY:
		return "ANY"
	default:
		return "TYPE" + itoa(uint16(t))
	}
}

// Class is a DNS CLASS code.
type Class uint16

const (
	ClassIN Class = 1
	ClassCH Class = 3
	ClassHS Class = 4
)

// Opcode is the 4-bit operation code in the header flags.
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
)

// Rcode is the 4-bit response code in the header flags.
type Rcode uint8

const (
	RcodeSuccess        Rcode = 0
	RcodeFormatError    Rcode = 1
	RcodeServerFailure  Rcode = 2
	RcodeNameError      Rcode = 3
	RcodeNotImplemented Rcode = 4
	RcodeRefused        Rcode = 5
)

// Header is the fixed 12-byte DNS message header (RFC 1035 §4.1.1). It is
// kept as named boolean/bitfield accessors rather than one raw uint16, per
// the implementer's choice spec.md §3 explicitly allows.
type Header struct {
	ID      uint16
	QR      bool // false = query, true = response
	Opcode  Opcode
	AA      bool
	TC      bool
	RD      bool
	RA      bool
	Z       bool // reserved, must be zero on the wire
	AD      bool
	CD      bool
	Rcode   Rcode

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

func (h Header) flags() uint16 {
	var f uint16
	if h.QR {
		f |= 1 << 15
	}
	f |= uint16(h.Opcode&0x0F) << 11
	if h.AA {
		f |= 1 << 10
	}
	if h.TC {
		f |= 1 << 9
	}
	if h.RD {
		f |= 1 << 8
	}
	if h.RA {
		f |= 1 << 7
	}
	if h.Z {
		f |= 1 << 6
	}
	if h.AD {
		f |= 1 << 5
	}
	if h.CD {
		f |= 1 << 4
	}
	f |= uint16(h.Rcode & 0x0F)
	return f
}

func headerFromFlags(id, flags, qd, an, ns, ar uint16) Header {
	return Header{
		ID:      id,
		QR:      flags&(1<<15) != 0,
		Opcode:  Opcode((flags >> 11) & 0x0F),
		AA:      flags&(1<<10) != 0,
		TC:      flags&(1<<9) != 0,
		RD:      flags&(1<<8) != 0,
		RA:      flags&(1<<7) != 0,
		Z:       flags&(1<<6) != 0,
		AD:      flags&(1<<5) != 0,
		CD:      flags&(1<<4) != 0,
		Rcode:   Rcode(flags & 0x0F),
		QDCount: qd,
		ANCount: an,
		NSCount: ns,
		ARCount: ar,
	}
}

// Question is a single entry in a message's question section.
type Question struct {
	Name  Name
	Type  Type
	Class Class
}

// ResourceRecord pairs a name/type/class/TTL with a typed payload. Data
// is one of the concrete record value types in records.go, or OtherRecord
// for unrecognized type codes.
type ResourceRecord struct {
	Name  Name
	Type  Type
	Class Class
	TTL   uint32
	Data  RecordData
}

// RecordData is implemented by every record payload variant.
type RecordData interface {
	recordType() Type
}

// Message is a full DNS message: header plus four record sections.
type Message struct {
	Header     Header
	Question   []Question
	Answer     []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// NewQuery builds a minimal query Message for a single question: standard
// query opcode, RD set (callers clear it for multicast by setting Header.RD
// to false).
func NewQuery(id uint16, name Name, qtype Type, class Class) Message {
	return Message{
		Header: Header{
			ID:      id,
			Opcode:  OpcodeQuery,
			RD:      true,
			QDCount: 1,
		},
		Question: []Question{{Name: name, Type: qtype, Class: class}},
	}
}

func itoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
