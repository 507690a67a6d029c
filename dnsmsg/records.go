package dnsmsg

import (
	"fmt"
	"net"
	"strings"
)

// ARecord is a 4-byte IPv4 address (type A).
type ARecord struct {
	Address [4]byte
}

func (ARecord) recordType() Type { return TypeA }

// StringAddress renders the address in dotted-quad form, e.g. "127.0.0.1".
func (r ARecord) StringAddress() string {
	return net.IP(r.Address[:]).String()
}

// AAAARecord is a 16-byte IPv6 address (type AAAA).
type AAAARecord struct {
	Address [16]byte
}

func (AAAARecord) recordType() Type { return TypeAAAA }

// StringAddress renders the address fully expanded in the canonical
// colon-hex form used by the testable scenario in spec.md §8, e.g.
// "2a00:1450:4001:0809:0000:0000:0000:200e".
func (r AAAARecord) StringAddress() string {
	var groups [8]string
	for i := 0; i < 8; i++ {
		groups[i] = fmt.Sprintf("%04x", uint16(r.Address[i*2])<<8|uint16(r.Address[i*2+1]))
	}
	return strings.Join(groups[:], ":")
}

// CNAMERecord carries a canonical-name alias target (type CNAME).
type CNAMERecord struct{ Target Name }

func (CNAMERecord) recordType() Type { return TypeCNAME }

// NSRecord names an authoritative nameserver (type NS).
type NSRecord struct{ NameServer Name }

func (NSRecord) recordType() Type { return TypeNS }

// PTRRecord carries a reverse-lookup target (type PTR).
type PTRRecord struct{ Target Name }

func (PTRRecord) recordType() Type { return TypePTR }

// String matches the testable scenario in spec.md §8: "PTRRecord: dns.google".
func (r PTRRecord) String() string {
	return fmt.Sprintf("PTRRecord: %s", strings.TrimSuffix(r.Target.String(), "."))
}

// MXRecord is a mail exchanger preference/target pair (type MX).
type MXRecord struct {
	Preference uint16
	Exchange   Name
}

func (MXRecord) recordType() Type { return TypeMX }

// SRVRecord is a service endpoint record (type SRV, RFC 2782).
type SRVRecord struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   Name
}

func (SRVRecord) recordType() Type { return TypeSRV }

// TXTRecord carries the ordered raw strings plus a derived key/value view
// that splits each entry on its first '=' (spec.md §4.1 "TXT decode").
// Entries without '=' are kept only in Strings.
type TXTRecord struct {
	Strings []string
}

func (TXTRecord) recordType() Type { return TypeTXT }

// KeyValues splits each TXT string on the first '=' into a map. An entry
// with no '=' is omitted from the map (it remains in Strings). Later '='
// characters in a value are kept as part of the value — spec.md §9 open
// question, resolved as documented behavior.
func (r TXTRecord) KeyValues() map[string]string {
	kv := make(map[string]string)
	for _, s := range r.Strings {
		if idx := strings.IndexByte(s, '='); idx >= 0 {
			kv[s[:idx]] = s[idx+1:]
		}
	}
	return kv
}

// SOARecord is the start-of-authority record (type SOA).
type SOARecord struct {
	PrimaryNS Name
	Admin     Name
	Serial    uint32
	Refresh   uint32
	Retry     uint32
	Expire    uint32
	Minimum   uint32
}

func (SOARecord) recordType() Type { return TypeSOA }

// OtherRecord preserves the raw RDATA for a type code this codec does not
// parse structurally.
type OtherRecord struct {
	TypeCode Type
	Raw      []byte
}

func (r OtherRecord) recordType() Type { return r.TypeCode }
