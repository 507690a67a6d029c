package dnsmsg

import (
	"strings"

	"github.com/dnsscience/dnsasync/errkind"
)

const (
	maxLabelLength = 63
	maxNameLength  = 255
)

// Label is one component of a domain name on the wire: 1-63 ASCII bytes.
// The empty label is reserved for the root/terminator and is never stored
// inside Name.Labels.
type Label string

func newLabel(s string) (Label, error) {
	if len(s) == 0 || len(s) > maxLabelLength {
		return "", errkind.New(errkind.MalformedPacket, "dnsmsg.Label", nil)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return "", errkind.New(errkind.MalformedPacket, "dnsmsg.Label", nil)
		}
	}
	return Label(s), nil
}

// Name is an ordered sequence of labels, root-terminated, whose wire
// encoding (length-prefixed labels plus the trailing zero byte) must not
// exceed 255 bytes.
type Name struct {
	Labels []Label
}

// ParseName splits a dotted, root-terminated or unterminated domain name
// (e.g. "www.example.com." or "www.example.com") into labels and validates
// every length constraint from spec.md invariants 4-5.
func ParseName(s string) (Name, error) {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return Name{}, nil
	}
	parts := strings.Split(s, ".")
	labels := make([]Label, 0, len(parts))
	for _, p := range parts {
		l, err := newLabel(p)
		if err != nil {
			return Name{}, err
		}
		labels = append(labels, l)
	}
	n := Name{Labels: labels}
	if n.WireLen() > maxNameLength {
		return Name{}, errkind.New(errkind.MalformedPacket, "dnsmsg.ParseName", nil)
	}
	return n, nil
}

// MustParseName is ParseName but panics on error; useful for literal names
// in tests and generated queries where the input is known-good.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// WireLen returns the number of bytes this name occupies on the wire when
// written uncompressed: each label is a length byte plus its bytes, plus
// the one-byte root terminator.
func (n Name) WireLen() int {
	total := 1
	for _, l := range n.Labels {
		total += 1 + len(l)
	}
	return total
}

// String renders the name in dotted, root-terminated form, e.g.
// "www.example.com." The root name renders as ".".
func (n Name) String() string {
	if len(n.Labels) == 0 {
		return "."
	}
	var b strings.Builder
	for _, l := range n.Labels {
		b.WriteString(string(l))
		b.WriteByte('.')
	}
	return b.String()
}

// canonicalKey is the compression-map key for a name suffix: the dotted
// representation, lower-cased so names that differ only in case (which RFC
// 1035 treats as equivalent for compression purposes in practice here)
// still share a pointer target. Spec.md does not mandate case folding for
// compression; we fold because every encoder in the pack we grounded this
// on does, and failing to fold only costs a few wasted bytes, never
// correctness.
func (n Name) canonicalKey() string {
	return strings.ToLower(n.String())
}

// Equal reports whether two names have the same labels, case-sensitively
// (wire equality, not canonical/case-folded equality).
func (n Name) Equal(other Name) bool {
	if len(n.Labels) != len(other.Labels) {
		return false
	}
	for i := range n.Labels {
		if n.Labels[i] != other.Labels[i] {
			return false
		}
	}
	return true
}

// IsRoot reports whether n is the zero-label root name.
func (n Name) IsRoot() bool { return len(n.Labels) == 0 }
