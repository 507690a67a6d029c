package dnsmsg

import (
	"encoding/binary"

	"github.com/dnsscience/dnsasync/errkind"
)

const (
	headerWireLen = 12

	// maxPointerChain bounds the number of pointer hops a single name may
	// take. Every hop strictly decreases the read position (enforced
	// below), so this can never be reached by a well-formed packet; it
	// exists only as defense in depth against a decoder bug, the same
	// belt-and-suspenders the packet parser we grounded this on applies.
	maxPointerChain = 128
)

func malformed(op string) error {
	return errkind.New(errkind.MalformedPacket, op, nil)
}

// decoder walks a single DNS message's bytes. It never advances past
// len(buf) (invariant 6) and is otherwise stateless between Decode calls.
type decoder struct {
	buf []byte
	pos int
}

// Decode parses a complete wire-format DNS message. Any bounds, format, or
// compression-cycle violation yields a MalformedPacket error per spec.md
// §4.1.
func Decode(buf []byte) (Message, error) {
	d := &decoder{buf: buf}
	var m Message

	id, flags, qd, an, ns, ar, err := d.readHeader()
	if err != nil {
		return Message{}, err
	}
	m.Header = headerFromFlags(id, flags, qd, an, ns, ar)

	m.Question = make([]Question, 0, qd)
	for i := 0; i < int(qd); i++ {
		q, err := d.readQuestion()
		if err != nil {
			return Message{}, err
		}
		m.Question = append(m.Question, q)
	}

	for _, section := range []struct {
		count int
		dst   *[]ResourceRecord
	}{
		{int(an), &m.Answer},
		{int(ns), &m.Authority},
		{int(ar), &m.Additional},
	} {
		*section.dst = make([]ResourceRecord, 0, section.count)
		for i := 0; i < section.count; i++ {
			rr, err := d.readRR()
			if err != nil {
				return Message{}, err
			}
			*section.dst = append(*section.dst, rr)
		}
	}

	return m, nil
}

func (d *decoder) readHeader() (id, flags, qd, an, ns, ar uint16, err error) {
	if len(d.buf) < headerWireLen {
		return 0, 0, 0, 0, 0, 0, malformed("dnsmsg.Decode: header")
	}
	id = binary.BigEndian.Uint16(d.buf[0:2])
	flags = binary.BigEndian.Uint16(d.buf[2:4])
	qd = binary.BigEndian.Uint16(d.buf[4:6])
	an = binary.BigEndian.Uint16(d.buf[6:8])
	ns = binary.BigEndian.Uint16(d.buf[8:10])
	ar = binary.BigEndian.Uint16(d.buf[10:12])
	d.pos = headerWireLen
	return
}

func (d *decoder) readQuestion() (Question, error) {
	name, err := d.readName()
	if err != nil {
		return Question{}, err
	}
	if d.pos+4 > len(d.buf) {
		return Question{}, malformed("dnsmsg.Decode: question")
	}
	t := binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2])
	c := binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4])
	d.pos += 4
	return Question{Name: name, Type: Type(t), Class: Class(c)}, nil
}

func (d *decoder) readRR() (ResourceRecord, error) {
	name, err := d.readName()
	if err != nil {
		return ResourceRecord{}, err
	}
	if d.pos+10 > len(d.buf) {
		return ResourceRecord{}, malformed("dnsmsg.Decode: rr header")
	}
	typ := Type(binary.BigEndian.Uint16(d.buf[d.pos : d.pos+2]))
	class := Class(binary.BigEndian.Uint16(d.buf[d.pos+2 : d.pos+4]))
	ttl := binary.BigEndian.Uint32(d.buf[d.pos+4 : d.pos+8])
	rdlen := binary.BigEndian.Uint16(d.buf[d.pos+8 : d.pos+10])
	d.pos += 10

	if d.pos+int(rdlen) > len(d.buf) {
		return ResourceRecord{}, malformed("dnsmsg.Decode: rdlength overrun")
	}
	rdStart := d.pos
	data, err := d.readRData(typ, rdStart, int(rdlen))
	if err != nil {
		return ResourceRecord{}, err
	}
	d.pos = rdStart + int(rdlen)

	return ResourceRecord{Name: name, Type: typ, Class: class, TTL: ttl, Data: data}, nil
}

// readName implements spec.md §4.1's compression-decode algorithm: labels
// are read until a zero byte or a compression pointer; a pointer seeks the
// read cursor to an earlier offset and the outer cursor resumes right
// after the 2-byte pointer once the name finishes. Every pointer must
// target a position strictly before the pointer byte itself (invariant 4).
// That rule alone does not rule out cycles — a pointer can target a run of
// labels that leads forward to the same pointer again — so a set of
// visited pointer-target offsets rejects any target reached twice.
func (d *decoder) readName() (Name, error) {
	var labels []Label
	cursor := d.pos
	jumped := false
	visited := make(map[int]bool)
	hops := 0

	for {
		if cursor >= len(d.buf) {
			return Name{}, malformed("dnsmsg.Decode: name out of bounds")
		}
		lengthByte := d.buf[cursor]

		switch {
		case lengthByte == 0:
			if !jumped {
				d.pos = cursor + 1
			}
			n := Name{Labels: labels}
			if n.WireLen() > maxNameLength {
				return Name{}, malformed("dnsmsg.Decode: name too long")
			}
			return n, nil

		case lengthByte&0xC0 == 0xC0:
			if cursor+1 >= len(d.buf) {
				return Name{}, malformed("dnsmsg.Decode: truncated pointer")
			}
			ptr := int(binary.BigEndian.Uint16(d.buf[cursor:cursor+2]) & 0x3FFF)
			if ptr >= cursor {
				return Name{}, malformed("dnsmsg.Decode: forward or self pointer")
			}
			if visited[ptr] {
				return Name{}, malformed("dnsmsg.Decode: pointer cycle")
			}
			visited[ptr] = true
			hops++
			if hops > maxPointerChain {
				return Name{}, malformed("dnsmsg.Decode: pointer chain too long")
			}
			if !jumped {
				d.pos = cursor + 2
				jumped = true
			}
			cursor = ptr

		case lengthByte&0xC0 == 0:
			length := int(lengthByte)
			if length > maxLabelLength {
				return Name{}, malformed("dnsmsg.Decode: label too long")
			}
			cursor++
			if cursor+length > len(d.buf) {
				return Name{}, malformed("dnsmsg.Decode: label out of bounds")
			}
			label, err := newLabel(string(d.buf[cursor : cursor+length]))
			if err != nil {
				return Name{}, err
			}
			labels = append(labels, label)
			cursor += length

		default:
			// Top bits 01 or 10: reserved, rejected per spec.md §3
			// invariant 5 and the open question in §9 (treated as
			// reserved, not an EDNS extended label).
			return Name{}, malformed("dnsmsg.Decode: reserved label length bits")
		}
	}
}
