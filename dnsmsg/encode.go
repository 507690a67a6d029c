package dnsmsg

import "encoding/binary"

// maxPointerOffset is the largest offset a 14-bit compression pointer can
// address; any suffix first seen beyond it can never be referenced and so
// is never recorded (spec.md §4.1 "offsets > 0x3FFF are never stored").
const maxPointerOffset = 0x3FFF

// encoder accumulates a wire-format message into buf, tracking a
// suffix-key -> offset map seeded empty for the lifetime of a single
// Encode call (spec.md §4.1).
type encoder struct {
	buf     []byte
	offsets map[string]int
}

// Encode serializes msg to its wire representation, compressing names
// against a fresh offset table for this call only.
func Encode(msg Message) ([]byte, error) {
	e := &encoder{
		buf:     make([]byte, 0, 512),
		offsets: make(map[string]int),
	}

	h := msg.Header
	h.QDCount = uint16(len(msg.Question))
	h.ANCount = uint16(len(msg.Answer))
	h.NSCount = uint16(len(msg.Authority))
	h.ARCount = uint16(len(msg.Additional))

	e.writeUint16(h.ID)
	e.writeUint16(h.flags())
	e.writeUint16(h.QDCount)
	e.writeUint16(h.ANCount)
	e.writeUint16(h.NSCount)
	e.writeUint16(h.ARCount)

	for _, q := range msg.Question {
		e.writeName(q.Name)
		e.writeUint16(uint16(q.Type))
		e.writeUint16(uint16(q.Class))
	}

	for _, section := range [][]ResourceRecord{msg.Answer, msg.Authority, msg.Additional} {
		for _, rr := range section {
			if err := e.writeRR(rr); err != nil {
				return nil, err
			}
		}
	}

	return e.buf, nil
}

func (e *encoder) pos() int { return len(e.buf) }

func (e *encoder) writeByte(b byte) { e.buf = append(e.buf, b) }

func (e *encoder) writeBytes(b []byte) { e.buf = append(e.buf, b...) }

func (e *encoder) writeUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

func (e *encoder) writeUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	e.buf = append(e.buf, tmp[:]...)
}

// writeName implements spec.md §4.1's compression-encode algorithm:
// probe each suffix from longest to shortest against the offset table,
// emit a pointer on the first hit, otherwise record the suffix's offset
// (if reachable) and emit one length-prefixed label, continuing with the
// tail; emit the zero terminator if no suffix ever hit.
func (e *encoder) writeName(name Name) {
	labels := name.Labels
	for i := 0; i < len(labels); i++ {
		suffix := Name{Labels: labels[i:]}
		key := suffix.canonicalKey()
		if off, ok := e.offsets[key]; ok {
			e.writeUint16(0xC000 | uint16(off))
			return
		}
		if e.pos() <= maxPointerOffset {
			e.offsets[key] = e.pos()
		}
		e.writeByte(byte(len(labels[i])))
		e.writeBytes([]byte(labels[i]))
	}
	e.writeByte(0)
}

func (e *encoder) writeRR(rr ResourceRecord) error {
	e.writeName(rr.Name)
	e.writeUint16(uint16(rr.Type))
	e.writeUint16(uint16(rr.Class))
	e.writeUint32(rr.TTL)

	lenPos := e.pos()
	e.writeUint16(0) // RDLENGTH placeholder, patched below
	rdStart := e.pos()

	if err := e.writeRData(rr.Data); err != nil {
		return err
	}

	rdLen := e.pos() - rdStart
	binary.BigEndian.PutUint16(e.buf[lenPos:lenPos+2], uint16(rdLen))
	return nil
}

func (e *encoder) writeRData(data RecordData) error {
	switch r := data.(type) {
	case ARecord:
		e.writeBytes(r.Address[:])
	case AAAARecord:
		e.writeBytes(r.Address[:])
	case CNAMERecord:
		e.writeName(r.Target)
	case NSRecord:
		e.writeName(r.NameServer)
	case PTRRecord:
		e.writeName(r.Target)
	case MXRecord:
		e.writeUint16(r.Preference)
		e.writeName(r.Exchange)
	case SRVRecord:
		e.writeUint16(r.Priority)
		e.writeUint16(r.Weight)
		e.writeUint16(r.Port)
		e.writeName(r.Target)
	case TXTRecord:
		for _, s := range r.Strings {
			if len(s) > 255 {
				return malformed("dnsmsg.Encode: txt entry too long")
			}
			e.writeByte(byte(len(s)))
			e.writeBytes([]byte(s))
		}
	case SOARecord:
		e.writeName(r.PrimaryNS)
		e.writeName(r.Admin)
		e.writeUint32(r.Serial)
		e.writeUint32(r.Refresh)
		e.writeUint32(r.Retry)
		e.writeUint32(r.Expire)
		e.writeUint32(r.Minimum)
	case OtherRecord:
		e.writeBytes(r.Raw)
	default:
		return malformed("dnsmsg.Encode: unknown record data type")
	}
	return nil
}
