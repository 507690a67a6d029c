package dnsmsg

import "encoding/binary"

// readRData dispatches on the record type code to produce a typed
// RecordData, falling through to OtherRecord for anything this codec does
// not know how to interpret structurally (spec.md §4.1 "RDATA typed
// parsing"). rdStart/rdLen bound the RDATA region within d.buf; names
// embedded in RDATA (CNAME/NS/PTR/MX/SRV/SOA targets) may still use
// compression pointers into the rest of the packet, so name reads use the
// shared decoder cursor rather than a sub-slice. Zero-length RDATA decodes
// to an OtherRecord with an empty Raw slice, whatever the type code.
func (d *decoder) readRData(typ Type, rdStart, rdLen int) (RecordData, error) {
	if rdLen == 0 {
		return d.readOther(typ, rdStart, rdLen)
	}
	switch typ {
	case TypeA:
		if rdLen != 4 {
			return d.readOther(typ, rdStart, rdLen)
		}
		var rec ARecord
		copy(rec.Address[:], d.buf[rdStart:rdStart+4])
		return rec, nil

	case TypeAAAA:
		if rdLen != 16 {
			return d.readOther(typ, rdStart, rdLen)
		}
		var rec AAAARecord
		copy(rec.Address[:], d.buf[rdStart:rdStart+16])
		return rec, nil

	case TypeCNAME:
		d.pos = rdStart
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return CNAMERecord{Target: name}, nil

	case TypeNS:
		d.pos = rdStart
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return NSRecord{NameServer: name}, nil

	case TypePTR:
		d.pos = rdStart
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return PTRRecord{Target: name}, nil

	case TypeMX:
		if rdLen < 2 {
			return d.readOther(typ, rdStart, rdLen)
		}
		pref := binary.BigEndian.Uint16(d.buf[rdStart : rdStart+2])
		d.pos = rdStart + 2
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return MXRecord{Preference: pref, Exchange: name}, nil

	case TypeSRV:
		if rdLen < 6 {
			return d.readOther(typ, rdStart, rdLen)
		}
		priority := binary.BigEndian.Uint16(d.buf[rdStart : rdStart+2])
		weight := binary.BigEndian.Uint16(d.buf[rdStart+2 : rdStart+4])
		port := binary.BigEndian.Uint16(d.buf[rdStart+4 : rdStart+6])
		d.pos = rdStart + 6
		name, err := d.readName()
		if err != nil {
			return nil, err
		}
		return SRVRecord{Priority: priority, Weight: weight, Port: port, Target: name}, nil

	case TypeTXT:
		return d.readTXT(rdStart, rdLen)

	case TypeSOA:
		return d.readSOA(rdStart, rdLen)

	default:
		return d.readOther(typ, rdStart, rdLen)
	}
}

func (d *decoder) readOther(typ Type, rdStart, rdLen int) (RecordData, error) {
	raw := make([]byte, rdLen)
	copy(raw, d.buf[rdStart:rdStart+rdLen])
	return OtherRecord{TypeCode: typ, Raw: raw}, nil
}

// readTXT walks consecutive (length, bytes) entries until rdLen is
// consumed, per spec.md §4.1 "TXT decode".
func (d *decoder) readTXT(rdStart, rdLen int) (RecordData, error) {
	var strs []string
	end := rdStart + rdLen
	cursor := rdStart
	for cursor < end {
		l := int(d.buf[cursor])
		cursor++
		if cursor+l > end {
			return nil, malformed("dnsmsg.Decode: txt entry overrun")
		}
		strs = append(strs, string(d.buf[cursor:cursor+l]))
		cursor += l
	}
	return TXTRecord{Strings: strs}, nil
}

func (d *decoder) readSOA(rdStart, rdLen int) (RecordData, error) {
	d.pos = rdStart
	primary, err := d.readName()
	if err != nil {
		return nil, err
	}
	admin, err := d.readName()
	if err != nil {
		return nil, err
	}
	if d.pos+20 > len(d.buf) {
		return nil, malformed("dnsmsg.Decode: soa overrun")
	}
	serial := binary.BigEndian.Uint32(d.buf[d.pos : d.pos+4])
	refresh := binary.BigEndian.Uint32(d.buf[d.pos+4 : d.pos+8])
	retry := binary.BigEndian.Uint32(d.buf[d.pos+8 : d.pos+12])
	expire := binary.BigEndian.Uint32(d.buf[d.pos+12 : d.pos+16])
	minimum := binary.BigEndian.Uint32(d.buf[d.pos+16 : d.pos+20])
	return SOARecord{
		PrimaryNS: primary,
		Admin:     admin,
		Serial:    serial,
		Refresh:   refresh,
		Retry:     retry,
		Expire:    expire,
		Minimum:   minimum,
	}, nil
}
