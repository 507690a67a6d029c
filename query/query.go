// Package query is a thin typed layer over txn.Client: one function per
// RR type, each issuing a query and filtering the answer section down to
// the record shape a caller actually wants (spec.md §4.6).
package query

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/dnsscience/dnsasync/dnsmsg"
	"github.com/dnsscience/dnsasync/errkind"
	"github.com/dnsscience/dnsasync/txn"
)

// LookupResult bundles both address families from a dual-stack Lookup.
type LookupResult struct {
	V4 []net.IP
	V6 []net.IP
	// Errs holds the A and AAAA errors in that order, whichever (if
	// either) failed; a caller with one usable family still gets it.
	Errs [2]error
}

// Lookup fans A and AAAA out concurrently over the same client and
// concatenates whatever each returns, rather than ranking or preferring
// one family — SRV-style load-balancing policy stays out of scope, this
// just saves a caller from issuing the two queries by hand.
func Lookup(ctx context.Context, c *txn.Client, name string, timeout time.Duration) LookupResult {
	var res LookupResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.V4, res.Errs[0] = A(ctx, c, name, timeout)
	}()
	go func() {
		defer wg.Done()
		res.V6, res.Errs[1] = AAAA(ctx, c, name, timeout)
	}()
	wg.Wait()
	return res
}

// A resolves name's A records as plain net.IP values.
func A(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]net.IP, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeA, timeout)
	if err != nil {
		return nil, err
	}
	var out []net.IP
	for _, rr := range msg.Answer {
		if a, ok := rr.Data.(dnsmsg.ARecord); ok {
			out = append(out, net.IP(a.Address[:]))
		}
	}
	return out, nil
}

// AAAA resolves name's AAAA records as plain net.IP values.
func AAAA(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]net.IP, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeAAAA, timeout)
	if err != nil {
		return nil, err
	}
	var out []net.IP
	for _, rr := range msg.Answer {
		if a, ok := rr.Data.(dnsmsg.AAAARecord); ok {
			out = append(out, net.IP(a.Address[:]))
		}
	}
	return out, nil
}

// AEndpoints resolves name's A records as IPv4 socket endpoints at port
// (spec.md §4.6 "aQuery").
func AEndpoints(ctx context.Context, c *txn.Client, name string, port int, timeout time.Duration) ([]netip.AddrPort, error) {
	ips, err := A(ctx, c, name, timeout)
	if err != nil {
		return nil, err
	}
	return toEndpoints(ips, port)
}

// AAAAEndpoints resolves name's AAAA records as IPv6 socket endpoints at
// port (spec.md §4.6 "aaaaQuery").
func AAAAEndpoints(ctx context.Context, c *txn.Client, name string, port int, timeout time.Duration) ([]netip.AddrPort, error) {
	ips, err := AAAA(ctx, c, name, timeout)
	if err != nil {
		return nil, err
	}
	return toEndpoints(ips, port)
}

func toEndpoints(ips []net.IP, port int) ([]netip.AddrPort, error) {
	out := make([]netip.AddrPort, 0, len(ips))
	for _, ip := range ips {
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		out = append(out, netip.AddrPortFrom(addr, uint16(port)))
	}
	return out, nil
}

// SRV resolves name's SRV records.
func SRV(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.SRVRecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeSRV, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.SRVRecord
	for _, rr := range msg.Answer {
		if srv, ok := rr.Data.(dnsmsg.SRVRecord); ok {
			out = append(out, srv)
		}
	}
	return out, nil
}

// MX resolves name's MX records.
func MX(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.MXRecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeMX, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.MXRecord
	for _, rr := range msg.Answer {
		if mx, ok := rr.Data.(dnsmsg.MXRecord); ok {
			out = append(out, mx)
		}
	}
	return out, nil
}

// TXT resolves name's TXT records, returning each record's raw strings.
func TXT(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.TXTRecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeTXT, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.TXTRecord
	for _, rr := range msg.Answer {
		if txt, ok := rr.Data.(dnsmsg.TXTRecord); ok {
			out = append(out, txt)
		}
	}
	return out, nil
}

// CNAME resolves name's CNAME records.
func CNAME(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.CNAMERecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeCNAME, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.CNAMERecord
	for _, rr := range msg.Answer {
		if cn, ok := rr.Data.(dnsmsg.CNAMERecord); ok {
			out = append(out, cn)
		}
	}
	return out, nil
}

// NS resolves name's NS records.
func NS(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.NSRecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeNS, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.NSRecord
	for _, rr := range msg.Answer {
		if ns, ok := rr.Data.(dnsmsg.NSRecord); ok {
			out = append(out, ns)
		}
	}
	return out, nil
}

// SOA resolves name's SOA record, the first one found.
func SOA(ctx context.Context, c *txn.Client, name string, timeout time.Duration) (dnsmsg.SOARecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypeSOA, timeout)
	if err != nil {
		return dnsmsg.SOARecord{}, err
	}
	for _, rr := range msg.Answer {
		if soa, ok := rr.Data.(dnsmsg.SOARecord); ok {
			return soa, nil
		}
	}
	return dnsmsg.SOARecord{}, errkind.New(errkind.MalformedPacket, "query.SOA", nil)
}

// PTR resolves name's PTR records directly (used by the inverse-address
// helpers below, and usable standalone for an already-formed arpa name).
func PTR(ctx context.Context, c *txn.Client, name string, timeout time.Duration) ([]dnsmsg.PTRRecord, error) {
	msg, err := send(ctx, c, name, dnsmsg.TypePTR, timeout)
	if err != nil {
		return nil, err
	}
	var out []dnsmsg.PTRRecord
	for _, rr := range msg.Answer {
		if ptr, ok := rr.Data.(dnsmsg.PTRRecord); ok {
			out = append(out, ptr)
		}
	}
	return out, nil
}

// IPv4InverseAddress issues a PTR query for addr's in-addr.arpa name
// (spec.md §4.6 "ipv4InverseAddress"), e.g. "8.8.4.4" becomes
// "4.4.8.8.in-addr.arpa.".
func IPv4InverseAddress(ctx context.Context, c *txn.Client, addr string, timeout time.Duration) ([]dnsmsg.PTRRecord, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, errkind.New(errkind.InvalidIP, "query.IPv4InverseAddress", nil)
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, errkind.New(errkind.InvalidIP, "query.IPv4InverseAddress", nil)
	}
	arpa := fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa.", v4[3], v4[2], v4[1], v4[0])
	return PTR(ctx, c, arpa, timeout)
}

// IPv6InverseAddress issues a PTR query for addr's ip6.arpa name
// (spec.md §4.6 "ipv6InverseAddress"): the address's 32 nibbles, each
// dot-separated, reversed, and suffixed with ".ip6.arpa.". Invalid input
// fails with errkind.InvalidIP without issuing a query.
func IPv6InverseAddress(ctx context.Context, c *txn.Client, addr string, timeout time.Duration) ([]dnsmsg.PTRRecord, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, errkind.New(errkind.InvalidIP, "query.IPv6InverseAddress", nil)
	}
	v6 := ip.To16()
	if v6 == nil || ip.To4() != nil {
		return nil, errkind.New(errkind.InvalidIP, "query.IPv6InverseAddress", nil)
	}

	var nibbles [32]byte
	for i, b := range v6 {
		nibbles[i*2] = "0123456789abcdef"[b>>4]
		nibbles[i*2+1] = "0123456789abcdef"[b&0x0f]
	}
	var b strings.Builder
	for i := len(nibbles) - 1; i >= 0; i-- {
		b.WriteByte(nibbles[i])
		b.WriteByte('.')
	}
	b.WriteString("ip6.arpa.")
	return PTR(ctx, c, b.String(), timeout)
}

func send(ctx context.Context, c *txn.Client, name string, qtype dnsmsg.Type, timeout time.Duration) (dnsmsg.Message, error) {
	n, err := dnsmsg.ParseName(name)
	if err != nil {
		// ParseName already returns a correctly-kinded errkind.Error
		// (MalformedPacket); propagate it unwrapped rather than re-kinding.
		return dnsmsg.Message{}, err
	}
	return c.SendQuery(ctx, n, qtype, dnsmsg.ClassIN, timeout)
}
