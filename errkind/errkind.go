// Package errkind defines the error taxonomy shared across dnsasync's
// codec, transport, transaction engine, and connection pool.
package errkind

import (
	"errors"
	"fmt"
)

// Kind identifies which category of failure produced an error, so callers
// can branch on errors.Is(err, errkind.TimeoutErr) etc. without parsing
// strings.
type Kind int

const (
	// MalformedPacket marks codec bounds/format/cycle failures.
	MalformedPacket Kind = iota
	// UnknownTransaction marks an inbound response with no matching
	// in-flight entry. Non-fatal; the message is dropped.
	UnknownTransaction
	// Timeout marks a query that received no response within its budget.
	Timeout
	// Cancelled marks a query resolved by explicit cancellation or client
	// teardown.
	Cancelled
	// NoNameservers marks a connect attempt without a usable server
	// address.
	NoNameservers
	// ConfigParse marks a resolver config that could not be read or
	// parsed.
	ConfigParse
	// InvalidIP marks a helper rejecting malformed input before issuing a
	// query.
	InvalidIP
	// PoolClosed marks a Pool.Next call after Disconnect.
	PoolClosed
	// IO marks an underlying socket/transport failure.
	IO
)

func (k Kind) String() string {
	switch k {
	case MalformedPacket:
		return "malformed_packet"
	case UnknownTransaction:
		return "unknown_transaction"
	case Timeout:
		return "timeout"
	case Cancelled:
		return "cancelled"
	case NoNameservers:
		return "no_nameservers"
	case ConfigParse:
		return "config_parse"
	case InvalidIP:
		return "invalid_ip"
	case PoolClosed:
		return "pool_closed"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so it can be matched with
// errors.Is/errors.As while still carrying a human-readable message and,
// where applicable, the original error via Unwrap.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "dnsmsg.Decode", "txn.SendQuery"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the package-level sentinel for e.Kind, so
// callers can write errors.Is(err, errkind.TimeoutErr).
func (e *Error) Is(target error) bool {
	var k kindSentinel
	if errors.As(target, &k) {
		return e.Kind == k.kind
	}
	return false
}

// New builds an *Error for the given kind and operation, optionally
// wrapping cause.
func New(kind Kind, op string, cause error) error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// kindSentinel lets a bare Kind act as an errors.Is target via the
// package-level sentinels below.
type kindSentinel struct{ kind Kind }

func (k kindSentinel) Error() string { return k.kind.String() }

// Sentinels usable directly with errors.Is(err, errkind.TimeoutErr), etc.
var (
	MalformedPacketErr   error = kindSentinel{MalformedPacket}
	UnknownTransactionErr error = kindSentinel{UnknownTransaction}
	TimeoutErr            error = kindSentinel{Timeout}
	CancelledErr          error = kindSentinel{Cancelled}
	NoNameserversErr      error = kindSentinel{NoNameservers}
	ConfigParseErr        error = kindSentinel{ConfigParse}
	InvalidIPErr          error = kindSentinel{InvalidIP}
	PoolClosedErr         error = kindSentinel{PoolClosed}
	IOErr                 error = kindSentinel{IO}
)

// Of reports the Kind of err if it (or something it wraps) is an *Error,
// and ok=false otherwise.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
