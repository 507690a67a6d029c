// Package txn implements the transaction engine: per-client ID
// allocation, the in-flight table, timeout scheduling, cancellation, and
// response dispatch (spec.md §4.4). It is the one package that ties the
// wire codec (dnsmsg) to a transport.Conn.
package txn

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dnsscience/dnsasync/dnsmsg"
	"github.com/dnsscience/dnsasync/errkind"
	"github.com/dnsscience/dnsasync/internal/events"
	"github.com/dnsscience/dnsasync/internal/loop"
	"github.com/dnsscience/dnsasync/internal/metrics"
	"github.com/dnsscience/dnsasync/transport"
)

// DefaultTimeout is the per-query budget applied when Config.Timeout (or a
// SendQuery override) is zero (spec.md §4.4).
const DefaultTimeout = 30 * time.Second

// UnsolicitedHandler is invoked with an unsolicited multicast message
// (QR unset, not an answer to anything this client sent) and the address
// it arrived from. A non-nil returned Message is sent back to that
// address as a reply.
type UnsolicitedHandler func(msg dnsmsg.Message, from net.Addr) *dnsmsg.Message

// Config configures a Client's construction. The zero Config is usable —
// every field has a documented default.
type Config struct {
	// Timeout is the default per-query budget; 0 means DefaultTimeout.
	Timeout time.Duration
	// Metrics, if nil, defaults to a set of unregistered no-op instruments.
	Metrics *metrics.Metrics
	// Events, if nil, disables event publication entirely (Publish on a
	// nil *events.Bus is never called).
	Events *events.Bus
	// Unsolicited handles inbound multicast queries; only consulted when
	// the Client was built via ConnectMulticast.
	Unsolicited UnsolicitedHandler
}

// Client owns one transport.Conn, one event loop, and the in-flight table
// of queries sent over that conn (spec.md §3 "Lifecycles"). All public
// methods are safe to call from any goroutine.
type Client struct {
	conn   transport.Conn
	loop   *loop.Loop
	ids    *idAllocator
	table  *inflightTable
	cfg    Config
	closed atomic.Bool
	done   chan struct{}

	recvWG sync.WaitGroup
}

func newClient(conn transport.Conn, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	c := &Client{
		conn:  conn,
		loop:  loop.New(loop.Config{}),
		ids:   newIDAllocator(),
		table: newInflightTable(),
		cfg:   cfg,
		done:  make(chan struct{}),
	}
	c.recvWG.Add(1)
	go c.receiveLoop()
	return c
}

// Connect opens a UDP client to host:port.
func Connect(host string, port int, cfg Config) (*Client, error) {
	conn, err := transport.DialUDP(host, port)
	if err != nil {
		return nil, err
	}
	return newClient(conn, cfg), nil
}

// ConnectTCP opens a TCP client to host:port.
func ConnectTCP(host string, port int, cfg Config) (*Client, error) {
	conn, err := transport.DialTCP(host, port)
	if err != nil {
		return nil, err
	}
	return newClient(conn, cfg), nil
}

// ConnectMulticast joins the mDNS multicast group; outbound queries sent
// through the resulting Client always have RD cleared (spec.md §4.3).
func ConnectMulticast(cfg Config) (*Client, error) {
	conn, err := transport.DialMulticast()
	if err != nil {
		return nil, err
	}
	return newClient(conn, cfg), nil
}

// IsMulticast reports whether this client disables RD and dispatches
// unsolicited inbound messages.
func (c *Client) IsMulticast() bool { return c.conn.IsMulticast() }

// SendQuery builds and sends a query for name/qtype/qclass, returning the
// decoded response once it arrives, or an error on timeout, cancellation,
// or transport failure. A zero timeout uses the Client's configured
// default.
func (c *Client) SendQuery(ctx context.Context, name dnsmsg.Name, qtype dnsmsg.Type, qclass dnsmsg.Class, timeout time.Duration) (dnsmsg.Message, error) {
	if c.closed.Load() {
		return dnsmsg.Message{}, errkind.New(errkind.IO, "txn.SendQuery", nil)
	}
	if timeout == 0 {
		timeout = c.cfg.Timeout
	}

	id := c.ids.next()
	msg := dnsmsg.NewQuery(id, name, qtype, qclass)
	if c.conn.IsMulticast() {
		msg.Header.RD = false
	}

	q := &sentQuery{msg: msg, sink: make(chan outcome, 1)}

	// Insert before write: a response can never race ahead of
	// registration (spec.md §5 ordering guarantee).
	c.table.insert(id, q)
	q.timer = c.loop.AfterFunc(timeout, func() {
		if taken := c.table.take(id); taken != nil {
			taken.complete(outcome{err: errkind.New(errkind.Timeout, "txn.SendQuery", nil)})
			c.publish(events.TopicTimeout, id)
		}
	})

	wire, err := dnsmsg.Encode(msg)
	if err != nil {
		c.table.take(id)
		q.timer.Stop()
		return dnsmsg.Message{}, err
	}

	if err := c.conn.Send(wire); err != nil {
		if taken := c.table.take(id); taken != nil {
			taken.timer.Stop()
		}
		return dnsmsg.Message{}, err
	}
	c.publish(events.TopicSent, id)
	c.cfg.Metrics.QueriesSent.Inc()
	c.cfg.Metrics.InflightQueries.Inc()
	sentAt := time.Now()

	select {
	case o := <-q.sink:
		c.cfg.Metrics.InflightQueries.Dec()
		c.cfg.Metrics.QueryDuration.Observe(time.Since(sentAt).Seconds())
		if o.err != nil {
			c.recordOutcome(o.err)
			return dnsmsg.Message{}, o.err
		}
		c.recordOutcome(nil)
		return o.msg, nil
	case <-ctx.Done():
		if taken := c.table.take(id); taken != nil {
			taken.timer.Stop()
		}
		c.cfg.Metrics.InflightQueries.Dec()
		c.cfg.Metrics.QueryDuration.Observe(time.Since(sentAt).Seconds())
		return dnsmsg.Message{}, ctx.Err()
	}
}

func (c *Client) recordOutcome(err error) {
	label := "success"
	if err != nil {
		if kind, ok := errkind.Of(err); ok {
			label = kind.String()
		} else {
			label = "error"
		}
	}
	c.cfg.Metrics.QueriesResolved.WithLabelValues(label).Inc()
}

func (c *Client) publish(topic events.Topic, data interface{}) {
	if c.cfg.Events != nil {
		c.cfg.Events.Publish(topic, data)
	}
}

// receiveLoop reads one message at a time from the transport and
// dispatches it, exiting when the conn closes. A multicast conn also
// tracks the sender address so an unsolicited query can be replied to
// directly (spec.md §4.3); every other conn just reads payloads.
func (c *Client) receiveLoop() {
	defer c.recvWG.Done()
	mc, isMulticast := c.conn.(*transport.MulticastConn)

	for {
		var wire []byte
		var from net.Addr
		var err error

		if isMulticast {
			wire, from, err = mc.RecvFrom()
		} else {
			wire, err = c.conn.Recv()
		}
		if err != nil {
			c.teardown(err)
			return
		}

		msg, err := dnsmsg.Decode(wire)
		if err != nil {
			// A single malformed inbound packet does not tear down the
			// client (spec.md §7): it is simply not a valid answer to
			// anything.
			continue
		}
		c.dispatch(msg, from)
	}
}

func (c *Client) dispatch(msg dnsmsg.Message, from net.Addr) {
	if !msg.Header.QR {
		if c.conn.IsMulticast() {
			c.publish(events.TopicUnsolicited, msg)
			if c.cfg.Unsolicited != nil && from != nil {
				if reply := c.cfg.Unsolicited(msg, from); reply != nil {
					if wire, err := dnsmsg.Encode(*reply); err == nil {
						if mc, ok := c.conn.(*transport.MulticastConn); ok {
							mc.ReplyTo(from, wire)
						}
					}
				}
			}
		}
		return
	}

	q := c.table.take(msg.Header.ID)
	if q == nil {
		// UnknownTransaction: late response after timeout, or noise.
		// Benign and dropped per spec.md §4.4.
		return
	}
	q.timer.Stop()
	q.complete(outcome{msg: msg})
	c.publish(events.TopicResolved, msg.Header.ID)
}

func (c *Client) teardown(err error) {
	if c.closed.Swap(true) {
		return
	}
	c.table.drain(errkind.New(errkind.IO, "txn: transport closed", err))
	c.conn.Close()
	c.loop.Close()
	close(c.done)
}

// Done returns a channel closed once the client's transport has gone away,
// either via Close or an unrecoverable receive failure. A connection pool
// watches this to deregister a PooledClient without polling.
func (c *Client) Done() <-chan struct{} { return c.done }

// CancelQueries resolves every currently pending query with Cancelled and
// empties the in-flight table, without closing the underlying transport
// (spec.md §5 "Cancellation semantics").
func (c *Client) CancelQueries() {
	c.table.drain(errkind.New(errkind.Cancelled, "txn.CancelQueries", nil))
}

// Close cancels every pending query, closes the transport, and stops the
// client's event loop.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.table.drain(errkind.New(errkind.Cancelled, "txn.Close", nil))
	err := c.conn.Close()
	c.loop.Close()
	c.recvWG.Wait()
	close(c.done)
	return err
}

// Pending reports how many queries are currently awaiting a response;
// useful for tests and pool bookkeeping.
func (c *Client) Pending() int {
	return c.table.len()
}
