// Package connpool implements a pool of txn.Client values keyed by
// (host, port, protocol), with a sourcing policy per request and
// dial-retry pacing borrowed from the teacher's response-rate-limiting
// design (spec.md §4.5).
package connpool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dnsscience/dnsasync/errkind"
	"github.com/dnsscience/dnsasync/internal/events"
	"github.com/dnsscience/dnsasync/internal/metrics"
	"github.com/dnsscience/dnsasync/transport"
	"github.com/dnsscience/dnsasync/txn"
)

// Sourcing selects how Pool.Next locates or creates a client for a given
// key (spec.md §4.5).
type Sourcing int

const (
	// Existing returns the first matching (host, port, protocol) client,
	// creating and storing one if none exists yet.
	Existing Sourcing = iota
	// New always dials a fresh client and stores it under the key,
	// alongside whatever was already there.
	New
	// Unpooled dials a fresh client that the pool never stores or tracks.
	Unpooled
)

// ConnectionRequirements names the client a caller wants and how to source
// it (spec.md §4.5).
type ConnectionRequirements struct {
	Host     string
	Port     int
	Protocol transport.Protocol
	Sourcing Sourcing
	// Timeout overrides the pool's configured per-query default for
	// clients created to satisfy this request.
	Timeout time.Duration
}

type key struct {
	host  string
	port  int
	proto transport.Protocol
}

func keyOf(r ConnectionRequirements) key {
	return key{host: r.Host, port: r.Port, proto: r.Protocol}
}

// PooledClient is a txn.Client owned by a Pool, tagged with the key it is
// stored under so the pool can find and remove it again.
type PooledClient struct {
	*txn.Client
	key key
}

// Config configures a Pool's construction. The zero Config is usable.
type Config struct {
	// Timeout is the default per-query budget handed to every client the
	// pool dials, unless a request overrides it.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Events  *events.Bus

	// MaxRetries bounds dial attempts per Next call before giving up.
	// 0 means DefaultMaxRetries.
	MaxRetries int
	// RetryBurst and RetryEvery configure the token bucket pacing dial
	// retries against one misbehaving nameserver. 0 means the defaults.
	RetryBurst int
	RetryEvery time.Duration
}

// DefaultMaxRetries is the dial attempt budget per Next call when
// Config.MaxRetries is 0 (spec.md §4.5).
const DefaultMaxRetries = 3

// DefaultRetryBurst and DefaultRetryEvery size the per-pool dial-retry
// token bucket when Config leaves them zero — a burst of 3 immediate
// attempts, refilling one token every 250ms, matching the teacher's
// rrl.DefaultConfig "protect against a client hammering a misbehaving
// peer" shape, repurposed here for outbound dial pacing.
const (
	DefaultRetryBurst = 3
	DefaultRetryEvery = 250 * time.Millisecond
)

// Pool owns a set of PooledClient values and hands them out per
// ConnectionRequirements (spec.md §4.5).
type Pool struct {
	mu      sync.Mutex
	entries map[key][]*PooledClient
	cfg     Config
	limiter *rate.Limiter
	closed  bool
}

// New constructs a Pool. Clients it dials inherit cfg.Timeout/Metrics/Events
// unless a request overrides Timeout.
func New(cfg Config) *Pool {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	burst := cfg.RetryBurst
	if burst == 0 {
		burst = DefaultRetryBurst
	}
	every := cfg.RetryEvery
	if every == 0 {
		every = DefaultRetryEvery
	}
	return &Pool{
		entries: make(map[key][]*PooledClient),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

// Next returns a client satisfying requirements, sourced per its Sourcing
// policy (spec.md §4.5 "next(requirements)").
func (p *Pool) Next(ctx context.Context, req ConnectionRequirements) (*PooledClient, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errkind.New(errkind.PoolClosed, "connpool.Next", nil)
	}
	k := keyOf(req)

	if req.Sourcing == Existing {
		if existing := p.firstLocked(k); existing != nil {
			p.mu.Unlock()
			return existing, nil
		}
	}
	p.mu.Unlock()

	pc, err := p.dialWithRetry(ctx, req, k)
	if err != nil {
		return nil, err
	}

	if req.Sourcing == Unpooled {
		return pc, nil
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		pc.Close()
		return nil, errkind.New(errkind.PoolClosed, "connpool.Next", nil)
	}
	p.entries[k] = append(p.entries[k], pc)
	p.cfg.Metrics.PoolSize.Set(float64(p.sizeLocked()))
	p.mu.Unlock()

	go p.watch(pc)
	return pc, nil
}

func (p *Pool) sizeLocked() int {
	n := 0
	for _, list := range p.entries {
		n += len(list)
	}
	return n
}

func (p *Pool) firstLocked(k key) *PooledClient {
	list := p.entries[k]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// watch removes pc from the pool once its underlying client's transport
// goes away — the "weak link from close watcher back to the pool"
// (spec.md §4.5).
func (p *Pool) watch(pc *PooledClient) {
	<-pc.Done()
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.entries[pc.key]
	for i, c := range list {
		if c == pc {
			p.entries[pc.key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(p.entries[pc.key]) == 0 {
		delete(p.entries, pc.key)
	}
	p.cfg.Metrics.PoolSize.Set(float64(p.sizeLocked()))
}

func (p *Pool) dialWithRetry(ctx context.Context, req ConnectionRequirements, k key) (*PooledClient, error) {
	cfg := txn.Config{Timeout: req.Timeout, Metrics: p.cfg.Metrics, Events: p.cfg.Events}
	if cfg.Timeout == 0 {
		cfg.Timeout = p.cfg.Timeout
	}

	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			p.cfg.Metrics.PoolConnectRetry.Inc()
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var c *txn.Client
		var err error
		switch req.Protocol {
		case transport.TCP:
			c, err = txn.ConnectTCP(req.Host, req.Port, cfg)
		default:
			c, err = txn.Connect(req.Host, req.Port, cfg)
		}
		if err == nil {
			return &PooledClient{Client: c, key: k}, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Disconnect marks the pool closed, empties it, and closes every client it
// held. Subsequent Next calls fail with errkind.PoolClosed (spec.md §4.5).
func (p *Pool) Disconnect() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	entries := p.entries
	p.entries = make(map[key][]*PooledClient)
	p.mu.Unlock()

	var firstErr error
	for _, list := range entries {
		for _, pc := range list {
			if err := pc.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Len reports how many pooled clients are currently stored, across every
// key — useful for tests and diagnostics.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizeLocked()
}
