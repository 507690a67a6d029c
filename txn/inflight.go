package txn

import (
	"sync"
	"time"

	"github.com/dnsscience/dnsasync/dnsmsg"
)

// outcome is what a SentQuery's single-shot sink receives exactly once
// (spec.md §3 invariant 2).
type outcome struct {
	msg dnsmsg.Message
	err error
}

// sentQuery is spec.md §3's SentQuery: the message that was sent, a
// single-shot completion sink, and a cancellable timeout handle.
type sentQuery struct {
	msg     dnsmsg.Message
	sink    chan outcome
	timer   *time.Timer
	resolve sync.Once
}

// complete resolves the sink exactly once; subsequent calls are no-ops,
// which is what lets both a timeout firing and a response arriving race
// safely (spec.md §5 "whichever acquires the map first wins").
func (q *sentQuery) complete(o outcome) {
	q.resolve.Do(func() {
		q.sink <- o
	})
}

// inflightTable is the id -> sentQuery map guarded by a single mutex,
// spec.md §4.4's "single synchronization point between caller threads and
// the event loop."
type inflightTable struct {
	mu      sync.Mutex
	entries map[uint16]*sentQuery
}

func newInflightTable() *inflightTable {
	return &inflightTable{entries: make(map[uint16]*sentQuery)}
}

// insert records q under id. Called before the message is written to the
// transport, guaranteeing registration happens before bytes go out
// (spec.md §5 ordering guarantee).
func (t *inflightTable) insert(id uint16, q *sentQuery) {
	t.mu.Lock()
	t.entries[id] = q
	t.mu.Unlock()
}

// take removes and returns the entry for id, or nil if none exists (an
// unknown transaction — spec.md §7, benign and dropped by the caller).
func (t *inflightTable) take(id uint16) *sentQuery {
	t.mu.Lock()
	defer t.mu.Unlock()
	q, ok := t.entries[id]
	if !ok {
		return nil
	}
	delete(t.entries, id)
	return q
}

// drain removes every entry and resolves each with err, used by
// cancelQueries and by transport-failure teardown (spec.md §4.4).
func (t *inflightTable) drain(err error) {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[uint16]*sentQuery)
	t.mu.Unlock()

	for _, q := range entries {
		if q.timer != nil {
			q.timer.Stop()
		}
		q.complete(outcome{err: err})
	}
}

// len reports how many queries are currently pending; used by tests and
// Client.Pending.
func (t *inflightTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
