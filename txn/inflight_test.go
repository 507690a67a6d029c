package txn

import "testing"

func TestInflightTable_InsertTake(t *testing.T) {
	tbl := newInflightTable()
	q := &sentQuery{sink: make(chan outcome, 1)}
	tbl.insert(1, q)

	if tbl.len() != 1 {
		t.Fatalf("expected 1 pending entry, got %d", tbl.len())
	}

	got := tbl.take(1)
	if got != q {
		t.Fatal("take did not return the inserted entry")
	}
	if tbl.take(1) != nil {
		t.Fatal("expected second take to return nil")
	}
}

func TestInflightTable_DrainResolvesEveryEntry(t *testing.T) {
	tbl := newInflightTable()
	sinks := make([]chan outcome, 3)
	for i := 0; i < 3; i++ {
		q := &sentQuery{sink: make(chan outcome, 1)}
		sinks[i] = q.sink
		tbl.insert(uint16(i), q)
	}

	tbl.drain(errTest{})

	for _, ch := range sinks {
		select {
		case o := <-ch:
			if o.err == nil {
				t.Fatal("expected drain to resolve with an error")
			}
		default:
			t.Fatal("expected every sink to receive an outcome after drain")
		}
	}
	if tbl.len() != 0 {
		t.Fatalf("expected table to be empty after drain, got %d", tbl.len())
	}
}

func TestSentQuery_CompleteIsIdempotent(t *testing.T) {
	q := &sentQuery{sink: make(chan outcome, 1)}
	q.complete(outcome{err: errTest{}})
	q.complete(outcome{err: errTest{}}) // must not block or panic

	<-q.sink
	select {
	case <-q.sink:
		t.Fatal("expected only one outcome to be delivered")
	default:
	}
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
