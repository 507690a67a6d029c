package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_SubmitRunsSerialized(t *testing.T) {
	l := New(Config{})
	defer l.Close()

	var counter int64
	var maxObserved int64
	const n = 50

	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			l.Submit(context.Background(), TaskFunc(func(context.Context) error {
				cur := atomic.AddInt64(&counter, 1)
				for {
					m := atomic.LoadInt64(&maxObserved)
					if cur <= m || atomic.CompareAndSwapInt64(&maxObserved, m, cur) {
						break
					}
				}
				atomic.AddInt64(&counter, -1)
				return nil
			}))
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	if maxObserved != 1 {
		t.Fatalf("expected at most one concurrent task execution, observed %d", maxObserved)
	}
}

func TestLoop_SubmitPropagatesTaskError(t *testing.T) {
	l := New(Config{})
	defer l.Close()

	boom := errBoom{}
	err := l.Submit(context.Background(), TaskFunc(func(context.Context) error {
		return boom
	}))
	if err != boom {
		t.Fatalf("expected task error, got %v", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func TestLoop_CloseRejectsFurtherSubmit(t *testing.T) {
	l := New(Config{})
	l.Close()

	err := l.Submit(context.Background(), TaskFunc(func(context.Context) error { return nil }))
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLoop_AfterFuncRunsOnLoop(t *testing.T) {
	l := New(Config{})
	defer l.Close()

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("AfterFunc callback did not fire")
	}
}

func TestLoop_PanicRecovered(t *testing.T) {
	var recovered interface{}
	l := New(Config{PanicHandler: func(r interface{}) { recovered = r }})
	defer l.Close()

	err := l.Submit(context.Background(), TaskFunc(func(context.Context) error {
		panic("kaboom")
	}))
	if err == nil {
		t.Fatal("expected an error from a panicking task")
	}
	if recovered != "kaboom" {
		t.Fatalf("expected panic handler to observe %q, got %v", "kaboom", recovered)
	}
}
