package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMailbox_LastWriterWins(t *testing.T) {
	m := New[int]()

	if replaced := m.Put(1); replaced {
		t.Error("first Put should not replace anything")
	}
	if replaced := m.Put(2); !replaced {
		t.Error("second Put should replace the pending value")
	}

	v, ok := m.TryTake()
	if !ok || v != 2 {
		t.Fatalf("TryTake = (%d, %v), want (2, true)", v, ok)
	}
	if _, ok := m.TryTake(); ok {
		t.Error("mailbox should be empty after TryTake")
	}
	if m.Drops() != 1 {
		t.Errorf("Drops = %d, want 1", m.Drops())
	}
}

func TestMailbox_TakeBlocksUntilPut(t *testing.T) {
	m := New[string]()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Put("hello")
	}()

	v, err := m.Take(ctx)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if v != "hello" {
		t.Errorf("Take = %q, want hello", v)
	}
}

func TestMailbox_TakeHonoursContext(t *testing.T) {
	m := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Take(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Take error = %v, want deadline exceeded", err)
	}
}

func TestMailbox_ConcurrentPutsNeverBlock(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Put(base*1000 + j)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producers blocked")
	}

	if !m.Pending() {
		t.Error("expected a pending value after puts")
	}
}
