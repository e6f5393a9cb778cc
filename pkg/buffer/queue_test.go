package buffer

import (
	"errors"
	"io"
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](2)
	for i := 1; i <= 5; i++ {
		if err := q.Add(i); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}
	q.CloseWrite()

	for want := 1; want <= 5; want++ {
		got, err := q.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
	if _, err := q.Next(); !errors.Is(err, ErrIteratorDone) {
		t.Fatalf("Next after drain = %v, want ErrIteratorDone", err)
	}
}

func TestQueue_AddAfterCloseWrite(t *testing.T) {
	q := NewQueue[string](0)
	q.CloseWrite()
	if err := q.Add("x"); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("Add after CloseWrite = %v, want ErrClosedPipe", err)
	}
	// Idempotent
	if err := q.CloseWrite(); err != nil {
		t.Fatalf("second CloseWrite: %v", err)
	}
}

func TestQueue_NextBlocksUntilAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := NewQueue[string](0)
		go func() {
			time.Sleep(time.Second)
			q.Add("late")
		}()
		start := time.Now()
		got, err := q.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != "late" {
			t.Errorf("Next() = %q", got)
		}
		if d := time.Since(start); d != time.Second {
			t.Errorf("blocked %v, want 1s", d)
		}
	})
}

func TestQueue_CloseWithErrorUnblocks(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := NewQueue[int](0)
		boom := errors.New("boom")
		errc := make(chan error, 1)
		go func() {
			_, err := q.Next()
			errc <- err
		}()
		synctest.Wait()
		q.CloseWithError(boom)
		if err := <-errc; !errors.Is(err, boom) {
			t.Fatalf("Next = %v, want boom", err)
		}
		if !errors.Is(q.Error(), boom) {
			t.Errorf("Error() = %v", q.Error())
		}
	})
}

func TestQueue_CloseWithErrorDropsItems(t *testing.T) {
	q := NewQueue[int](0)
	q.Add(1)
	q.Add(2)
	q.CloseWithError(nil)
	if q.Len() != 0 {
		t.Errorf("Len() = %d after CloseWithError", q.Len())
	}
	if _, err := q.Next(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Next = %v, want ErrClosedPipe", err)
	}
}

func TestQueue_Reset(t *testing.T) {
	q := NewQueue[int](0)
	q.Add(1)
	q.Add(2)
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("Len() = %d after Reset", q.Len())
	}
	q.Add(3)
	q.CloseWrite()
	if got, _ := q.Next(); got != 3 {
		t.Errorf("Next() = %d, want 3", got)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int](0)
	const producers, each = 4, 100

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				if err := q.Add(p*each + i); err != nil {
					t.Errorf("Add: %v", err)
					return
				}
			}
		}()
	}

	seen := make(map[int]bool)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			v, err := q.Next()
			if err != nil {
				if !errors.Is(err, ErrIteratorDone) {
					t.Errorf("Next: %v", err)
				}
				return
			}
			seen[v] = true
		}
	}()

	wg.Wait()
	q.CloseWrite()
	<-done
	if len(seen) != producers*each {
		t.Errorf("received %d distinct items, want %d", len(seen), producers*each)
	}
}
