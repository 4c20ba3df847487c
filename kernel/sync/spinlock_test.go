package sync

import "testing"

func TestSpinlockTryAcquire(t *testing.T) {
	var l Spinlock

	if !l.TryAcquire() {
		t.Fatal("expected first TryAcquire to succeed")
	}

	if l.TryAcquire() {
		t.Fatal("expected second TryAcquire to fail while lock is held")
	}

	l.Release()

	if !l.TryAcquire() {
		t.Fatal("expected TryAcquire to succeed after Release")
	}
}

func TestSpinlockAcquireRelease(t *testing.T) {
	var l Spinlock

	acquired := make(chan struct{})
	go func() {
		l.Acquire()
		close(acquired)
	}()

	l.Acquire()
	select {
	case <-acquired:
		t.Fatal("second Acquire returned before Release")
	default:
	}
	l.Release()
	<-acquired
	l.Release()
}
