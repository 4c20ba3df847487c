package sched

import "testing"

func TestSleepQueuesPopReady(t *testing.T) {
	sq := NewSleepQueues()

	a := NewThread(1, Normal, 0, 0)
	b := NewThread(2, Normal, 0, 0)
	sq.SleepUntil(a, 100, noHandle)
	sq.SleepUntil(b, 200, noHandle)

	if ready := sq.PopReady(50); len(ready) != 0 {
		t.Fatalf("expected nothing ready yet; got %v", ready)
	}

	ready := sq.PopReady(150)
	if len(ready) != 1 || ready[0] != a {
		t.Fatalf("expected only thread a ready at t=150; got %v", ready)
	}
	if a.State != Runnable {
		t.Fatalf("expected thread a to be marked runnable; got %v", a.State)
	}

	ready = sq.PopReady(250)
	if len(ready) != 1 || ready[0] != b {
		t.Fatalf("expected thread b ready at t=250; got %v", ready)
	}
}

func TestSleepQueuesEventWake(t *testing.T) {
	sq := NewSleepQueues()
	const handle SleepHandle = 42

	a := NewThread(1, Normal, 0, 0)
	b := NewThread(2, Normal, 0, 0)
	sq.WaitOnEvent(a, handle)
	sq.WaitOnEvent(b, handle)

	woken := sq.WakeEventSingle(handle)
	if woken != a {
		t.Fatalf("expected WakeEventSingle to wake thread a first; got %v", woken)
	}

	all := sq.WakeEventAll(handle)
	if len(all) != 1 || all[0] != b {
		t.Fatalf("expected WakeEventAll to wake remaining thread b; got %v", all)
	}
}

func TestSleepQueuesPopReadySkipsStaleEntry(t *testing.T) {
	sq := NewSleepQueues()
	const handle SleepHandle = 7

	a := NewThread(1, Normal, 0, 0)
	sq.SleepUntil(a, 100, handle)

	// a wakes through the event path first; its timer entry is now stale.
	if woken := sq.WakeEventSingle(handle); woken != a {
		t.Fatalf("expected WakeEventSingle to wake a; got %v", woken)
	}

	if ready := sq.PopReady(100); len(ready) != 0 {
		t.Fatalf("expected stale timer entry to be skipped; got %v", ready)
	}
}

func TestSleepQueuesWakeThread(t *testing.T) {
	sq := NewSleepQueues()

	a := NewThread(1, Normal, 0, 0)
	sq.WaitIndefinite(a)

	if woken := sq.WakeThread(a.ID); woken != a {
		t.Fatalf("expected WakeThread to return a; got %v", woken)
	}
	if a.State != Runnable {
		t.Fatalf("expected a to be runnable after WakeThread; got %v", a.State)
	}
	if woken := sq.WakeThread(a.ID); woken != nil {
		t.Fatalf("expected second WakeThread to find nothing; got %v", woken)
	}
}
