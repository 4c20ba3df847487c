package percpu

import "testing"

func TestFenceArriveIncrementsCount(t *testing.T) {
	defer func() { readyFenceAddFn = func(delta uint32) { readyFence += delta } }()

	readyFence = 0
	var calls uint32
	readyFenceAddFn = func(delta uint32) { calls += delta }

	FenceArrive()
	FenceArrive()

	if calls != 2 {
		t.Fatalf("expected FenceArrive to be observed twice; got %d", calls)
	}
}
