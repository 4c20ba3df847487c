package sched

import "testing"

func TestRoundRobinQueuesPopBestDrainsHighestFirst(t *testing.T) {
	var q RoundRobinQueues

	low := NewThread(1, Low, 0, 0)
	high := NewThread(2, High, 0, 0)
	normal := NewThread(3, Normal, 0, 0)

	q.Append(low)
	q.Append(high)
	q.Append(normal)

	order := []*Thread{}
	for {
		t, ok := q.PopBest()
		if !ok {
			break
		}
		order = append(order, t)
	}

	if len(order) != 3 || order[0] != high || order[1] != normal || order[2] != low {
		t.Fatalf("expected high, normal, low order; got %v", order)
	}
}

func TestShouldSwitch(t *testing.T) {
	mk := func(p Priority) *Thread { return NewThread(0, p, 0, 0) }

	specs := []struct {
		name              string
		current, candidate Priority
		reason            Reason
		exp               bool
	}{
		{"higher candidate always switches", Normal, High, WakeUp, true},
		{"lower candidate never switches", High, Normal, Preempt, false},
		{"equal priority preempt rotates", Normal, Normal, Preempt, true},
		{"equal priority yield rotates", Normal, Normal, Yield, true},
		{"equal priority wakeup does not rotate", Normal, Normal, WakeUp, false},
		{"idle current never rotates at equal priority", Idle, Idle, Preempt, false},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			current := mk(spec.current)
			candidate := mk(spec.candidate)
			if got := ShouldSwitch(current, candidate, spec.reason); got != spec.exp {
				t.Errorf("expected %t; got %t", spec.exp, got)
			}
		})
	}
}
