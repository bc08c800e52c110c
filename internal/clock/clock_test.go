package clock

import (
	"testing"
	"time"
)

func TestFakeClockNowAndAdvance(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now = %v, want %v", c.Now(), start)
	}

	c.Advance(3 * time.Second)
	if got := c.Now().Sub(start); got != 3*time.Second {
		t.Errorf("advanced by %v, want 3s", got)
	}
}

func TestFakeClockAfterFuncFiresOnAdvance(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	fired := 0
	c.AfterFunc(time.Second, func() { fired++ })

	c.Advance(500 * time.Millisecond)
	if fired != 0 {
		t.Fatal("timer fired before its deadline")
	}

	c.Advance(500 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// A fired timer never fires again.
	c.Advance(10 * time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d after extra advance, want 1", fired)
	}
}

func TestFakeClockStop(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop should report true for a pending timer")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if timer.Stop() {
		t.Error("Stop should report false the second time")
	}
}

func TestFakeClockFiresInDeadlineOrder(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	var order []int
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })

	c.Advance(5 * time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("fire order = %v, want [1 2]", order)
	}
}

func TestFakeClockCallbackMayReschedule(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	// Both the original and rescheduled timer fall within the window.
	c.Advance(2 * time.Second)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRealClockAfterFunc(t *testing.T) {
	c := &RealClock{}
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
