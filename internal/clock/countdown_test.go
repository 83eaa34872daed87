package clock

import "testing"

func TestCountdownExpiresOnce(t *testing.T) {
	var c Countdown
	c.Start(3)
	expiries := 0
	for i := 0; i < 10; i++ {
		if c.Tick() {
			expiries++
		}
		if c.Remaining() < 0 {
			t.Fatalf("remaining went negative: %d", c.Remaining())
		}
	}
	if expiries != 1 {
		t.Fatalf("expected exactly one expiry, got %d", expiries)
	}
	if c.Remaining() != 0 || c.Elapsed() != 3 {
		t.Fatalf("unexpected remaining=%d elapsed=%d", c.Remaining(), c.Elapsed())
	}
	if !c.Expired() || c.Running() {
		t.Fatalf("expected expired and stopped")
	}
}

func TestCountdownCancelSuppressesExpiry(t *testing.T) {
	var c Countdown
	c.Start(2)
	c.Tick()
	c.Cancel()
	for i := 0; i < 5; i++ {
		if c.Tick() {
			t.Fatalf("expiry fired after cancel")
		}
	}
	if c.Remaining() != 1 {
		t.Fatalf("expected remaining 1, got %d", c.Remaining())
	}
	if c.Expired() {
		t.Fatalf("cancelled countdown must not be expired")
	}
}

func TestCountdownRestart(t *testing.T) {
	var c Countdown
	c.Start(1)
	if !c.Tick() {
		t.Fatalf("expected expiry")
	}
	c.Start(2)
	if c.Expired() || c.Remaining() != 2 {
		t.Fatalf("start must reset state")
	}
	c.Tick()
	if !c.Tick() {
		t.Fatalf("expected second expiry after restart")
	}
}

func TestCountdownStartPanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	var c Countdown
	c.Start(0)
}
