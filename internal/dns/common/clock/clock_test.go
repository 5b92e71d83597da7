package clock

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) {
		t.Errorf("Clock time %v is before measurement time %v", now, before)
	}
	if now.After(after) {
		t.Errorf("Clock time %v is after measurement time %v", now, after)
	}
}

func TestMockClock_FixedWithoutStep(t *testing.T) {
	fixedTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: fixedTime}

	for i := 0; i < 3; i++ {
		if got := clock.Now(); !got.Equal(fixedTime) {
			t.Fatalf("call %d: expected %v, got %v", i, fixedTime, got)
		}
	}
}

func TestMockClock_Step(t *testing.T) {
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: start, Step: 25 * time.Millisecond}

	first := clock.Now()
	second := clock.Now()
	if d := second.Sub(first); d != 25*time.Millisecond {
		t.Errorf("expected 25ms between reads, got %v", d)
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: start}

	clock.Advance(2 * time.Hour)
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockInterface(t *testing.T) {
	var _ Clock = RealClock{}
	var _ Clock = &MockClock{}
}
