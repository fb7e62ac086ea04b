package actor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewAssignsID(t *testing.T) {
	a := New("worker", BehaviorSleep, Params{Duration: time.Second})
	if len(a.ID) != 26 {
		t.Errorf("ID length = %d, want 26", len(a.ID))
	}
	if a.Name != "worker" || a.Behavior != BehaviorSleep {
		t.Errorf("actor = %+v, want name worker behavior sleep", a)
	}
	if a.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
}

func TestSleepCompletes(t *testing.T) {
	a := New("s", BehaviorSleep, Params{Duration: 10 * time.Millisecond})
	start := time.Now()
	if err := Sleep(context.Background(), a); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Sleep returned after %v, want >= 10ms", elapsed)
	}
}

func TestSleepCancelled(t *testing.T) {
	a := New("s", BehaviorSleep, Params{Duration: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Sleep(ctx, a); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep error = %v, want context.Canceled", err)
	}
}

func TestFail(t *testing.T) {
	a := New("f", BehaviorFail, Params{})
	if err := Fail(context.Background(), a); !errors.Is(err, ErrBehaviorFailed) {
		t.Errorf("Fail error = %v, want ErrBehaviorFailed", err)
	}
}
