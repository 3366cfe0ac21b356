package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func() { fired.Add(1) })

	// A burst of triggers collapses into one callback
	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}

	// A later trigger fires again
	d.Trigger()
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 2 {
		t.Errorf("fired %d times, want 2", got)
	}
}

func TestOpenMissionAt(t *testing.T) {
	mc, err := openMissionAt(t.TempDir())
	if err != nil {
		t.Fatalf("openMissionAt: %v", err)
	}
	if mc.TaskDir() == "" {
		t.Error("task dir not resolved")
	}
}
