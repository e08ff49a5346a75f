package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsEveryTask(t *testing.T) {
	p := NewPool(4)
	var ran atomic.Int64
	for i := 0; i < 100; i++ {
		if err := p.Dispatch(func() { ran.Add(1) }); err != nil {
			t.Fatal(err)
		}
	}
	p.StopAndWait()
	if ran.Load() != 100 {
		t.Errorf("ran %d tasks, want 100", ran.Load())
	}
}

func TestDispatchAfterStop(t *testing.T) {
	p := NewPool(1)
	p.StopAndWait()
	if err := p.Dispatch(func() {}); err == nil {
		t.Error("Dispatch after StopAndWait = nil error, want error")
	}
}
