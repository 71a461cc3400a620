package workerpool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmit_WaitAll_RunsEveryTask(t *testing.T) {
	p := New(4, 8)
	defer p.StopAll()

	var count int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { atomic.AddInt64(&count, 1) })
	}
	p.WaitAll()

	if got := atomic.LoadInt64(&count); got != 100 {
		t.Fatalf("count = %d, want 100", got)
	}
}

func TestStopAll_ReturnsPromptly(t *testing.T) {
	p := New(2, 4)
	p.Submit(func() { time.Sleep(5 * time.Millisecond) })
	p.WaitAll()

	done := make(chan struct{})
	go func() {
		p.StopAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StopAll did not return")
	}
}
