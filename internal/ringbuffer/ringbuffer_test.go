package ringbuffer

import (
	"reflect"
	"testing"
	"time"
)

func TestWrapAround(t *testing.T) {
	// spec.md §8 scenario 6.
	rb := New[byte](8)

	n := rb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if n != 8 {
		t.Fatalf("initial fill wrote %d, want 8", n)
	}

	buf := make([]byte, 4)
	if got := rb.Read(buf); got != 4 {
		t.Fatalf("first read returned %d, want 4", got)
	}

	if n := rb.Write([]byte{9, 10, 11, 12}); n != 4 {
		t.Fatalf("second write wrote %d, want 4", n)
	}

	out := make([]byte, 8)
	if got := rb.Read(out); got != 8 {
		t.Fatalf("final read returned %d, want 8", got)
	}

	want := []byte{5, 6, 7, 8, 9, 10, 11, 12}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("final read = %v, want %v", out, want)
	}
}

func TestClose_UnblocksReaderWithShortCount(t *testing.T) {
	rb := New[byte](4)
	done := make(chan int, 1)

	go func() {
		buf := make([]byte, 10)
		done <- rb.Read(buf)
	}()

	time.Sleep(10 * time.Millisecond)
	rb.Close()

	select {
	case n := <-done:
		if n != 0 {
			t.Fatalf("Read after Close returned %d, want 0", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after Close")
	}
}

func TestNoDuplicationOrReorder(t *testing.T) {
	rb := New[byte](16)
	input := make([]byte, 1000)
	for i := range input {
		input[i] = byte(i)
	}

	output := make([]byte, 0, len(input))
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 7)
		for len(output) < len(input) {
			n := rb.Read(buf)
			if n == 0 {
				return
			}
			output = append(output, buf[:n]...)
		}
	}()

	written := 0
	for written < len(input) {
		chunk := input[written:]
		if len(chunk) > 5 {
			chunk = chunk[:5]
		}
		written += rb.Write(chunk)
	}
	rb.Close()
	<-done

	if !reflect.DeepEqual(output, input) {
		t.Fatalf("SPSC stream corrupted: got %d bytes, want %d matching input", len(output), len(input))
	}
}
