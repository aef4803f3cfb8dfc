package testkit

import (
	"testing"
	"time"
)

var clock = func() string { return "real" }

func TestSwap_RestoresAfterTest(t *testing.T) {
	t.Run("inner", func(t *testing.T) {
		Swap(t, &clock, func() string { return "fake" })
		if clock() != "fake" {
			t.Fatal("not swapped")
		}
	})
	if clock() != "real" {
		t.Fatal("not restored")
	}
}

func TestPanics(t *testing.T) {
	if !panics(func() { panic("x") }) {
		t.Fatal("panic not detected")
	}
	if panics(func() {}) {
		t.Fatal("false positive")
	}
	MustPanic(t, func() { panic("boom") })
	MustContain(t, "bulk run finished", "run fin")
}

func TestSerial_Excludes(t *testing.T) {
	held := make(chan struct{})
	done := make(chan struct{})
	t.Run("holder", func(t *testing.T) {
		Serial(t)
		go func() {
			close(held)
			seams.Lock()
			seams.Unlock()
			close(done)
		}()
		<-held
		select {
		case <-done:
			t.Fatal("lock not held during the test")
		case <-time.After(20 * time.Millisecond):
		}
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock not released after the test")
	}
}
