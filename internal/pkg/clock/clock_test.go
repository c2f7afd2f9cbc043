package clock

import (
	"sync"
	"testing"
	"time"
)

func TestTimeClocker(t *testing.T) {
	before := time.Now()
	got := New().Now()
	if got.Before(before) {
		t.Fatalf("Now() = %s, before %s", got, before)
	}
}

func TestManual(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManual(start)

	if !m.Now().Equal(start) {
		t.Fatalf("Now() = %s, want %s", m.Now(), start)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Advance(time.Second)
		}()
	}
	wg.Wait()

	if want := start.Add(10 * time.Second); !m.Now().Equal(want) {
		t.Fatalf("Now() after Advance = %s, want %s", m.Now(), want)
	}

	m.Set(start)
	if !m.Now().Equal(start) {
		t.Fatalf("Now() after Set = %s, want %s", m.Now(), start)
	}
}
