package tensor

// Differentiation from parallel goroutines with per-goroutine trace
// stacks.

import (
	"sync"
	"testing"

	"github.com/mattjj/autodidact/ad"
)

func TestMTSafe(t *testing.T) {
	ad.MTSafeOn()

	var wg sync.WaitGroup
	got := make([]float64, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer ad.DropStack()
			x := float64(i)
			for rep := 0; rep < 10; rep++ {
				got[i] = ad.Grad(square, 0)(x).(float64)
			}
		}(i)
	}
	wg.Wait()

	for i, g := range got {
		if g != 2*float64(i) {
			t.Errorf("goroutine %d: got %v, want %v", i, g, 2*float64(i))
		}
	}

	// Nested differentiation still works per goroutine.
	var wg2 sync.WaitGroup
	second := make([]float64, 8)
	for i := range second {
		wg2.Add(1)
		go func(i int) {
			defer wg2.Done()
			defer ad.DropStack()
			second[i] = gradk(square, 2)(float64(i)).(float64)
		}(i)
	}
	wg2.Wait()
	for i, g := range second {
		if g != 2. {
			t.Errorf("goroutine %d: d2 got %v, want 2", i, g)
		}
	}
}
