package dynamo

import (
	"sync/atomic"
	"testing"
)

func TestParallelFor_CoversRangeOnce(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		workers  int
		minChunk int
	}{
		{"sequential", 10, 1, 1},
		{"small n", 3, 8, 4},
		{"even split", 100, 4, 1},
		{"uneven split", 101, 4, 8},
		{"more workers than items", 5, 16, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			ParallelFor(tt.n, tt.workers, tt.minChunk, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestParallelFor_Empty(t *testing.T) {
	called := false
	ParallelFor(0, 4, 1, func(start, end int) { called = true })
	if called {
		t.Error("fn should not run for an empty range")
	}
}

func TestParallelFor_Barrier(t *testing.T) {
	n := 64
	stage1 := make([]int, n)
	stage2 := make([]int, n)

	ParallelFor(n, 4, 1, func(start, end int) {
		for i := start; i < end; i++ {
			stage1[i] = i
		}
	})
	ParallelFor(n, 4, 1, func(start, end int) {
		for i := start; i < end; i++ {
			// reads a value written by another chunk in the previous call
			stage2[i] = stage1[n-1-i]
		}
	})

	for i := range stage2 {
		if stage2[i] != n-1-i {
			t.Fatalf("stage2[%d] = %d, want %d", i, stage2[i], n-1-i)
		}
	}
}
