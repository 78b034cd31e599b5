package core

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestRunParallel_KeepsInputOrder(t *testing.T) {
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}
	for _, workers := range []int{0, 1, 3, 200} {
		var calls atomic.Int64
		outputs, err := RunParallel(inputs, workers, func(n int) int {
			calls.Add(1)
			return n * n
		})
		if err != nil {
			t.Fatalf("%d workers: unexpected error %v", workers, err)
		}
		if calls.Load() != int64(len(inputs)) {
			t.Errorf("%d workers: ran %d tasks, want %d", workers, calls.Load(), len(inputs))
		}
		for i, got := range outputs {
			if got != i*i {
				t.Fatalf("%d workers: output %d = %d, want %d", workers, i, got, i*i)
			}
		}
	}
}

func TestRunParallel_Empty(t *testing.T) {
	outputs, err := RunParallel(nil, 4, func(n int) int { return n })
	if err != nil || outputs != nil {
		t.Errorf("Expected no outputs and no error, got %v, %v", outputs, err)
	}
}

func TestRunParallel_PanicBecomesError(t *testing.T) {
	inputs := []int{0, 1, 2, 3, 4, 5}
	outputs, err := RunParallel(inputs, 3, func(n int) int {
		if n == 2 || n == 4 {
			panic("bad input")
		}
		return n
	})
	if err == nil {
		t.Fatal("Expected an error from the panicking tasks")
	}
	if outputs != nil {
		t.Errorf("Expected no outputs on failure, got %v", outputs)
	}
	// The lowest failing task is reported whichever worker finished first
	if !strings.Contains(err.Error(), "task 2:") || !strings.Contains(err.Error(), "bad input") {
		t.Errorf("Unexpected error %q", err)
	}
}

func TestWorkerPool_SubmitAndCollect(t *testing.T) {
	pool := NewWorkerPool(func(s string) int { return len(s) }, 3, 2)
	if pool.GetNumWorkers() != 2 {
		t.Errorf("Expected 2 workers, got %d", pool.GetNumWorkers())
	}
	pool.Start()
	for id, s := range []string{"a", "bb", "ccc"} {
		pool.SubmitTask(Task[string]{ID: id, Input: s})
	}
	got := make(map[int]int)
	for i := 0; i < 3; i++ {
		result, ok := pool.GetResult()
		if !ok || result.Error != nil {
			t.Fatalf("Unexpected result %+v, ok %v", result, ok)
		}
		got[result.ID] = result.Output
	}
	pool.Stop()
	for id, want := range map[int]int{0: 1, 1: 2, 2: 3} {
		if got[id] != want {
			t.Errorf("Task %d: got %d, want %d", id, got[id], want)
		}
	}
	if _, ok := pool.GetResult(); ok {
		t.Error("Expected the result queue to be closed after Stop")
	}
}
