package core

import (
	"fmt"
	"runtime"
	"sync"
)

// Task is a unit of work for a WorkerPool
type Task[T any] struct {
	ID    int // For deterministic ordering
	Input T
}

// TaskResult contains the output of one task
type TaskResult[R any] struct {
	ID     int
	Output R
	Error  error
}

// WorkerPool manages a fixed set of goroutines running one kind of task
type WorkerPool[T, R any] struct {
	taskQueue   chan Task[T]
	resultQueue chan TaskResult[R]
	workers     []*Worker[T, R]
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual tasks
type Worker[T, R any] struct {
	ID          int
	work        func(T) R
	taskQueue   chan Task[T]
	resultQueue chan TaskResult[R]
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Queues are sized for maxTasks so submission never blocks.
func NewWorkerPool[T, R any](work func(T) R, maxTasks, numWorkers int) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool[T, R]{
		taskQueue:   make(chan Task[T], maxTasks),
		resultQueue: make(chan TaskResult[R], maxTasks),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker[T, R]{
			ID:          i,
			work:        work,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool[T, R]) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool[T, R]) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a task to the worker pool
func (wp *WorkerPool[T, R]) SubmitTask(task Task[T]) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed task result
func (wp *WorkerPool[T, R]) GetResult() (TaskResult[R], bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool[T, R]) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker[T, R]) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.process(task)
	}
}

// process runs one task. A panic fails the task instead of the process.
func (w *Worker[T, R]) process(task Task[T]) (result TaskResult[R]) {
	result = TaskResult[R]{ID: task.ID}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("worker %d: task %d: %v", w.ID, task.ID, r)
		}
	}()
	result.Output = w.work(task.Input)
	return result
}

// RunParallel runs work over every input on at most numWorkers goroutines
// (0 means runtime.NumCPU()) and returns the outputs in input order. Every
// task finishes before it returns; the error is that of the first failed
// input.
func RunParallel[T, R any](inputs []T, numWorkers int, work func(T) R) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	pool := NewWorkerPool(work, len(inputs), min(numWorkers, len(inputs)))
	pool.Start()
	for id, input := range inputs {
		pool.SubmitTask(Task[T]{ID: id, Input: input})
	}

	outputs := make([]R, len(inputs))
	var firstErr error
	firstFailed := len(inputs)
	for range inputs {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil && result.ID < firstFailed {
			firstErr, firstFailed = result.Error, result.ID
		}
		outputs[result.ID] = result.Output
	}
	pool.Stop()
	if firstErr != nil {
		return nil, firstErr
	}
	return outputs, nil
}
