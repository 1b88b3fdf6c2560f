package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/purc-lang/purc/request"
	"github.com/purc-lang/purc/runloop"
)

func startedHeap(t *testing.T) (*Heap, func()) {
	t.Helper()
	loop := runloop.NewSingle()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	mgr := request.NewManager(loop, nil,
		func(uint64, uint64) bool { return true },
		func(uint64) bool { return true },
	)
	return NewHeap(loop, mgr, nil), cancel
}

func TestHeapSpawnAndTickCompletesLeafCoroutine(t *testing.T) {
	heap, cancel := startedHeap(t)
	defer cancel()

	co := heap.Spawn()
	ops := &leafOps{}
	co.Push(NewFrame(Normal, ops))

	heap.Run()

	assert.Equal(t, ops.pushed, 1)
	assert.True(t, co.IsDone())
}

func TestHeapRemovesExitedCoroutineWithoutWaits(t *testing.T) {
	heap, cancel := startedHeap(t)
	defer cancel()

	co := heap.Spawn()
	co.Push(NewFrame(Normal, &leafOps{}))
	heap.Run()

	assert.Equal(t, len(heap.Live()), 0)
}

func TestHeapSkipsWaitingCoroutine(t *testing.T) {
	heap, cancel := startedHeap(t)
	defer cancel()

	waiting := heap.Spawn()
	waiting.Push(NewFrame(Normal, &leafOps{}))
	waiting.State = Wait
	waiting.Waits = 1

	progressed := heap.Tick()
	assert.True(t, !progressed)
	assert.Equal(t, len(heap.Live()), 1)
}

func TestHeapWakeResumesParkedCoroutine(t *testing.T) {
	heap, cancel := startedHeap(t)
	defer cancel()

	co := heap.Spawn()
	co.Push(NewFrame(Normal, &leafOps{}))
	co.State = Wait
	co.Waits = 1

	heap.Wake(co)
	co.Waits = 0

	time.Sleep(20 * time.Millisecond)
	assert.True(t, co.IsDone() || co.State == Ready)
}
