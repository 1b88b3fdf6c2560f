package runloop

import (
	"context"
	"testing"
	"time"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestSinglePostRunsOnOwner(t *testing.T) {
	rl := NewSingle()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	result := make(chan bool, 1)
	rl.Post(func() {
		result <- rl.IsCurrentThread()
	})

	select {
	case ok := <-result:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	cancel()
	<-done
}

func TestSingleAfterFuncFires(t *testing.T) {
	rl := NewSingle()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Run(ctx)

	fired := make(chan struct{})
	rl.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestSingleAfterFuncCancel(t *testing.T) {
	rl := NewSingle()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Run(ctx)

	fired := false
	cancelTimer := rl.AfterFunc(10*time.Millisecond, func() { fired = true })
	cancelTimer()
	time.Sleep(30 * time.Millisecond)
	assert.True(t, !fired)
}
