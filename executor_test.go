package speechactivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoExecutor(t *testing.T) {
	done := make(chan struct{})

	require.NoError(t, GoExecutor{}.Execute(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task not executed")
	}
}

func TestBoundedExecutor(t *testing.T) {
	executor := NewBoundedExecutor(1)
	release := make(chan struct{})
	finished := make(chan struct{})

	require.NoError(t, executor.Execute(func() {
		<-release
		close(finished)
	}))
	assert.ErrorIs(t, executor.Execute(func() {}), ErrExecutorSaturated)

	close(release)
	<-finished

	assert.Eventually(t, func() bool {
		return executor.Execute(func() {}) == nil
	}, time.Second, 5*time.Millisecond)
}
