package shutdown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanUp_RunsCallback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	called := false
	cleanUp(ctx, func(context.Context) { called = true })

	assert.True(t, called)
}

func TestCleanUp_StopsWaitingAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	cleanUp(ctx, func(context.Context) { <-release })

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestCleanUp_NilCallback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cleanUp(ctx, nil)
	assert.NoError(t, ctx.Err())
}
