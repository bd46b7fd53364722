//go:build unix

package cmd

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleasableSignalContext_CancelsOnSignal(t *testing.T) {
	ctx, cancel, _ := releasableSignalContext()
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}
}

func TestReleasableSignalContext_ReleaseKeepsContext(t *testing.T) {
	ctx, cancel, release := releasableSignalContext()
	defer cancel()

	release()
	release()
	assert.NoError(t, ctx.Err())

	cancel()
	assert.Error(t, ctx.Err())
}
