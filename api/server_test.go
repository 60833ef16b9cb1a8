package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorhq/noor/internal/log"
)

func TestServer_RunGracefulShutdown(t *testing.T) {
	s := NewServer(nil, nil, nil, log.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()

	// Give the listener a moment to bind before asking it to stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "graceful shutdown must not surface an error")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}
}

func TestServer_RunBadAddress(t *testing.T) {
	s := NewServer(nil, nil, nil, log.NewNop())

	err := s.Run(context.Background(), "256.256.256.256:0")
	assert.Error(t, err, "an unbindable address must fail Run")
}
