package bounded_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cverve/internal/bounded"
)

func TestRun_ReturnsResult(t *testing.T) {
	v, err := bounded.Run(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRun_PropagatesError(t *testing.T) {
	boom := errors.New("boom")

	_, err := bounded.Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, bounded.IsTimeout(err))
}

func TestRun_UncooperativeOpTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := bounded.Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	assert.ErrorIs(t, err, bounded.ErrTimedOut)
	assert.True(t, bounded.IsTimeout(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_CooperativeOpDeadlineMapsToTimeout(t *testing.T) {
	_, err := bounded.Run(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.ErrorIs(t, err, bounded.ErrTimedOut)
}

func TestRun_InheritedDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := bounded.Run(ctx, 0, func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 1, nil
	})

	assert.ErrorIs(t, err, bounded.ErrTimedOut)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bounded.Run(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, errors.New("stopped")
	})

	assert.Error(t, err)
	assert.False(t, errors.Is(err, bounded.ErrTimedOut))
}

func TestRun_RecoversPanic(t *testing.T) {
	_, err := bounded.Run(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		panic("library bug")
	})

	assert.ErrorContains(t, err, "library bug")
}
