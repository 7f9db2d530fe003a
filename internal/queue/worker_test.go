package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
)

func TestSubmitDeliversResult(t *testing.T) {
	q := New(context.Background(), 10, zerolog.Nop())
	defer q.Close()

	done, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		return entities.CompressionResult{Bytes: []byte("ok")}, nil
	})
	require.NoError(t, err)

	res := <-done
	require.NoError(t, res.Err)
	require.Equal(t, []byte("ok"), res.Res.Bytes)
}

func TestSubmitFailsImmediatelyWhenFull(t *testing.T) {
	q := New(context.Background(), 10, zerolog.Nop())
	defer q.Close()

	// Occupy the worker so nothing drains.
	block := make(chan struct{})
	var busy sync.WaitGroup
	busy.Add(1)
	_, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		busy.Done()
		<-block
		return entities.CompressionResult{}, nil
	})
	require.NoError(t, err)
	busy.Wait()

	// Fill all 10 slots behind the running job.
	for i := 0; i < 10; i++ {
		_, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
			return entities.CompressionResult{}, nil
		})
		require.NoError(t, err)
	}

	start := time.Now()
	_, err = q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		return entities.CompressionResult{}, nil
	})
	require.ErrorIs(t, err, ErrQueueFull)
	require.Less(t, time.Since(start), 100*time.Millisecond)

	close(block)
}

func TestJobsRunInSubmissionOrder(t *testing.T) {
	q := New(context.Background(), 10, zerolog.Nop())

	var mu sync.Mutex
	var order []int
	var chans []<-chan Result

	for i := 0; i < 5; i++ {
		i := i
		done, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return entities.CompressionResult{}, nil
		})
		require.NoError(t, err)
		chans = append(chans, done)
	}
	for _, done := range chans {
		<-done
	}
	q.Close()

	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSubmitAfterCloseFailsWithoutPanic(t *testing.T) {
	q := New(context.Background(), 10, zerolog.Nop())
	q.Close()

	_, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		return entities.CompressionResult{}, nil
	})
	require.ErrorIs(t, err, ErrQueueClosed)

	// Close is idempotent.
	q.Close()
}

func TestQueueContinuesAfterTaskFailure(t *testing.T) {
	q := New(context.Background(), 10, zerolog.Nop())
	defer q.Close()

	boom := errors.New("boom")
	d1, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		return entities.CompressionResult{}, boom
	})
	require.NoError(t, err)

	d2, err := q.Submit(func(ctx context.Context) (entities.CompressionResult, error) {
		return entities.CompressionResult{Bytes: []byte("after")}, nil
	})
	require.NoError(t, err)

	require.ErrorIs(t, (<-d1).Err, boom)

	res := <-d2
	require.NoError(t, res.Err)
	require.Equal(t, []byte("after"), res.Res.Bytes)
}
