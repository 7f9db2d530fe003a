package queue

import (
	"context"

	"github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/entities"
)

// Task is the unit of queued work. It owns everything it needs; the queue
// knows nothing about transports or requests.
type Task func(ctx context.Context) (entities.CompressionResult, error)

type Result struct {
	Res entities.CompressionResult
	Err error
}

// Job pairs a task with its completion channel. Owned by the queue from
// Submit until the result is delivered.
type Job struct {
	task Task
	done chan Result
}
