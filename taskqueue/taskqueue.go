package taskqueue

import (
	"container/ring"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultCapacity = 4

var (
	ErrTaskQueue          = errors.New("task queue error")
	ErrTaskQueueCapacity  = fmt.Errorf("%w: capacity is exhausted", ErrTaskQueue)
	ErrTaskQueueUndefined = fmt.Errorf("%w: undefined subject", ErrTaskQueue)
)

// Subject names the task handler
type Subject string

// Task is a queued call of the subject handler.
// Result is set by the handler and valid once Done is closed.
type Task struct {
	Ctx     context.Context
	Args    []any
	Idx     uint64
	Subject Subject
	Queued  time.Time
	Result  any

	done chan error
}

// Done returns channel for handler error
func (task *Task) Done() <-chan error {
	return task.done
}

// Handler processes the task
type Handler func(*Task) error

// TaskQueue runs tasks one by one in push order
type TaskQueue struct {
	mu           sync.Mutex
	alarm        time.Duration
	alarmHandler Handler
	capacity     int
	debugger     func([]Task)
	handlers     map[Subject]Handler
	idx          uint64
	queue        chan *Task
	ring         *ring.Ring
}

// Option defines task queue option
type Option func(*TaskQueue)

// NewTaskQueue creates task queue and starts processing
func NewTaskQueue(opts ...Option) *TaskQueue {
	q := &TaskQueue{capacity: defaultCapacity}
	for _, optFn := range opts {
		optFn(q)
	}
	q.ring = ring.New(q.capacity)
	q.queue = make(chan *Task, q.capacity)
	go q.runQueue()
	return q
}

// PushAsync adds task into queue and returns immediately
func (q *TaskQueue) PushAsync(ctx context.Context, subj Subject, args ...any) (*Task, error) {
	if _, ok := q.handlers[subj]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrTaskQueueUndefined, subj)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	task := &Task{
		Ctx:     ctx,
		Args:    args,
		Idx:     q.idx + 1,
		Subject: subj,
		Queued:  time.Now(),
		done:    make(chan error, 1),
	}
	select {
	case q.queue <- task:
		q.idx = task.Idx
		/* keep recent tasks for debug */
		q.ring.Value = *task
		q.ring = q.ring.Next()
		return task, nil
	default:
		if q.debugger != nil {
			var lastTasks []Task
			q.ring.Do(func(p any) {
				if p != nil {
					lastTasks = append(lastTasks, p.(Task))
				}
			})
			q.debugger(lastTasks)
		}
		return nil, fmt.Errorf("%w: %v", ErrTaskQueueCapacity, q.capacity)
	}
}

// PushSync adds task into queue and waits for processing or context cancel
func (q *TaskQueue) PushSync(ctx context.Context, subj Subject, args ...any) (*Task, error) {
	task, err := q.PushAsync(ctx, subj, args...)
	if err != nil {
		return nil, err
	}
	select {
	case err := <-task.Done():
		return task, err
	case <-ctx.Done():
		return task, ctx.Err()
	}
}

func (q *TaskQueue) runQueue() {
	for task := range q.queue {
		if err := task.Ctx.Err(); err != nil {
			task.done <- err
			close(task.done)
			continue
		}
		var alarmTimer *time.Timer
		if q.alarm != 0 && q.alarmHandler != nil {
			alarmTimer = time.AfterFunc(q.alarm, func() {
				_ = q.alarmHandler(task)
			})
		}
		err := q.handlers[task.Subject](task)
		if alarmTimer != nil {
			alarmTimer.Stop()
		}
		task.done <- err
		close(task.done)
	}
}

// WithAlarm defines handler invoked if the task runs longer than d
func WithAlarm(d time.Duration, h Handler) Option {
	return func(q *TaskQueue) {
		q.alarm = d
		q.alarmHandler = h
	}
}

// WithCapacity defines how many tasks may wait
func WithCapacity(c int) Option {
	return func(q *TaskQueue) {
		if c > 0 {
			q.capacity = c
		}
	}
}

// WithHandlers defines tasks
func WithHandlers(m map[Subject]Handler) Option {
	return func(q *TaskQueue) {
		q.handlers = m
	}
}

// WithDebugger defines func receiving recent tasks when capacity is exhausted
func WithDebugger(fn func([]Task)) Option {
	return func(q *TaskQueue) {
		q.debugger = fn
	}
}
