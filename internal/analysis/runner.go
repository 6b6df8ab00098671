// Package analysis runs long-running document analyses off the editing
// goroutine.
//
// A Task reads an immutable buffer.Snapshot and never touches the live
// buffer. The Runner executes each submitted task on its own goroutine and
// delivers a Result message on a channel that the editing goroutine drains
// and applies. Submitting a task while another task with the same name is
// still running cancels the older one through its context; its result is
// dropped.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/dshills/quire/internal/engine/buffer"
)

// DefaultResultBuffer is the capacity of the result channel.
const DefaultResultBuffer = 16

// ErrClosed is returned when submitting to a closed Runner.
var ErrClosed = errors.New("analysis runner closed")

// Task is one kind of analysis.
type Task interface {
	// Name identifies the task. A newer submission supersedes an
	// in-flight one with the same name.
	Name() string
	// Run analyzes snap. It should return promptly with ctx.Err() once
	// ctx is canceled.
	Run(ctx context.Context, snap *buffer.Snapshot) (Report, error)
}

// Report is the outcome of a task.
type Report interface {
	// JSON encodes the report.
	JSON() ([]byte, error)
}

// Result is the message delivered for a finished task. It is never
// modified after delivery.
type Result struct {
	ID       string // unique per submission
	Task     string
	Revision uint64 // buffer revision the snapshot was taken at
	Report   Report
	Err      error
	Started  time.Time
	Finished time.Time
}

// Duration returns how long the task ran.
func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// JSON encodes the result envelope with the report embedded under
// "report".
func (r Result) JSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("id", r.ID)
	set("task", r.Task)
	set("revision", r.Revision)
	set("durationMs", r.Duration().Milliseconds())
	if r.Err != nil {
		set("error", r.Err.Error())
	}
	if r.Report != nil && err == nil {
		var report []byte
		if report, err = r.Report.JSON(); err == nil {
			out, err = sjson.SetRawBytes(out, "report", report)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encode result %s: %w", r.ID, err)
	}
	return out, nil
}

type job struct {
	id     string
	cancel context.CancelFunc
}

// Runner executes tasks in the background.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	results chan Result

	mu       sync.Mutex
	inflight map[string]*job
	closed   bool
	wg       sync.WaitGroup
}

// NewRunner creates a runner whose result channel holds up to size
// undelivered results.
func NewRunner(size int) *Runner {
	if size <= 0 {
		size = DefaultResultBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan Result, size),
		inflight: make(map[string]*job),
	}
}

// Results returns the channel results are delivered on. It is closed by
// Close.
func (r *Runner) Results() <-chan Result {
	return r.results
}

// Submit starts task over snap and returns the submission ID.
func (r *Runner) Submit(task Task, snap *buffer.Snapshot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}

	name := task.Name()
	if prev, ok := r.inflight[name]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	j := &job{id: uuid.NewString(), cancel: cancel}
	r.inflight[name] = j

	r.wg.Add(1)
	go r.run(ctx, j, task, snap)
	return j.id, nil
}

func (r *Runner) run(ctx context.Context, j *job, task Task, snap *buffer.Snapshot) {
	defer r.wg.Done()
	defer j.cancel()

	res := Result{ID: j.id, Task: task.Name(), Revision: snap.Revision(), Started: time.Now()}
	report, err := runSafely(ctx, task, snap)
	res.Finished = time.Now()
	res.Report = report
	res.Err = err

	r.mu.Lock()
	current := r.inflight[res.Task] == j
	if current {
		delete(r.inflight, res.Task)
	}
	r.mu.Unlock()
	if !current || ctx.Err() != nil {
		return
	}

	select {
	case r.results <- res:
	case <-ctx.Done():
	}
}

// runSafely runs task, converting a panic into an error.
func runSafely(ctx context.Context, task Task, snap *buffer.Snapshot) (report Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name(), p)
		}
	}()
	return task.Run(ctx, snap)
}

// Cancel stops the in-flight task with the given name, if any.
func (r *Runner) Cancel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.inflight[name]; ok {
		j.cancel()
		delete(r.inflight, name)
	}
}

// Running returns the number of tasks in flight.
func (r *Runner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Close cancels every in-flight task, waits for them to return and closes
// the result channel. Results already buffered stay readable.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	close(r.results)
}
