// Package workflow drives the ordered provisioning steps of a stack
// installation and tears down everything it created when a run fails
// or is interrupted.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// StepStatus represents the execution state of a single workflow step.
type StepStatus int

const (
	// StatusPending means the step has not started yet.
	StatusPending StepStatus = iota
	// StatusRunning means the step is currently executing.
	StatusRunning
	// StatusSucceeded means the step finished without error.
	StatusSucceeded
	// StatusFailed means the step returned an error.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s StepStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// RunState describes the lifecycle of a whole provisioning run.
type RunState int

const (
	// StateInit is the state before any step has run.
	StateInit RunState = iota
	// StateRunning means the step loop is in progress.
	StateRunning
	// StateCompleted means every step succeeded; no rollback will fire.
	StateCompleted
	// StateFailed means a step failed and rollback is due.
	StateFailed
	// StateInterrupted means the run was cancelled from outside.
	StateInterrupted
	// StateRollingBack means teardown of created resources is in progress.
	StateRollingBack
	// StateAborted is the terminal state after rollback finished.
	StateAborted
)

// String returns the lowercase name of the run state.
func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateInterrupted:
		return "interrupted"
	case StateRollingBack:
		return "rolling-back"
	case StateAborted:
		return "aborted"
	default:
		return "init"
	}
}

// Step is one named unit of the provisioning workflow, e.g. "install docker".
type Step struct {
	// Name identifies the step in logs and error messages.
	Name string
	// Run executes the step. It may read and mutate the session and must
	// register every resource it creates immediately after creation.
	Run func(ctx context.Context, s *Session) error
}

// StepRecord tracks the observed status of one step.
type StepRecord struct {
	// Name is the step name.
	Name string
	// Status is the last recorded status.
	Status StepStatus
}

// Session carries the mutable state of a single provisioning run.
// It is owned by one operator invocation; concurrent runs against the
// same work directory are not supported.
type Session struct {
	// WorkDir is the installation root. Created lazily by the first step
	// that needs it.
	WorkDir string
	// Values holds the configuration collected for the stack being installed.
	Values map[string]string

	logger *slog.Logger

	mu        sync.Mutex
	state     RunState
	steps     []StepRecord
	resources []*Resource
	completed bool

	rollbackOnce sync.Once
}

// NewSession constructs an empty session rooted at workDir.
func NewSession(workDir string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		WorkDir: workDir,
		Values:  make(map[string]string),
		logger:  logger,
		state:   StateInit,
	}
}

// Register appends a resource handle to the session. It must be called
// immediately after the resource is actually created: rollback relies on
// the registration order for symmetric teardown.
func (s *Session) Register(res *Resource) {
	if res == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, res)
	s.logger.Debug("resource registered", "kind", res.Kind, "resource", res.Desc)
}

// Resources returns a snapshot of the registered resource handles in
// creation order.
func (s *Session) Resources() []*Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// State returns the current run state.
func (s *Session) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Completed reports whether the final step succeeded. A completed session
// is never rolled back.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Steps returns a snapshot of the per-step records.
func (s *Session) Steps() []StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepRecord, len(s.steps))
	copy(out, s.steps)
	return out
}

func (s *Session) setState(state RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Session) recordStep(idx int, status StepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx >= 0 && idx < len(s.steps) {
		s.steps[idx].Status = status
	}
}

// Runner executes an ordered list of steps against a session.
type Runner struct {
	session *Session
	logger  *slog.Logger
}

// NewRunner constructs a Runner bound to the given session.
func NewRunner(session *Session, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{session: session, logger: logger}
}

// Run executes the steps strictly in order. The first failure stops the
// loop and is returned as a *StepError; the caller is expected to invoke
// Rollback on the session afterwards. There are no automatic retries:
// these are one-shot infrastructure operations where a blind retry risks
// partial duplicate state.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	s := r.session

	s.mu.Lock()
	s.steps = make([]StepRecord, len(steps))
	for i, step := range steps {
		s.steps[i] = StepRecord{Name: step.Name, Status: StatusPending}
	}
	s.state = StateRunning
	s.mu.Unlock()

	start := time.Now()
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			s.recordStep(i, StatusFailed)
			s.setState(StateInterrupted)
			return &StepError{Step: step.Name, Err: ErrInterrupted}
		}

		r.logger.Info("step starting", "step", step.Name, "position", fmt.Sprintf("%d/%d", i+1, len(steps)))
		s.recordStep(i, StatusRunning)

		stepStart := time.Now()
		if err := step.Run(ctx, s); err != nil {
			s.recordStep(i, StatusFailed)
			if IsInterrupted(err) || ctx.Err() != nil {
				s.setState(StateInterrupted)
				return &StepError{Step: step.Name, Err: errors.Join(ErrInterrupted, err)}
			}
			s.setState(StateFailed)
			r.logger.Error("step failed", "step", step.Name, "error", err)
			return &StepError{Step: step.Name, Err: err}
		}

		s.recordStep(i, StatusSucceeded)
		r.logger.Info("step completed", "step", step.Name, "elapsed", time.Since(stepStart).Round(time.Millisecond))
	}

	s.mu.Lock()
	s.completed = true
	s.state = StateCompleted
	s.mu.Unlock()

	r.logger.Info("provisioning completed", "steps", len(steps), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
