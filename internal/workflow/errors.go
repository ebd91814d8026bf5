package workflow

import (
	"context"
	"errors"
	"fmt"
)

// ErrInterrupted indicates that the run was cancelled by an external
// signal before it could complete.
var ErrInterrupted = errors.New("provisioning interrupted")

// StepError wraps a failure of a named workflow step.
type StepError struct {
	// Step is the name of the step that failed.
	Step string
	// Err is the underlying cause.
	Err error
}

func (e *StepError) Error() string {
	if e == nil {
		return "step failed"
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error { return e.Err }

// FailedStep extracts the failed step name from err, if any.
func FailedStep(err error) (string, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

// IsInterrupted reports whether err stems from an operator interruption
// or context cancellation rather than a genuine step failure.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled)
}

// PreconditionError indicates the host does not satisfy a requirement
// that is checked before anything is created, e.g. missing root
// privileges or an unsupported OS.
type PreconditionError struct {
	// Reason describes the failed requirement.
	Reason string
	// Remedy is the suggested operator action.
	Remedy string
}

func (e *PreconditionError) Error() string {
	if e == nil {
		return "precondition not met"
	}
	return e.Reason
}

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// InstallError indicates that a dependency could not be installed or
// still fails its existence probe after installation.
type InstallError struct {
	// Name is the package or command that failed to install.
	Name string
	// Err is the underlying cause, if any.
	Err error
}

func (e *InstallError) Error() string {
	if e == nil {
		return "dependency install failed"
	}
	if e.Err == nil {
		return fmt.Sprintf("install %s: command still missing after installation", e.Name)
	}
	return fmt.Sprintf("install %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InstallError) Unwrap() error { return e.Err }

// OrchestratorError indicates that the container orchestrator failed to
// start the stack or that the stack failed health verification.
type OrchestratorError struct {
	// Op is the orchestrator operation that failed (e.g. "up", "verify").
	Op string
	// Err is the underlying cause.
	Err error
	// LogsHint is the exact command the operator can run to inspect logs.
	LogsHint string
}

func (e *OrchestratorError) Error() string {
	if e == nil {
		return "orchestrator error"
	}
	return fmt.Sprintf("compose %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OrchestratorError) Unwrap() error { return e.Err }

// Remediation returns the follow-up command for err, so that a fatal
// error never leaves the operator without a next action.
func Remediation(err error) string {
	var pre *PreconditionError
	if errors.As(err, &pre) && pre.Remedy != "" {
		return pre.Remedy
	}
	var orch *OrchestratorError
	if errors.As(err, &orch) && orch.LogsHint != "" {
		return orch.LogsHint
	}
	return ""
}
