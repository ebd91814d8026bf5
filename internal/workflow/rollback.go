package workflow

import "context"

// Failure describes a resource whose automated teardown did not complete.
type Failure struct {
	// Kind is the resource kind.
	Kind string
	// Desc identifies the resource.
	Desc string
	// Remedy is the exact manual command to remove the resource.
	Remedy string
	// Err is the teardown error.
	Err error
}

// Rollback tears down every registered resource in reverse order of
// creation. Teardown is best-effort: a failure on one resource is
// reported but does not stop teardown of the remaining ones, so the
// host ends up as clean as possible even under partial failure.
//
// Rollback fires at most once per session and never for a completed
// session; repeated calls and calls with no registered resources are
// no-ops beyond logging.
func (s *Session) Rollback(ctx context.Context) []Failure {
	var failures []Failure

	s.rollbackOnce.Do(func() {
		s.mu.Lock()
		if s.completed {
			s.mu.Unlock()
			s.logger.Debug("session completed, skipping rollback")
			return
		}
		s.state = StateRollingBack
		resources := make([]*Resource, len(s.resources))
		copy(resources, s.resources)
		s.mu.Unlock()

		if len(resources) == 0 {
			s.logger.Info("nothing to roll back")
		} else {
			s.logger.Warn("rolling back created resources", "count", len(resources))
		}

		for i := len(resources) - 1; i >= 0; i-- {
			res := resources[i]
			s.logger.Info("tearing down resource", "kind", res.Kind, "resource", res.Desc)
			if err := res.Teardown(ctx); err != nil {
				s.logger.Error("teardown failed", "kind", res.Kind, "resource", res.Desc, "error", err)
				failures = append(failures, Failure{
					Kind:   res.Kind,
					Desc:   res.Desc,
					Remedy: res.Remedy,
					Err:    err,
				})
			}
		}

		s.setState(StateAborted)
	})

	return failures
}
