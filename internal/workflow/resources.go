package workflow

import "context"

// Resource kinds used in logs and teardown reports.
const (
	// KindDirectory marks a created directory tree.
	KindDirectory = "directory"
	// KindStack marks a started compose stack.
	KindStack = "stack"
	// KindServiceUnit marks an installed service-manager unit.
	KindServiceUnit = "service-unit"
)

// Resource is an opaque handle to something created during provisioning
// that rollback knows how to destroy. Resource-creating steps build the
// disposer at creation time; the engine only ever invokes it.
type Resource struct {
	// Kind labels the resource for logs and teardown reports.
	Kind string
	// Desc identifies the concrete resource (path, project, unit name).
	Desc string
	// Remedy is the manual command to remove the resource by hand,
	// reported when automated teardown fails.
	Remedy string

	teardown func(ctx context.Context) error
}

// NewResource builds a resource handle around a teardown disposer.
func NewResource(kind, desc, remedy string, teardown func(ctx context.Context) error) *Resource {
	return &Resource{
		Kind:     kind,
		Desc:     desc,
		Remedy:   remedy,
		teardown: teardown,
	}
}

// Teardown destroys the resource. It is invoked only during rollback.
func (r *Resource) Teardown(ctx context.Context) error {
	if r == nil || r.teardown == nil {
		return nil
	}
	return r.teardown(ctx)
}
