package tx

import "context"

// Manager wraps the boundary of a state-changing operation. Implementations
// run their own preparation (for example a pre-mutation snapshot) and only
// call fn when that preparation succeeded. description names the operation
// for audit trails.
type Manager interface {
	Within(ctx context.Context, description string, fn func(context.Context) error) error
}

type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
