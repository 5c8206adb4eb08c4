package ports

import "context"

// NameResolver turns the identifiers stored on an issue into display names.
// Implementations report unknown identifiers as errors.
type NameResolver interface {
	ProjectName(ctx context.Context, id int) (string, error)
	TrackerName(ctx context.Context, id int) (string, error)
	StatusName(ctx context.Context, id int) (string, error)
	PriorityName(ctx context.Context, id int) (string, error)
	UserName(ctx context.Context, id int) (string, error)
}
