package ports

import (
	"context"

	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
)

type IssueSource interface {
	GetIssue(ctx context.Context, id int) (*models.Issue, error)
}

// IssueRepository is an issue source that can also resolve the names the
// issue refers to.
type IssueRepository interface {
	IssueSource
	NameResolver
}
