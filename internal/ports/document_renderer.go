package ports

import (
	"context"

	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
)

type DocumentRenderer interface {
	BuildDocument(ctx context.Context, issue *models.Issue, layout string, other models.OtherAttributes,
		customFields map[string]models.CustomFieldValue, attachments []string) (*models.Document, error)
	Render(ctx context.Context, issue *models.Issue, layout string, other models.OtherAttributes,
		customFields map[string]models.CustomFieldValue, attachments []string) (string, error)
}
