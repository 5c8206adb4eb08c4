package services

import (
	"context"
	"fmt"

	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

const (
	unassignedName = "WIP"
	imageSlots     = 4
)

// AttributesBuilder projects an issue onto the flat attribute set used by
// the print templates.
type AttributesBuilder struct {
	resolver ports.NameResolver
	fields   []models.CustomFieldMapping
}

func NewAttributesBuilder(resolver ports.NameResolver, fields []models.CustomFieldMapping) *AttributesBuilder {
	return &AttributesBuilder{
		resolver: resolver,
		fields:   fields,
	}
}

// Build returns the attributes in the order the templates list them.
// Resolver errors are returned as they are.
func (b *AttributesBuilder) Build(ctx context.Context, issue *models.Issue, other models.OtherAttributes,
	customFields map[string]models.CustomFieldValue, imageURLs []string) (*models.Attributes, error) {
	projectName, err := b.resolver.ProjectName(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}
	trackerName, err := b.resolver.TrackerName(ctx, issue.TrackerID)
	if err != nil {
		return nil, err
	}
	statusName, err := b.resolver.StatusName(ctx, issue.StatusID)
	if err != nil {
		return nil, err
	}
	priorityName, err := b.resolver.PriorityName(ctx, issue.PriorityID)
	if err != nil {
		return nil, err
	}
	authorName, err := b.resolver.UserName(ctx, issue.AuthorID)
	if err != nil {
		return nil, err
	}
	assignedToName, err := b.assignedToName(ctx, issue)
	if err != nil {
		return nil, err
	}

	attrs := models.NewAttributes()
	attrs.Set("id", issue.ID)
	attrs.Set("subject", issue.Subject)
	attrs.Set("project_id", issue.ProjectID)
	attrs.Set("project_name", projectName)
	attrs.Set("tracker_id", issue.TrackerID)
	attrs.Set("tracker_name", trackerName)
	attrs.Set("status_id", issue.StatusID)
	attrs.Set("status_name", statusName)
	attrs.Set("priority_id", issue.PriorityID)
	attrs.Set("priority_name", priorityName)
	attrs.Set("author_id", issue.AuthorID)
	attrs.Set("author_name", authorName)
	attrs.Set("assigned_to_id", nullable(issue.AssignedToID))
	attrs.Set("assigned_to_name", assignedToName)
	attrs.Set("description", issue.Description)
	attrs.Set("is_private", issue.IsPrivate)
	attrs.Set("start_date", nullable(issue.StartDate))
	attrs.Set("done_date", nullable(issue.ClosedOn))
	attrs.Set("estimated_hours", nullable(issue.EstimatedHours))
	attrs.Set("created_on", issue.CreatedOn)
	attrs.Set("updated_on", issue.UpdatedOn)
	attrs.Set("last_notes", valueOrEmpty(issue.LastNotes))
	attrs.Set("custom_text", other["custom_text"])

	for _, field := range b.fields {
		var value any = ""
		if cf, ok := customFields[field.FieldName]; ok {
			value = cf.Value
		}
		attrs.Set(field.AttributeName(), value)
	}

	for i := 0; i < imageSlots; i++ {
		url := ""
		if i < len(imageURLs) {
			url = imageURLs[i]
		}
		attrs.Set(fmt.Sprintf("image_url_%d", i+1), url)
	}

	return attrs, nil
}

// assignedToName resolves the author, not the assignee, whenever the issue
// is assigned. Print templates in use depend on this; do not change it
// without checking with the template owners.
func (b *AttributesBuilder) assignedToName(ctx context.Context, issue *models.Issue) (string, error) {
	if issue.AssignedToID == nil {
		return unassignedName, nil
	}
	return b.resolver.UserName(ctx, issue.AuthorID)
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
