package services

import (
	"context"
	"encoding/json"
	"maps"

	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

// AttachmentURLBuilder knows where the tracker serves attachment downloads.
type AttachmentURLBuilder interface {
	AttachmentURL(a models.Attachment) string
}

// PrintDocumentService turns one issue into the document posted to the
// print server. It keeps no state between calls.
type PrintDocumentService struct {
	builder  *AttributesBuilder
	composer *MapComposer
	urls     AttachmentURLBuilder
}

var _ ports.DocumentRenderer = (*PrintDocumentService)(nil)

func NewPrintDocumentService(resolver ports.NameResolver, urls AttachmentURLBuilder, fields []models.CustomFieldMapping) *PrintDocumentService {
	return &PrintDocumentService{
		builder:  NewAttributesBuilder(resolver, fields),
		composer: NewMapComposer(),
		urls:     urls,
	}
}

// BuildDocument collects the issue's custom fields and image attachments on
// top of the given ones and assembles the document. customFields and
// attachments are not modified.
func (s *PrintDocumentService) BuildDocument(ctx context.Context, issue *models.Issue, layout string, other models.OtherAttributes,
	customFields map[string]models.CustomFieldValue, attachments []string) (*models.Document, error) {
	fields := make(map[string]models.CustomFieldValue, len(customFields)+len(issue.CustomFields))
	maps.Copy(fields, customFields)
	for _, cf := range issue.CustomFields {
		fields[cf.Name] = cf
	}

	images := append([]string(nil), attachments...)
	for _, a := range issue.Attachments {
		if a.IsImage() {
			images = append(images, s.urls.AttachmentURL(a))
		}
	}

	attrs, err := s.builder.Build(ctx, issue, other, fields, images)
	if err != nil {
		return nil, err
	}

	if issue.Geodata != nil {
		attrs.Set("map", s.composer.Compose(issue.Geodata.Center, []models.GeoJSON{issue.Geodata.GeoJSON}))
	}

	return &models.Document{
		Layout:     layout,
		Attributes: attrs,
	}, nil
}

// Render builds the document and serializes it to JSON.
func (s *PrintDocumentService) Render(ctx context.Context, issue *models.Issue, layout string, other models.OtherAttributes,
	customFields map[string]models.CustomFieldValue, attachments []string) (string, error) {
	doc, err := s.BuildDocument(ctx, issue, layout, other, customFields, attachments)
	if err != nil {
		return "", err
	}

	logger.Debug(ctx, "assembled print document",
		"issue_id", issue.ID,
		"layout", layout,
		"attributes", doc.Attributes.Len(),
		"map", doc.Attributes.Has("map"))

	data, err := json.Marshal(doc)
	if err != nil {
		return "", domainErrors.ErrEncodeDocument.WithError(err).WithContext("issue_id", issue.ID)
	}

	logger.Debug(ctx, "print document", "json", string(data))

	return string(data), nil
}
