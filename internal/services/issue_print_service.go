package services

import (
	"context"
	"io"

	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

// PrintOptions are the per-request inputs a user can pick when printing.
type PrintOptions struct {
	Layout     string
	CustomText *string
}

// IssuePrintService fetches an issue from its source and hands it to the
// renderer and, when asked, to the print server.
type IssuePrintService struct {
	source        ports.IssueSource
	renderer      ports.DocumentRenderer
	printer       ports.PrintClient
	defaultLayout string
}

// NewIssuePrintService wires the service. printer may be nil when only
// rendering is needed.
func NewIssuePrintService(source ports.IssueSource, renderer ports.DocumentRenderer, printer ports.PrintClient, defaultLayout string) *IssuePrintService {
	return &IssuePrintService{
		source:        source,
		renderer:      renderer,
		printer:       printer,
		defaultLayout: defaultLayout,
	}
}

func (s *IssuePrintService) layout(opts PrintOptions) string {
	if opts.Layout != "" {
		return opts.Layout
	}
	return s.defaultLayout
}

// otherAttributes always carries custom_text so it prints as null when the
// user gave none.
func otherAttributes(opts PrintOptions) models.OtherAttributes {
	other := models.OtherAttributes{"custom_text": nil}
	if opts.CustomText != nil {
		other["custom_text"] = *opts.CustomText
	}
	return other
}

// BuildIssueDocument loads the issue and assembles its print document.
func (s *IssuePrintService) BuildIssueDocument(ctx context.Context, issueID int, opts PrintOptions) (*models.Document, error) {
	issue, err := s.source.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	return s.renderer.BuildDocument(ctx, issue, s.layout(opts), otherAttributes(opts), nil, nil)
}

// RenderIssue loads the issue and returns its print document as JSON.
func (s *IssuePrintService) RenderIssue(ctx context.Context, issueID int, opts PrintOptions) (string, error) {
	issue, err := s.source.GetIssue(ctx, issueID)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(ctx, issue, s.layout(opts), otherAttributes(opts), nil, nil)
}

// SubmitIssue sends the issue's document to the print server without waiting
// for the report.
func (s *IssuePrintService) SubmitIssue(ctx context.Context, issueID int, opts PrintOptions) (*models.PrintJob, error) {
	if s.printer == nil {
		return nil, domainErrors.ErrPrintServerMissing
	}

	doc, err := s.BuildIssueDocument(ctx, issueID, opts)
	if err != nil {
		return nil, err
	}
	return s.printer.CreateReport(ctx, doc)
}

// PrintIssue submits the document, waits for the report and copies it to w.
func (s *IssuePrintService) PrintIssue(ctx context.Context, issueID int, opts PrintOptions, w io.Writer) (*models.PrintJob, error) {
	job, err := s.SubmitIssue(ctx, issueID, opts)
	if err != nil {
		return nil, err
	}

	status, err := s.printer.WaitForReport(ctx, job.Ref)
	if err != nil {
		return job, err
	}
	logger.Debug(ctx, "print job finished", "ref", job.Ref, "elapsed_ms", status.ElapsedTime)

	if err := s.printer.DownloadReport(ctx, job.Ref, w); err != nil {
		return job, err
	}
	return job, nil
}
