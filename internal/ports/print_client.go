package ports

import (
	"context"
	"io"

	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
)

type PrintClient interface {
	CreateReport(ctx context.Context, doc *models.Document) (*models.PrintJob, error)
	ReportStatus(ctx context.Context, ref string) (*models.PrintStatus, error)
	// WaitForReport blocks until the job is finished or has failed.
	WaitForReport(ctx context.Context, ref string) (*models.PrintStatus, error)
	DownloadReport(ctx context.Context, ref string, w io.Writer) error
}
