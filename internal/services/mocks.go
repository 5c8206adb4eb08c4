package services

import (
	"context"
	"fmt"
	"io"

	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/stretchr/testify/mock"
)

type (
	MockNameResolver struct {
		mock.Mock
	}

	MockIssueSource struct {
		mock.Mock
	}

	MockPrintClient struct {
		mock.Mock
	}

	// StaticURLBuilder prefixes attachment ids and names with a fixed base.
	StaticURLBuilder struct {
		Base string
	}
)

func (m *MockNameResolver) ProjectName(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockNameResolver) TrackerName(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockNameResolver) StatusName(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockNameResolver) PriorityName(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockNameResolver) UserName(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (b StaticURLBuilder) AttachmentURL(a models.Attachment) string {
	return fmt.Sprintf("%s/attachments/download/%d/%s", b.Base, a.ID, a.Filename)
}

func (m *MockIssueSource) GetIssue(ctx context.Context, id int) (*models.Issue, error) {
	args := m.Called(ctx, id)
	issue, _ := args.Get(0).(*models.Issue)
	return issue, args.Error(1)
}

func (m *MockPrintClient) CreateReport(ctx context.Context, doc *models.Document) (*models.PrintJob, error) {
	args := m.Called(ctx, doc)
	job, _ := args.Get(0).(*models.PrintJob)
	return job, args.Error(1)
}

func (m *MockPrintClient) ReportStatus(ctx context.Context, ref string) (*models.PrintStatus, error) {
	args := m.Called(ctx, ref)
	status, _ := args.Get(0).(*models.PrintStatus)
	return status, args.Error(1)
}

func (m *MockPrintClient) WaitForReport(ctx context.Context, ref string) (*models.PrintStatus, error) {
	args := m.Called(ctx, ref)
	status, _ := args.Get(0).(*models.PrintStatus)
	return status, args.Error(1)
}

func (m *MockPrintClient) DownloadReport(ctx context.Context, ref string, w io.Writer) error {
	args := m.Called(ctx, ref, w)
	return args.Error(0)
}
