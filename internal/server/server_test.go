package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIssuePrinter struct {
	mock.Mock
}

func (m *MockIssuePrinter) RenderIssue(ctx context.Context, issueID int, opts services.PrintOptions) (string, error) {
	args := m.Called(ctx, issueID, opts)
	return args.String(0), args.Error(1)
}

func (m *MockIssuePrinter) SubmitIssue(ctx context.Context, issueID int, opts services.PrintOptions) (*models.PrintJob, error) {
	args := m.Called(ctx, issueID, opts)
	job, _ := args.Get(0).(*models.PrintJob)
	return job, args.Error(1)
}

func serve(t *testing.T, printer *MockIssuePrinter, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(printer).Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Render(t *testing.T) {
	t.Run("should return the document", func(t *testing.T) {
		printer := new(MockIssuePrinter)
		printer.On("RenderIssue", mock.Anything, 42, services.PrintOptions{Layout: "A3"}).
			Return(`{"layout":"A3","attributes":{}}`, nil)

		rec := serve(t, printer, httptest.NewRequest(http.MethodGet, "/issues/42/print.json?layout=A3", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"layout":"A3","attributes":{}}`, rec.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		printer.AssertExpectations(t)
	})

	t.Run("should pass custom text only when given", func(t *testing.T) {
		printer := new(MockIssuePrinter)
		printer.On("RenderIssue", mock.Anything, 7, mock.MatchedBy(func(opts services.PrintOptions) bool {
			return opts.CustomText != nil && *opts.CustomText == ""
		})).Return(`{}`, nil)

		rec := serve(t, printer, httptest.NewRequest(http.MethodGet, "/issues/7/print.json?custom_text=", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		printer.AssertExpectations(t)
	})

	t.Run("should keep the caller's request id", func(t *testing.T) {
		printer := new(MockIssuePrinter)
		printer.On("RenderIssue", mock.Anything, 1, mock.Anything).Return(`{}`, nil)
		req := httptest.NewRequest(http.MethodGet, "/issues/1/print.json", nil)
		req.Header.Set(RequestIDHeader, "abc")

		rec := serve(t, printer, req)

		assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
	})

	t.Run("should reject bad ids", func(t *testing.T) {
		printer := new(MockIssuePrinter)

		rec := serve(t, printer, httptest.NewRequest(http.MethodGet, "/issues/abc/print.json", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		printer.AssertNotCalled(t, "RenderIssue", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServer_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domainErrors.ErrEntityNotFound.WithContext("entity", "issue"), http.StatusNotFound},
		{"tracker", domainErrors.ErrTrackerUnauthorized, http.StatusBadGateway},
		{"print server", domainErrors.ErrPrintRequest, http.StatusBadGateway},
		{"configuration", domainErrors.ErrPrintServerMissing, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer := new(MockIssuePrinter)
			printer.On("RenderIssue", mock.Anything, 3, mock.Anything).Return("", tt.err)

			rec := serve(t, printer, httptest.NewRequest(http.MethodGet, "/issues/3/print.json", nil))

			assert.Equal(t, tt.want, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServer_Submit(t *testing.T) {
	printer := new(MockIssuePrinter)
	printer.On("SubmitIssue", mock.Anything, 42, services.PrintOptions{}).
		Return(&models.PrintJob{Ref: "r1", StatusURL: "/print/status/r1.json"}, nil)

	rec := serve(t, printer, httptest.NewRequest(http.MethodPost, "/issues/42/print", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var job models.PrintJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "r1", job.Ref)
	printer.AssertExpectations(t)
}

func TestServer_Healthz(t *testing.T) {
	rec := serve(t, new(MockIssuePrinter), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_ListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(new(MockIssuePrinter)).ListenAndServe(ctx, "127.0.0.1:0")

	assert.NoError(t, err)
}
