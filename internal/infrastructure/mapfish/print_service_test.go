package mapfish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument() *models.Document {
	attrs := models.NewAttributes()
	attrs.Set("id", 1)
	attrs.Set("subject", "leak")
	return &models.Document{Layout: "A4 portrait", Attributes: attrs}
}

func newTestService(t *testing.T, handler http.Handler) *PrintService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Print.BaseURL = server.URL + "/mapfish/"
	cfg.Print.App = "gtt"
	service, err := NewPrintService(cfg, server.Client())
	require.NoError(t, err)
	service.pollInterval = 5 * time.Millisecond
	return service
}

func TestNewPrintService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Print.BaseURL = ""

	_, err := NewPrintService(cfg, http.DefaultClient)

	assert.True(t, errors.Is(err, domainErrors.ErrPrintServerMissing))
}

func TestPrintService_CreateReport(t *testing.T) {
	t.Run("should post the document in order", func(t *testing.T) {
		var body []byte
		service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/mapfish/print/gtt/report.pdf", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"ref":"abc-123","statusURL":"/mapfish/print/status/abc-123.json","downloadURL":"/mapfish/print/report/abc-123"}`))
		}))

		job, err := service.CreateReport(context.Background(), newTestDocument())

		require.NoError(t, err)
		assert.Equal(t, &models.PrintJob{
			Ref:         "abc-123",
			StatusURL:   "/mapfish/print/status/abc-123.json",
			DownloadURL: "/mapfish/print/report/abc-123",
		}, job)
		assert.Equal(t, `{"layout":"A4 portrait","attributes":{"id":1,"subject":"leak"}}`, string(body))
		assert.Equal(t, "pdf", service.Format())
	})

	t.Run("should report server errors with the body", func(t *testing.T) {
		service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown layout", http.StatusBadRequest)
		}))

		_, err := service.CreateReport(context.Background(), newTestDocument())

		assert.True(t, errors.Is(err, domainErrors.ErrPrintRequest))
		assert.Contains(t, err.Error(), "unknown layout")
	})
}

func TestPrintService_ReportStatus(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapfish/print/status/abc-123.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"done":false,"status":"running","elapsedTime":120,"waitingTime":0,"downloadURL":"/mapfish/print/report/abc-123"}`))
	}))

	status, err := service.ReportStatus(context.Background(), "abc-123")

	require.NoError(t, err)
	assert.False(t, status.Done)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, int64(120), status.ElapsedTime)
}

func TestPrintService_DownloadReport(t *testing.T) {
	service := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapfish/print/report/abc-123", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))

	var out bytes.Buffer
	err := service.DownloadReport(context.Background(), "abc-123", &out)

	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", out.String())
}

func statusHandler(t *testing.T, statuses ...models.PrintStatus) (http.Handler, *int32) {
	t.Helper()
	var calls int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(atomic.AddInt32(&calls, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		assert.NoError(t, json.NewEncoder(w).Encode(statuses[i]))
	}), &calls
}

func TestPrintService_WaitForReport(t *testing.T) {
	t.Run("should poll until the job is done", func(t *testing.T) {
		handler, calls := statusHandler(t,
			models.PrintStatus{Status: "waiting"},
			models.PrintStatus{Status: "running"},
			models.PrintStatus{Done: true, Status: "finished"},
		)
		service := newTestService(t, handler)

		status, err := service.WaitForReport(context.Background(), "abc-123")

		require.NoError(t, err)
		assert.Equal(t, "finished", status.Status)
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("should fail when the job errors", func(t *testing.T) {
		handler, _ := statusHandler(t, models.PrintStatus{Done: true, Status: "error", Error: "layout not found"})
		service := newTestService(t, handler)

		_, err := service.WaitForReport(context.Background(), "abc-123")

		assert.True(t, errors.Is(err, domainErrors.ErrPrintFailed))
		assert.Contains(t, err.Error(), "layout not found")
	})

	t.Run("should give up after the timeout", func(t *testing.T) {
		handler, _ := statusHandler(t, models.PrintStatus{Status: "running"})
		service := newTestService(t, handler)
		service.timeout = 30 * time.Millisecond

		_, err := service.WaitForReport(context.Background(), "abc-123")

		assert.True(t, errors.Is(err, domainErrors.ErrPrintTimeout))
	})

	t.Run("should return the cancellation of the caller", func(t *testing.T) {
		handler, _ := statusHandler(t, models.PrintStatus{Status: "running"})
		service := newTestService(t, handler)
		service.timeout = time.Minute
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := service.WaitForReport(ctx, "abc-123")

		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, domainErrors.ErrPrintTimeout))
	})
}
