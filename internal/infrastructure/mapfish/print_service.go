package mapfish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/httpclient"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
)

const (
	statusFinished  = "finished"
	statusError     = "error"
	statusCancelled = "cancelled"
)

// PrintService talks to a MapFish Print 3 server.
type PrintService struct {
	baseURL      string
	app          string
	format       string
	pollInterval time.Duration
	timeout      time.Duration
	client       httpclient.HTTPClient
}

var _ ports.PrintClient = (*PrintService)(nil)

func NewPrintService(cfg *config.Config, client httpclient.HTTPClient) (*PrintService, error) {
	if cfg.Print.BaseURL == "" {
		return nil, domainErrors.ErrPrintServerMissing
	}
	return &PrintService{
		baseURL:      strings.TrimRight(cfg.Print.BaseURL, "/"),
		app:          cfg.Print.App,
		format:       cfg.Print.Format,
		pollInterval: time.Duration(cfg.Print.PollIntervalSeconds) * time.Second,
		timeout:      time.Duration(cfg.Print.TimeoutSeconds) * time.Second,
		client:       client,
	}, nil
}

// Format is the output format reports are requested in, such as "pdf".
func (s *PrintService) Format() string {
	return s.format
}

func (s *PrintService) CreateReport(ctx context.Context, doc *models.Document) (*models.PrintJob, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, domainErrors.ErrEncodeDocument.WithError(err)
	}

	endpoint := fmt.Sprintf("%s/print/%s/report.%s", s.baseURL, url.PathEscape(s.app), s.format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domainErrors.ErrPrintRequest.WithError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	var job models.PrintJob
	if err := s.doJSON(ctx, req, &job); err != nil {
		return nil, err
	}

	logger.Info(ctx, "print job submitted", "ref", job.Ref, "layout", doc.Layout)
	return &job, nil
}

func (s *PrintService) ReportStatus(ctx context.Context, ref string) (*models.PrintStatus, error) {
	endpoint := fmt.Sprintf("%s/print/status/%s.json", s.baseURL, url.PathEscape(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domainErrors.ErrPrintRequest.WithError(err)
	}

	var status models.PrintStatus
	if err := s.doJSON(ctx, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *PrintService) DownloadReport(ctx context.Context, ref string, w io.Writer) error {
	endpoint := fmt.Sprintf("%s/print/report/%s", s.baseURL, url.PathEscape(ref))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domainErrors.ErrPrintRequest.WithError(err)
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	defer closeBody(ctx, resp)

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return domainErrors.ErrPrintRequest.WithError(fmt.Errorf("error reading report: %w", err)).WithContext("ref", ref)
	}

	logger.Debug(ctx, "print report downloaded", "ref", ref, "bytes", n)
	return nil
}

// WaitForReport polls the job status until it is done, fails, or the
// configured timeout passes.
func (s *PrintService) WaitForReport(ctx context.Context, ref string) (*models.PrintStatus, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	interval := s.pollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := s.ReportStatus(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, waitError(ctx, ref)
			}
			return nil, err
		}

		logger.Debug(ctx, "print job status", "ref", ref, "status", status.Status, "elapsed_ms", status.ElapsedTime)

		switch {
		case status.Status == statusError || status.Status == statusCancelled:
			return status, domainErrors.ErrPrintFailed.
				WithError(fmt.Errorf("%s: %s", status.Status, status.Error)).
				WithContext("ref", ref)
		case status.Done || status.Status == statusFinished:
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, waitError(ctx, ref)
		case <-ticker.C:
		}
	}
}

// waitError reports a deadline as a print timeout. A cancelled caller gets
// its own context error back.
func waitError(ctx context.Context, ref string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domainErrors.ErrPrintTimeout.WithContext("ref", ref)
	}
	return ctx.Err()
}

func (s *PrintService) doJSON(ctx context.Context, req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := s.do(ctx, req)
	if err != nil {
		return err
	}
	defer closeBody(ctx, resp)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domainErrors.ErrPrintRequest.
			WithError(fmt.Errorf("error decoding response: %w", err)).
			WithContext("url", req.URL.String())
	}
	return nil
}

func (s *PrintService) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	endpoint := req.URL.String()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domainErrors.ErrPrintRequest.WithError(err).WithContext("url", endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer closeBody(ctx, resp)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, domainErrors.ErrPrintRequest.
			WithError(fmt.Errorf("unexpected status: %s", resp.Status)).
			WithContext("url", endpoint).
			WithContext("body", strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logger.Warn(ctx, "error closing response body", "error", err)
	}
}
