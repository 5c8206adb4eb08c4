package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	domainErrors "github.com/osgeoweblate/redmine-gtt-print/internal/errors"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/models"
	"github.com/osgeoweblate/redmine-gtt-print/internal/services"
)

const (
	RequestIDHeader = "X-Request-ID"
	shutdownTimeout = 10 * time.Second
)

// IssuePrinter is the part of the print pipeline the server exposes.
type IssuePrinter interface {
	RenderIssue(ctx context.Context, issueID int, opts services.PrintOptions) (string, error)
	SubmitIssue(ctx context.Context, issueID int, opts services.PrintOptions) (*models.PrintJob, error)
}

type Server struct {
	printer IssuePrinter
	router  chi.Router
}

type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func New(printer IssuePrinter) *Server {
	s := &Server{printer: printer}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/issues/{id}", func(r chi.Router) {
		r.Get("/print.json", s.handleRender)
		r.Post("/print", s.handleSubmit)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info(ctx, "shutting down server", "addr", addr)
	return srv.Shutdown(shutdownCtx)
}

// requestID tags every request with an id, reusing the caller's when given,
// and puts a logger carrying it on the request context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.With(r.Context(), "request_id", id)
		logger.Debug(ctx, "request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func printOptions(r *http.Request) services.PrintOptions {
	query := r.URL.Query()
	opts := services.PrintOptions{Layout: query.Get("layout")}
	if query.Has("custom_text") {
		text := query.Get("custom_text")
		opts.CustomText = &text
	}
	return opts
}

func issueID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errors.New("issue id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id, err := issueID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	text, err := s.printer.RenderIssue(r.Context(), id, printOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := issueID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	job, err := s.printer.SubmitIssue(r.Context(), id, printOptions(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Suggestion = appErr.Suggestion
		switch appErr.Type {
		case domainErrors.TypeNotFound:
			status = http.StatusNotFound
		case domainErrors.TypeTracker, domainErrors.TypePrint:
			status = http.StatusBadGateway
		case domainErrors.TypeConfiguration:
			status = http.StatusServiceUnavailable
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", err, "path", r.URL.Path)
	} else {
		logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
