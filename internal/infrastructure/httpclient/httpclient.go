package httpclient

import (
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns a plain http.Client with the given timeout.
func New(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}
