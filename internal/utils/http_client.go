package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is the resty client the remote adapter talks through.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client rooted at baseURL whose requests are
// bounded by timeout. Retries are left to the mutation queue.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &HTTPClient{Client: client}
}
