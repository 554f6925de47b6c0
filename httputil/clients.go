package httputil

import (
	"net/http"
	"time"
)

// NewClient builds the client used for search API calls. The upstream has no
// SLA, so an explicit timeout bounds how long one page fetch can stall a
// region's collection.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
	}
}
