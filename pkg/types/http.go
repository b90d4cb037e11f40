package types

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPClientInterface abstracts the HTTP client used to talk to a console
// so that tests can substitute canned responses.
type HTTPClientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPClient is the concrete HTTPClientInterface backed by a real
// http.Client.
type RealHTTPClient struct {
	Client *http.Client
}

// NewRealHTTPClient returns a RealHTTPClient with a timeout suited to a
// single console query.
func NewRealHTTPClient() *RealHTTPClient {
	return &RealHTTPClient{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Do sends the request using the underlying http.Client.
func (c *RealHTTPClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	return resp, nil
}
