// Package source obtains scan documents, either from a saved snapshot on
// disk or from a live console over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/twistlock-tools/twistq/internal/config"
	"github.com/twistlock-tools/twistq/pkg/types"
)

var (
	errNoConsoleURL = errors.New("console URL is not configured")

	errNoCredentials = errors.New("console credentials are not configured: " +
		"provide a token, or a username and password")
)

// ReadFile reads a scan document that was previously saved to disk.
func ReadFile(path string) (*types.ScanDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading images file: %w", err)
	}
	doc, err := types.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing images file %s: %w", path, err)
	}
	return doc, nil
}

// Search fetches scan results matching searchSpec from a console. The
// request authenticates with a bearer token when one is configured,
// otherwise with basic auth. A nil client selects a default one, which
// allows injecting a mock HTTP client during testing.
func Search(ctx context.Context, client types.HTTPClientInterface, console config.Console, searchSpec string) (*types.ScanDocument, error) {
	if console.URL == "" {
		return nil, errNoConsoleURL
	}
	if console.Token == "" && (console.Username == "" || console.Password == "") {
		return nil, errNoCredentials
	}

	if client == nil {
		if console.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: console.Token})
			client = oauth2.NewClient(ctx, ts)
		} else {
			client = types.NewRealHTTPClient()
		}
	}

	searchURL := fmt.Sprintf("%s/api/v1/images?search=%s",
		strings.TrimRight(console.URL, "/"), url.QueryEscape(searchSpec))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if console.Token == "" {
		req.SetBasicAuth(console.Username, console.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	doc, err := types.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing console response: %w", err)
	}
	return doc, nil
}
