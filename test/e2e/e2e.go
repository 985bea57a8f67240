package e2e

import (
	"bytes"
	"net/http"
)

// TestHTTPClient wraps an HTTP client pointed at a running API server. The
// admin secret is attached only to requests that opt in.
type TestHTTPClient struct {
	serverURL   string
	client      *http.Client
	adminSecret string
}

func NewTestHTTPClient(serverURL, adminSecret string) *TestHTTPClient {
	return &TestHTTPClient{
		serverURL:   serverURL,
		client:      &http.Client{},
		adminSecret: adminSecret,
	}
}

func (c *TestHTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.serverURL+url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *TestHTTPClient) Post(url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.serverURL+url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func (c *TestHTTPClient) Patch(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPatch, c.serverURL+url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *TestHTTPClient) Delete(url string, asAdmin bool) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodDelete, c.serverURL+url, nil)
	if err != nil {
		return nil, err
	}
	if asAdmin {
		req.Header.Set("X-Admin-Secret", c.adminSecret)
	}
	return c.client.Do(req)
}
