package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient creates a client with default config for testing
func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := New(nil)
	t.Cleanup(func() { client.Close() })
	return client
}

// newTestClientWithConfig creates a client with custom config for testing
func newTestClientWithConfig(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(func() { client.Close() })
	return client
}

// newTestServer creates an httptest server with automatic cleanup
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// closeResponseBody safely closes a response body in tests
func closeResponseBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp != nil && resp.Body != nil {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("failed to close response body: %v", err)
		}
	}
}

// shortTimeoutConfig returns a config with a very short default timeout
func shortTimeoutConfig(timeout time.Duration) *Config {
	return &Config{DefaultTimeout: timeout}
}
