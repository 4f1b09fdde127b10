// Package transport implements the trust-verified HTTP client used for
// all remote API calls. The client performs no retries: a trust failure
// must never be silently replayed against a potentially hostile
// endpoint, so retry policy belongs to callers.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/overflowhosting/lockscreen/internal/common"
)

// TrustVerifier is the injected capability that validates the remote
// endpoint's identity during the TLS handshake. It has exactly two
// outcomes: nil (verified) or an error (rejected).
type TrustVerifier interface {
	Verify(cs tls.ConnectionState) error
}

// Client issues JSON requests against a configured base URL. It holds
// no session state.
type Client struct {
	mu             sync.RWMutex
	baseURL        string
	defaultHeaders map[string]string

	httpc *http.Client
}

// NewClient builds a client for the given base URL. If verifier is
// non-nil it fully replaces the standard certificate verification for
// this client; a nil verifier keeps the system trust roots.
func NewClient(baseURL string, verifier TrustVerifier, timeout time.Duration) *Client {
	tr := &http.Transport{}
	if verifier != nil {
		tr.TLSClientConfig = &tls.Config{
			// Standard verification is disabled because the injected
			// verifier owns the trust decision, including chain checks.
			InsecureSkipVerify: true,
			VerifyConnection: func(cs tls.ConnectionState) error {
				if err := verifier.Verify(cs); err != nil {
					return fmt.Errorf("%w: %v", common.ErrTrustVerification, err)
				}
				return nil
			},
		}
	}

	return &Client{
		baseURL: baseURL,
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		httpc: &http.Client{Transport: tr, Timeout: timeout},
	}
}

// SetBaseURL changes the request base without rebuilding the client.
func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = u
}

// BaseURL returns the current request base.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetDefaultHeader adds a header sent with every request.
func (c *Client) SetDefaultHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHeaders[key] = value
}

// RemoveDefaultHeader removes a default header.
func (c *Client) RemoveDefaultHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.defaultHeaders, key)
}

// Request performs an HTTP round trip. A non-nil body is serialized to
// JSON. Per-call headers win over default headers. The response is
// decoded into out by Content-Type: JSON bodies are unmarshalled,
// anything else is returned as raw text when out is a *string. Errors
// are classified as either common.ErrTrustVerification or
// common.ErrNetwork.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, out any, headers map[string]string) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	c.mu.RLock()
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", common.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: http %d: %s", common.ErrNetwork, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: malformed response body: %v", common.ErrNetwork, err)
		}
		return nil
	}

	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	return fmt.Errorf("%w: unexpected content type %q", common.ErrNetwork, contentType)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, out any, headers map[string]string) error {
	return c.Request(ctx, http.MethodGet, endpoint, nil, out, headers)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, headers map[string]string) error {
	return c.Request(ctx, http.MethodPost, endpoint, body, out, headers)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, headers map[string]string) error {
	return c.Request(ctx, http.MethodPut, endpoint, body, out, headers)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, out any, headers map[string]string) error {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, out, headers)
}

// classify sorts a round-trip error into exactly two kinds. Trust
// failures raised by the injected verifier arrive already wrapped;
// failures from the standard verifier arrive as x509/tls errors and
// are mapped to the same sentinel. Everything else is a network or
// protocol failure.
func classify(err error) error {
	if errors.Is(err, common.ErrTrustVerification) {
		return err
	}

	var (
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostname    x509.HostnameError
		invalid     x509.CertificateInvalidError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostname) || errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", common.ErrTrustVerification, err)
	}

	return fmt.Errorf("%w: %v", common.ErrNetwork, err)
}
