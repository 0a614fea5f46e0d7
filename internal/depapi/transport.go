package depapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Simply-Mac/go-dep/internal/config"
	"github.com/Simply-Mac/go-dep/internal/metrics"
	"github.com/Simply-Mac/go-dep/internal/version"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const ContentType = "application/json;charset=utf-8"

// Transport sends one request to the enrollment service and returns the status and raw body.
// Errors are reserved for network and TLS failures; HTTP error statuses are not errors.
type Transport interface {
	Send(ctx context.Context, method, url string, header http.Header, body []byte) (int, []byte, error)
}

type HTTPTransport struct {
	client *http.Client
}

var _ Transport = &HTTPTransport{}

// NewHTTPTransport builds a transport that authenticates with the given client certificate.
func NewHTTPTransport(cred config.Credential, timeout time.Duration) (*HTTPTransport, error) {
	cert, err := tls.LoadX509KeyPair(cred.CertPath, cred.KeyPath)
	if err != nil {
		return nil, config.Errorf("CERT", err, "load client certificate %s", cred.CertPath)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	return NewHTTPTransportWithClient(&http.Client{
		Transport: base,
		Timeout:   timeout,
	}), nil
}

// NewHTTPTransportWithClient wraps an existing client. The client's round tripper is
// decorated with the default headers, metrics and tracing.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	c := *client
	c.Transport = otelhttp.NewTransport(&headerTransport{Transport: next})
	return &HTTPTransport{client: &c}
}

func (t *HTTPTransport) Send(ctx context.Context, method, url string, header http.Header, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, b, nil
}

type headerTransport struct {
	Transport http.RoundTripper
}

var _ http.RoundTripper = &headerTransport{}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ContentType)
	}
	req.Header.Set("Accept-Encoding", "application/json")
	req.Header.Set("User-Agent", "go-dep/"+version.Version)

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	metrics.IncStatusCode(resp.StatusCode)

	return resp, nil
}
