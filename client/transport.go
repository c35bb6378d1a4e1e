package client

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tgmarket/miniapp-client/credential"
	"github.com/tgmarket/miniapp-client/pkg/logging"
	"github.com/tgmarket/miniapp-client/session"
)

// headerTransport attaches the bearer credential for the request's
// audience, the host-context header, and a request ID. A header the
// caller already set is never overwritten; method, URL and body are
// never touched.
type headerTransport struct {
	next          http.RoundTripper
	session       *session.Bridge
	credentials   *credential.Store
	contextHeader string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The draft request is immutable; extend a clone.
	out := req.Clone(req.Context())

	if t.credentials != nil && out.Header.Get("Authorization") == "" {
		audience := credential.ClassifyPath(out.URL.Path)
		if token, ok := t.credentials.Get(out.Context(), audience); ok {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if t.session != nil && out.Header.Get(t.contextHeader) == "" {
		if initData := t.session.InitData(out.Context()); initData != "" {
			out.Header.Set(t.contextHeader, initData)
		}
	}

	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}

	return t.next.RoundTrip(out)
}

// diagnosticTransport observes failures. A transport error produces one
// log record and is returned unchanged. A non-success response has its
// body captured for the log and re-buffered so the caller still reads
// it in full. The response itself is never altered and nothing is
// retried here.
type diagnosticTransport struct {
	next   http.RoundTripper
	logger *logging.Logger
}

func (t *diagnosticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.WithContext(req.Context()).WithError(err).WithFields(map[string]interface{}{
			"method": req.Method,
			"url":    req.URL.String(),
		}).Warn("request failed")
		return nil, err
	}

	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))

		entry := t.logger.WithContext(req.Context()).WithFields(map[string]interface{}{
			"method": req.Method,
			"url":    req.URL.String(),
			"status": resp.StatusCode,
			"body":   excerpt(body),
		})
		if readErr != nil {
			entry = entry.WithError(readErr)
		}
		entry.Warn("request returned error status")
	}

	return resp, nil
}

// metricsTransport records request counts, latency and transport
// failures.
type metricsTransport struct {
	next    http.RoundTripper
	metrics *Metrics
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	audience := credential.ClassifyPath(req.URL.Path).String()
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.metrics.recordFailure(req.Method, audience)
		return nil, err
	}

	t.metrics.recordRequest(req.Method, audience, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}
