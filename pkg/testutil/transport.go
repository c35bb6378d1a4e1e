// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// RecordingTransport is a RoundTripper that serves canned responses and
// records every dispatched request for later inspection.
type RecordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request

	// Status and Body shape the canned response.
	Status int
	Body   string
	// Err, when set, fails the round trip without producing a response.
	Err error
}

// NewRecordingTransport creates a transport answering every request
// with the given status and body.
func NewRecordingTransport(status int, body string) *RecordingTransport {
	return &RecordingTransport{Status: status, Body: body}
}

// NewFailingTransport creates a transport whose round trips fail with
// the given message.
func NewFailingTransport(message string) *RecordingTransport {
	return &RecordingTransport{Err: errors.New(message)}
}

// RoundTrip records the request and serves the canned outcome.
func (t *RecordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()

	if t.Err != nil {
		return nil, t.Err
	}

	return &http.Response{
		StatusCode: t.Status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(t.Body))),
		Request:    req,
	}, nil
}

// Requests returns the dispatched requests in order.
func (t *RecordingTransport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*http.Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (t *RecordingTransport) LastRequest() *http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}
