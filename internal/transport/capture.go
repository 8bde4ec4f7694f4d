package transport

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"
)

// maxExchanges bounds the recorder between two drains.
const maxExchanges = 32

// Exchange is one recorded HTTP round-trip. A redirect chain records one
// exchange per hop.
type Exchange struct {
	Method     string
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Elapsed    time.Duration
	Err        error // transport failure; the response fields are empty
}

// recorder wraps an http.RoundTripper and keeps the exchanges made through it
// until they are drained.
type recorder struct {
	base http.RoundTripper

	mu        sync.Mutex
	exchanges []Exchange
}

func newRecorder(base http.RoundTripper) *recorder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &recorder{base: base}
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ex := Exchange{Method: req.Method, URL: req.URL.String()}

	resp, err := r.base.RoundTrip(req)
	if err != nil {
		ex.Err = err
		ex.Elapsed = time.Since(start)
		r.add(ex)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	ex.StatusCode = resp.StatusCode
	ex.Headers = resp.Header.Clone()
	ex.Body = body
	ex.Elapsed = time.Since(start)
	r.add(ex)
	return resp, nil
}

func (r *recorder) add(ex Exchange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.exchanges) == maxExchanges {
		r.exchanges = r.exchanges[1:]
	}
	r.exchanges = append(r.exchanges, ex)
}

// Drain returns the recorded exchanges, oldest first, and forgets them.
func (r *recorder) Drain() []Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.exchanges
	r.exchanges = nil
	return out
}
