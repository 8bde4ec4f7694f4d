package flow

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/godel-oidc/authflow/internal/browser"
	"github.com/godel-oidc/authflow/internal/config"
	"github.com/godel-oidc/authflow/internal/transport"
)

type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Body          string
	Authorization string
}

// serverLog records the requests an httptest server received.
type serverLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *serverLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		r.Body.Close()
		l.mu.Lock()
		l.reqs = append(l.reqs, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Body:          string(b),
			Authorization: r.Header.Get("Authorization"),
		})
		l.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(b))
		next.ServeHTTP(w, r)
	})
}

func (l *serverLog) requests() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

func (l *serverLog) count(method, path string) int {
	n := 0
	for _, r := range l.requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// testTab is a browser tab wired to an httptest server.
type testTab struct {
	env    Env
	srv    *httptest.Server
	log    *serverLog
	nav    *browser.History
	screen *browser.Screen
}

func newTestTab(t *testing.T, handler http.Handler, onShow func(browser.Dialog, string)) *testTab {
	t.Helper()
	log := &serverLog{}
	srv := httptest.NewServer(log.wrap(handler))
	t.Cleanup(srv.Close)

	cfg, err := config.Default(srv.URL)
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}

	nav := browser.NewHistory()
	screen := browser.NewScreen(onShow)
	return &testTab{
		env: Env{
			Config:    cfg,
			Transport: transport.New(cfg),
			Navigator: nav,
			Surface:   screen,
			Storage:   browser.NewStorageArea(time.Minute).Origin(cfg.Origin),
		},
		srv:    srv,
		log:    log,
		nav:    nav,
		screen: screen,
	}
}

func (tab *testTab) visits() []string {
	var out []string
	for _, v := range tab.nav.Visits() {
		if v.Reload {
			out = append(out, "(reload)")
			continue
		}
		out = append(out, v.URL)
	}
	return out
}
