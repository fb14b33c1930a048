package util

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func tag(name string, trace *[]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			*trace = append(*trace, name)
			return next.RoundTrip(req)
		})
	}
}

func TestChainOrder(t *testing.T) {
	var trace []string
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		trace = append(trace, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})

	rt := Chain(base, tag("first", &trace), nil, tag("second", &trace))
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}

	if got := strings.Join(trace, ","); got != "first,second,base" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestChainShortCircuit(t *testing.T) {
	var trace []string
	stop := func(http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			trace = append(trace, "stop")
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
		})
	}
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		t.Fatalf("base must not be reached")
		return nil, nil
	})

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := Chain(base, stop, tag("after", &trace)).RoundTrip(req); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(trace) != 1 {
		t.Fatalf("later middleware ran: %v", trace)
	}
}

func TestNewHTTPClientInjectsHeaders(t *testing.T) {
	var gotUA, gotCookie atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		gotCookie.Store(r.Header.Get("Cookie"))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(cookieFile, []byte("\n  b=2  \nc=3\n"), 0o644); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}

	c, err := NewHTTPClient(HTTPClientOptions{
		Timeout:    5 * time.Second,
		UserAgent:  "test-agent",
		Cookie:     "a=1",
		CookieFile: cookieFile,
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if gotUA.Load() != "test-agent" {
		t.Fatalf("user agent %v", gotUA.Load())
	}
	if gotCookie.Load() != "a=1; b=2" {
		t.Fatalf("cookie %v", gotCookie.Load())
	}
}

func TestDoWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "done")
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := DoWithRetry(srv.Client(), req, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	defer resp.Body.Close()

	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoWithRetryGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := DoWithRetry(srv.Client(), req, 2, time.Millisecond); err == nil {
		t.Fatalf("expected an error after exhausting attempts")
	}
}

func TestPickUserAgent(t *testing.T) {
	if PickUserAgent("x") != "x" {
		t.Fatalf("override ignored")
	}
	if !strings.HasPrefix(PickUserAgent(""), "Mozilla/5.0") {
		t.Fatalf("unexpected default agent")
	}
}

func TestRateLimitHoldsRequests(t *testing.T) {
	var calls atomic.Int32
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})
	rt := Chain(base, RateLimit(rate.NewLimiter(rate.Every(time.Hour), 1)))

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("first request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := rt.RoundTrip(req.WithContext(ctx)); err == nil {
		t.Fatalf("second request must wait past its deadline")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 request through, got %d", calls.Load())
	}
}
