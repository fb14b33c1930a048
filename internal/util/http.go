package util

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"golang.org/x/time/rate"
)

// Middleware wraps one stage of request dispatch around the next.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain composes mws in front of base. The first middleware sees each request
// first and may answer it without calling the rest.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			rt = mws[i](rt)
		}
	}

	return rt
}

type HTTPClientOptions struct {
	Timeout           time.Duration
	UserAgent         string
	Cookie            string
	CookieFile        string
	Cloudflare        bool
	RequestsPerSecond float64 // 0 disables the limit
	Transport         http.RoundTripper
	Middlewares       []Middleware
	DebugLogger       interface {
		Debugf(string, ...any)
	}
}

// NewHTTPClient builds the client every fetch goes through:
// opts.Middlewares, then header injection, debug logging and the rate
// limit, then the transport (optionally behind the Cloudflare bypass).
func NewHTTPClient(opts HTTPClientOptions) (*http.Client, error) {
	jar, _ := cookiejar.New(nil)

	var baseTransport http.RoundTripper
	if opts.Transport != nil {
		baseTransport = opts.Transport
	} else {
		baseTransport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DisableCompression:  false,
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			ForceAttemptHTTP2:   true,
		}
	}

	if opts.Cloudflare {
		baseTransport = cloudflarebp.AddCloudFlareByPass(baseTransport)
	}

	mws := append([]Middleware{}, opts.Middlewares...)
	mws = append(mws, Headers(opts.UserAgent, joinCookies(opts.Cookie, opts.CookieFile)))
	if opts.DebugLogger != nil {
		mws = append(mws, DebugLog(opts.DebugLogger))
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		mws = append(mws, RateLimit(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)))
	}

	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: Chain(baseTransport, mws...),
		Jar:       jar,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("HTTP client initialized (timeout=%s, ua=%q, cookieFile=%q, cloudflare=%t)\n",
			opts.Timeout, opts.UserAgent, opts.CookieFile, opts.Cloudflare)
	}

	return client, nil
}

// Headers sets the User-Agent and, unless the request has one, the Cookie
// header.
func Headers(ua, cookieHeader string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if ua == "" && cookieHeader == "" {
				return next.RoundTrip(req)
			}

			req = req.Clone(req.Context())
			if ua != "" {
				req.Header.Set("User-Agent", ua)
			}
			if cookieHeader != "" && req.Header.Get("Cookie") == "" {
				req.Header.Set("Cookie", cookieHeader)
			}

			return next.RoundTrip(req)
		})
	}
}

func DebugLog(log interface{ Debugf(string, ...any) }) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
			return next.RoundTrip(req)
		})
	}
}

// RateLimit holds each request until l allows it or the request context ends.
func RateLimit(l *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := l.Wait(req.Context()); err != nil {
				if req.Body != nil {
					_ = req.Body.Close()
				}
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.RoundTrip(req)
		})
	}
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file != "" {
		if b, err := os.ReadFile(file); err == nil {
			// first non-empty line
			sc := bufio.NewScanner(strings.NewReader(string(b)))
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line != "" {
					if s == "" {
						s = line
					} else {
						s = s + "; " + line
					}
					break
				}
			}
		}
	}

	return s
}

// DoWithRetry executes request with simple retry policy.
func DoWithRetry(c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		time.Sleep(backoff * time.Duration(i))
	}

	if err == nil && resp != nil {
		return resp, fmt.Errorf("HTTP %d after %d attempts", resp.StatusCode, attempts)
	}

	return nil, err
}

func PickUserAgent(override string) string {
	if override != "" {
		return override
	}

	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
