package mintr

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitRetries  = 3
	rateLimitMaxPause = 10 * time.Second
)

// limitTransport throttles outgoing JSON-RPC requests and, when retry429 is
// set, replays a request that came back 429 after the server's Retry-After.
type limitTransport struct {
	base     http.RoundTripper
	limiter  *rate.Limiter
	retry429 bool
}

func newLimitTransport(base http.RoundTripper, rps float64, retry429 bool) *limitTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &limitTransport{base: base, retry429: retry429}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return t
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && t.retry429 {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = b
	}

	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}

		r := req
		if body != nil {
			r = req.Clone(req.Context())
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
		}

		resp, err := t.base.RoundTrip(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || !t.retry429 || attempt >= rateLimitRetries {
			return resp, nil
		}

		pause := retryAfter(resp.Header.Get("Retry-After"), attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(pause):
		}
	}
}

func retryAfter(h string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > rateLimitMaxPause {
			d = rateLimitMaxPause
		}
		return d
	}
	return time.Duration(250*(1<<attempt)) * time.Millisecond
}
