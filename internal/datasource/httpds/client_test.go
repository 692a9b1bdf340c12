package httpds

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedTransport returns canned responses (or errors) in order.
type scriptedTransport struct {
	t         *testing.T
	responses []scripted
	calls     int
	lastReq   *http.Request
}

type scripted struct {
	status int
	body   string
	err    error
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.calls >= len(s.responses) {
		s.t.Fatalf("unexpected request #%d to %s", s.calls+1, req.URL)
	}
	s.lastReq = req
	step := s.responses[s.calls]
	s.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &http.Response{
		StatusCode: step.status,
		Status:     http.StatusText(step.status),
		Body:       io.NopCloser(strings.NewReader(step.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, steps ...scripted) (*Client, *scriptedTransport) {
	tr := &scriptedTransport{t: t, responses: steps}
	c := NewClient(Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		Transport:      tr,
	})
	c.sleep = func(time.Duration) {}
	return c, tr
}

func TestDoRetriesOn5xx(t *testing.T) {
	c, tr := newTestClient(t,
		scripted{status: 500},
		scripted{status: 200, body: "ok"},
	)

	resp, err := c.Do(context.Background(), http.MethodGet, "http://example/x", nil, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if tr.calls != 2 {
		t.Fatalf("calls = %d, want 2", tr.calls)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "ok" {
		t.Fatalf("body = %q", b)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	c, tr := newTestClient(t,
		scripted{status: 503},
		scripted{status: 503},
		scripted{status: 503},
	)

	if _, err := c.Do(context.Background(), http.MethodGet, "http://example/x", nil, nil); err == nil {
		t.Fatalf("Do succeeded after persistent 503s")
	}
	// initial attempt + MaxRetries
	if tr.calls != 3 {
		t.Fatalf("calls = %d, want 3", tr.calls)
	}
}

func TestDoReturnsNonRetryableStatusAsIs(t *testing.T) {
	c, tr := newTestClient(t, scripted{status: 404})

	resp, err := c.Do(context.Background(), http.MethodGet, "http://example/x", nil, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if tr.calls != 1 {
		t.Fatalf("404 was retried: calls = %d", tr.calls)
	}
}

func TestDoRespectsCanceledContext(t *testing.T) {
	c, _ := newTestClient(t, scripted{status: 200})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, http.MethodGet, "http://example/x", nil, nil); err == nil {
		t.Fatalf("Do succeeded with canceled context")
	}
}

func TestOpenStreamRejectsNon2xx(t *testing.T) {
	c, _ := newTestClient(t, scripted{status: 404, body: "nope"})

	if _, err := c.OpenStream(context.Background(), "http://example/missing.csv"); err == nil {
		t.Fatalf("OpenStream succeeded on 404")
	}
}

func TestOpenStreamReturnsBody(t *testing.T) {
	c, _ := newTestClient(t, scripted{status: 200, body: "a,b\n1,2\n"})

	rc, err := c.OpenStream(context.Background(), "http://example/data.csv")
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "a,b\n1,2\n" {
		t.Fatalf("body = %q", b)
	}
}

func TestFetchFirstBytesSetsRangeAndLimits(t *testing.T) {
	c, tr := newTestClient(t, scripted{status: 200, body: strings.Repeat("x", 100)})

	b, err := c.FetchFirstBytes(context.Background(), "http://example/big.csv", 10)
	if err != nil {
		t.Fatalf("FetchFirstBytes: %v", err)
	}
	if len(b) != 10 {
		t.Fatalf("len = %d, want 10 even when the server ignores Range", len(b))
	}
	if got := tr.lastReq.Header.Get("Range"); got != "bytes=0-9" {
		t.Fatalf("Range header = %q", got)
	}
}

func TestBackoffDuration(t *testing.T) {
	if d := backoffDuration(100*time.Millisecond, 0, time.Second); d != 100*time.Millisecond {
		t.Fatalf("attempt 0: %v", d)
	}
	if d := backoffDuration(100*time.Millisecond, 2, time.Second); d != 400*time.Millisecond {
		t.Fatalf("attempt 2: %v", d)
	}
	if d := backoffDuration(100*time.Millisecond, 10, time.Second); d != time.Second {
		t.Fatalf("clamp: %v", d)
	}
}
