package httpserver_test

import (
	"net/http"
	"strings"
	"testing"

	httpserver "pollen_tracker/internal/adapters/http_server"
)

const submitBody = `{"center_lat":40.0,"center_lng":-74.0,"radius_km":1,"pollen_type":"grass","severity":"low"}`

func TestSubmitLimiter_BurstThenReject(t *testing.T) {
	repo := &stubRepo{}
	h := newTestServer(repo, httpserver.NewSubmitLimiter(1, 2))

	// Burst of 2 goes through.
	for i := 0; i < 2; i++ {
		rr := do(t, h, "POST", "/v1/reviews", submitBody, nil)
		if rr.Code != http.StatusCreated {
			t.Fatalf("request %d: status %d body %s", i, rr.Code, rr.Body.String())
		}
	}

	// Bucket is empty now.
	rr := do(t, h, "POST", "/v1/reviews", submitBody, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type: %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "rate") {
		t.Fatalf("expected rate-limit detail, got %s", rr.Body.String())
	}
}

func TestSubmitLimiter_PerIP(t *testing.T) {
	repo := &stubRepo{}
	h := newTestServer(repo, httpserver.NewSubmitLimiter(1, 1))

	// First caller exhausts its bucket.
	rr := do(t, h, "POST", "/v1/reviews", submitBody, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("first caller: %d", rr.Code)
	}
	rr = do(t, h, "POST", "/v1/reviews", submitBody, map[string]string{"X-Forwarded-For": "10.0.0.1"})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("first caller second request: %d", rr.Code)
	}

	// A different caller is unaffected.
	rr = do(t, h, "POST", "/v1/reviews", submitBody, map[string]string{"X-Forwarded-For": "10.0.0.2"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("second caller: %d", rr.Code)
	}

	// Reads are never throttled.
	rr = do(t, h, "GET", "/v1/reviews", "", map[string]string{"X-Forwarded-For": "10.0.0.1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("read throttled: %d", rr.Code)
	}
}
