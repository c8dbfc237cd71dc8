package http

import (
	"testing"
	"time"
)

func TestMutationLimiterWindow(t *testing.T) {
	ml := newMutationLimiter()

	for i := 0; i < mutationLimit; i++ {
		if !ml.allow("198.51.100.7") {
			t.Fatalf("request %d rejected below the limit", i+1)
		}
	}
	if ml.allow("198.51.100.7") {
		t.Fatal("request above the limit was allowed")
	}

	// Other clients have their own window.
	if !ml.allow("198.51.100.8") {
		t.Fatal("fresh client rejected")
	}

	// An expired window resets the count.
	ml.mu.Lock()
	ml.windows["198.51.100.7"].started = time.Now().Add(-limitWindow - time.Second)
	ml.mu.Unlock()
	if !ml.allow("198.51.100.7") {
		t.Fatal("client rejected after its window expired")
	}
}

func TestMutationLimiterSweepsStaleClients(t *testing.T) {
	ml := newMutationLimiter()
	ml.allow("198.51.100.7")

	ml.mu.Lock()
	ml.windows["198.51.100.7"].started = time.Now().Add(-limiterStaleAt - time.Second)
	ml.lastSweep = time.Now().Add(-limiterGC - time.Second)
	ml.mu.Unlock()

	ml.allow("198.51.100.9")

	ml.mu.Lock()
	_, kept := ml.windows["198.51.100.7"]
	ml.mu.Unlock()
	if kept {
		t.Fatal("stale client entry survived the sweep")
	}
}

func TestRateLimitAppliesToMutationsOnly(t *testing.T) {
	srv := newTestServer(t)

	// Burn through the mutation budget with rejected bodies; the limiter
	// counts attempts before the body is parsed.
	for i := 0; i < mutationLimit; i++ {
		rr, _ := doJSON(t, srv, "POST", "/api/transactions", `{`)
		if rr.Code != 400 {
			t.Fatalf("request %d status=%d, want 400", i+1, rr.Code)
		}
	}

	rr, env := doJSON(t, srv, "POST", "/api/transactions", `{`)
	if rr.Code != 429 {
		t.Fatalf("status=%d after limit, want 429", rr.Code)
	}
	if env.Success {
		t.Fatal("expected success=false on limited request")
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("Retry-After=%q, want 60", got)
	}

	// Reads stay unlimited.
	rr, _ = doJSON(t, srv, "GET", "/api/transactions", "")
	if rr.Code != 200 {
		t.Fatalf("read status=%d while limited, want 200", rr.Code)
	}
}
