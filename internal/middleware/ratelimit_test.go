package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func serveOK(rl *RateLimiter, remoteAddr string) int {
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/compress", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimitRejectsOverBudget(t *testing.T) {
	rl := NewRateLimiter(100, 100, 1, 1)
	defer rl.Stop()

	require.Equal(t, http.StatusOK, serveOK(rl, "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, serveOK(rl, "10.0.0.1:1234"))

	// A different caller has its own budget.
	require.Equal(t, http.StatusOK, serveOK(rl, "10.0.0.2:1234"))
}

func TestStopReleasesCleanupAndIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(100, 100, 1, 1)

	rl.Stop()
	rl.Stop()

	// The cleanup goroutine selects on done; a closed done channel means it
	// has an exit path even though the stopped ticker never fires again.
	select {
	case <-rl.done:
	case <-time.After(time.Second):
		t.Fatal("done channel not closed by Stop")
	}
}
