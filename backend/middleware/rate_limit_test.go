package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limiter *RateLimiter, withSession bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	if withSession {
		router.Use(Session())
	}
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func TestRateLimitPerSession(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(5, time.Minute), true)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(HeaderSessionID, "sess-a")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderSessionID, "sess-a")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}

	// same client, different session
	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderSessionID, "sess-b")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Different session should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(2, time.Minute), false)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if i == 2 && w.Code != http.StatusTooManyRequests {
			t.Errorf("Expected third request to be limited, got %d", w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimitIssuedSessionsShareIP(t *testing.T) {
	router := newLimitedRouter(NewRateLimiter(2, time.Minute), true)

	codes := make([]int, 5)
	for i := range codes {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes[i] = w.Code
		if w.Header().Get(HeaderSessionID) == "" {
			t.Errorf("Request %d: Expected an issued session id", i+1)
		}
	}

	want := []int{200, 200, 429, 429, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Expected codes %v, got %v", want, codes)
			break
		}
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }
	limiter.lastReset = now

	if !limiter.Allow("k") {
		t.Fatal("Expected first request to pass")
	}
	if limiter.Allow("k") {
		t.Error("Expected second request in window to be limited")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow("k") {
		t.Error("Expected a new window to reset the count")
	}
}
