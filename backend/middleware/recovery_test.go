package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	router := gin.New()
	router.Use(RequestID())
	router.Use(Session())
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	router.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusOK, "half")
		panic("late panic")
	})
	router.GET("/normal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	t.Run("panic recovery", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/panic", nil)
		req.Header.Set(HeaderRequestID, "req-panic")
		req.Header.Set(HeaderSessionID, "sess-panic")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Internal server error") || !strings.Contains(body, "req-panic") {
			t.Errorf("Expected error and request id in response, got %s", body)
		}
		if !strings.Contains(buf.String(), "session_id=sess-panic") {
			t.Error("Expected session id in panic log")
		}
		if strings.Contains(buf.String(), "panic stack") {
			t.Error("Stack should only be logged at debug level")
		}
	})

	t.Run("panic after write", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/partial", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected committed status 200, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "Internal server error") {
			t.Errorf("Expected no error body after partial write, got %s", w.Body.String())
		}
		if !strings.Contains(buf.String(), "written=true") {
			t.Error("Expected written=true in panic log")
		}
	})

	t.Run("normal request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/normal", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}
