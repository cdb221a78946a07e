package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"plate_reader/internal/api"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(info DetectorInfo) *gin.Engine {
	r := gin.New()
	h := Health(info)
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	return r
}

func TestHealth_GET(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		info     DetectorInfo
		expected api.HealthResponse
	}{
		{
			name:     "primary model",
			info:     DetectorInfo{Backend: "onnx", Model: "best.onnx"},
			expected: api.HealthResponse{Status: "ok", Detector: "onnx", Model: "best.onnx"},
		},
		{
			name:     "fallback model is degraded",
			info:     DetectorInfo{Backend: "onnx", Model: "yolov8n.onnx", Degraded: true},
			expected: api.HealthResponse{Status: "ok", Detector: "onnx", Model: "yolov8n.onnx", Degraded: true},
		},
		{
			name:     "remote backend without model",
			info:     DetectorInfo{Backend: "vision"},
			expected: api.HealthResponse{Status: "ok", Detector: "vision"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(tt.info)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}

			var response api.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, response)
			}

			if w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method         string
		expectedStatus int
		expectBody     bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
	}

	router := setupRouter(DetectorInfo{Backend: "onnx"})

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got := w.Body.Len() > 0; got != tt.expectBody {
				t.Errorf("expected body present=%v, got %d bytes", tt.expectBody, w.Body.Len())
			}
			if w.Header().Get("Cache-Control") != "no-store" {
				t.Errorf("expected Cache-Control 'no-store', got %q", w.Header().Get("Cache-Control"))
			}
		})
	}
}
