package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
)

// makeRequest creates a test request carrying a logger that writes to buf,
// the same way withTraceID attaches one.
func makeRequest(method, path string, buf *bytes.Buffer) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	l := zerolog.New(buf).With().Timestamp().Logger()
	return req.WithContext(l.WithContext(req.Context()))
}

func TestWithLogging_TableTest(t *testing.T) {
	tests := []struct {
		name             string
		method           string
		path             string
		handlerStatus    int
		handlerResponse  string
		checkLogContains []string
	}{
		{
			name:            "GET /healthz 200",
			method:          http.MethodGet,
			path:            "/healthz",
			handlerStatus:   http.StatusOK,
			handlerResponse: `{"status":"ok"}`,
			checkLogContains: []string{
				`"method":"GET"`,
				`"uri":"/healthz"`,
				`"status":200`,
				`"duration":`,
				`"size":15`,
			},
		},
		{
			name:          "404 without body",
			method:        http.MethodPost,
			path:          "/metrics",
			handlerStatus: http.StatusNotFound,
			checkLogContains: []string{
				`"method":"POST"`,
				`"status":404`,
				`"size":0`,
			},
		},
		{
			name:            "query string kept in uri",
			method:          http.MethodGet,
			path:            "/metrics?name=queue_pending",
			handlerStatus:   http.StatusOK,
			handlerResponse: "queue_pending 0",
			checkLogContains: []string{
				`"uri":"/metrics?name=queue_pending"`,
			},
		},
		{
			name:            "500",
			method:          http.MethodGet,
			path:            "/healthz",
			handlerStatus:   http.StatusInternalServerError,
			handlerResponse: "boom",
			checkLogContains: []string{
				`"status":500`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
				if tt.handlerResponse != "" {
					_, _ = w.Write([]byte(tt.handlerResponse))
				}
			})

			rr := httptest.NewRecorder()
			withLogging(next).ServeHTTP(rr, makeRequest(tt.method, tt.path, &logBuf))

			assert.Equal(t, tt.handlerStatus, rr.Code)
			for _, expected := range tt.checkLogContains {
				assert.Contains(t, logBuf.String(), expected)
			}
		})
	}
}

func TestWithLogging_ResponseSize(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 512)))
		_, _ = w.Write([]byte(strings.Repeat("b", 512)))
	})

	withLogging(next).ServeHTTP(httptest.NewRecorder(), makeRequest(http.MethodGet, "/metrics", &logBuf))

	assert.Contains(t, logBuf.String(), `"size":1024`)
}

// ---- Без явного WriteHeader в лог попадает 200 ----

func TestWithLogging_NoStatusWritten(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	withLogging(next).ServeHTTP(rr, makeRequest(http.MethodGet, "/healthz", &logBuf))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logBuf.String(), `"status":200`)
}

func TestWithLogging_PanicNotSuppressed(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	req := makeRequest(http.MethodGet, "/panic", &bytes.Buffer{})
	assert.Panics(t, func() {
		withLogging(next).ServeHTTP(httptest.NewRecorder(), req)
	})
}

func TestWithLogging_NopLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/nop", nil)
	req = req.WithContext(logger.Nop().Logger.WithContext(req.Context()))

	assert.NotPanics(t, func() {
		withLogging(next).ServeHTTP(httptest.NewRecorder(), req)
	})
}
