// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, r io.Reader) string {
	t.Helper()

	zr, err := gzip.NewReader(r)
	require.NoError(t, err)
	defer zr.Close()

	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(body)
}

func TestGZip(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		body           string
		wantGzipped    bool
	}{
		{"client accepts gzip", "gzip", "# HELP queue_pending", true},
		{"no accept-encoding", "", "# HELP queue_pending", false},
		{"gzip among several encodings", "deflate, gzip, br", "queue_pending 3", true},
		{"quality values", "gzip;q=1.0, identity;q=0.5", "queue_pending 3", true},
		{"identity only", "identity", "queue_pending 3", false},
		{"large body", "gzip", strings.Repeat("cache_lookups_total 1\n", 1000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rr := httptest.NewRecorder()
			withGZip(next).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.body, gunzip(t, rr.Body))
			} else {
				assert.Empty(t, rr.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}

func TestGZip_CompressionRatio(t *testing.T) {
	data := strings.Repeat("realtime_frames_total{type=\"user-update\"} 1\n", 500)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(data))
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	withGZip(next).ServeHTTP(rr, req)

	assert.Less(t, rr.Body.Len(), len(data)/10)
}

// ---- Пул writer'ов переиспользуется без гонок ----

func TestGZip_ConcurrentRequests(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("concurrent response"))
	})
	middleware := withGZip(next)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, req)

			zr, err := gzip.NewReader(rr.Body)
			if assert.NoError(t, err) {
				body, _ := io.ReadAll(zr)
				assert.Equal(t, "concurrent response", string(body))
			}
		}()
	}
	wg.Wait()
}
