package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// ── withGZip ─────────────────────────────────────────────────────────────────

func TestWithGZip_CompressesWhenAccepted(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "17")
		_, _ = w.Write([]byte(`{"trips":[]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Empty(t, rr.Header().Get("Content-Length"))
	assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, `{"trips":[]}`, string(plain))
}

func TestWithGZip_PlainWhenNotAccepted(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "pong", rr.Body.String())
}

func TestWithGZip_NoBodyNoFooter(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Zero(t, rr.Body.Len())
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
}

func TestWithGZip_DecompressesRequest(t *testing.T) {
	var got string
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(b)
		assert.Empty(t, r.Header.Get("Content-Encoding"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBytes(t, []byte(`{"ids":{}}`))))
	req.Header.Set("Content-Encoding", "gzip")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"ids":{}}`, got)
}

func TestWithGZip_RejectsBrokenRequest(t *testing.T) {
	called := false
	h := withGZip(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip at all"))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ── withTraceID / withLogging ────────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	var inner *logger.Logger
	next := h.withTraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = logger.FromRequest(r)
	}))

	t.Run("generates", func(t *testing.T) {
		rr := httptest.NewRecorder()
		next.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, rr.Header().Get(traceIDHeader), 36)
		assert.NotNil(t, inner)
	})

	t.Run("reuses incoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(traceIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		next.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", rr.Header().Get(traceIDHeader))
	})
}

func TestWithLogging_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
		wantError bool
	}{
		{name: "ok", status: http.StatusOK, wantLevel: "info"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "warn", wantError: true},
		{name: "server error", status: http.StatusServiceUnavailable, wantLevel: "error", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

			chain := h.withTraceID(h.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status >= http.StatusBadRequest {
					http.Error(w, "nope", tt.status)
					return
				}
				_, _ = w.Write([]byte("fine"))
			})))

			chain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))

			line := buf.String()
			assert.Contains(t, line, `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, line, `"uri":"/api/ping"`)
			assert.Contains(t, line, `"trace_id":"`)
			if tt.wantError {
				assert.Contains(t, line, `"error":"nope\n"`)
			} else {
				assert.NotContains(t, line, `"error"`)
			}
		})
	}
}

// ── responseWriter ───────────────────────────────────────────────────────────

func TestResponseWriter(t *testing.T) {
	t.Run("defaults to 200", func(t *testing.T) {
		w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		assert.Equal(t, http.StatusOK, w.Status())
	})

	t.Run("first status wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := &responseWriter{ResponseWriter: rec}
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)

		assert.Equal(t, http.StatusTeapot, w.Status())
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("keeps bounded error body", func(t *testing.T) {
		w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxErrBody+50))
		_, _ = w.Write([]byte("more"))

		assert.Len(t, w.errBody, maxErrBody)
		assert.Equal(t, maxErrBody+54, w.size)
	})

	t.Run("success body not kept", func(t *testing.T) {
		w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		_, _ = w.Write([]byte("payload"))

		assert.Empty(t, w.errBody)
		assert.Equal(t, 7, w.size)
	})
}

// ── CheckHTTPMethod ──────────────────────────────────────────────────────────

func TestCheckHTTPMethod(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/sync/push", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pushed"))
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	t.Run("wrong method", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/sync/push", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("right method", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/sync/push", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pushed", rr.Body.String())
	})
}

// ── rateLimiter ──────────────────────────────────────────────────────────────

func TestNewRateLimiter(t *testing.T) {
	assert.Nil(t, newRateLimiter(0, 5))
	assert.Nil(t, newRateLimiter(-1, 5))

	l := newRateLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.burst)
	assert.Same(t, l.getLimiter(1), l.getLimiter(1))
	assert.NotSame(t, l.getLimiter(1), l.getLimiter(2))
	assert.Equal(t, 1, retryAfterSeconds(l.getLimiter(1)))
	assert.Equal(t, 10, retryAfterSeconds(newRateLimiter(0.1, 1).getLimiter(1)))
}
