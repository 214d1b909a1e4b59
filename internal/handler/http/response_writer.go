// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "net/http"

// responseWriter records the status, size and error body of a response
// for the logging and metrics middleware.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	size        int

	// errBody keeps the start of the body of a 4xx/5xx response. The sync
	// handlers answer errors with a short message, so that is all of it.
	errBody []byte
}

const maxErrBody = 256

// WriteHeader forwards the first call only, like net/http does.
func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	if w.status >= http.StatusBadRequest && len(w.errBody) < maxErrBody {
		room := maxErrBody - len(w.errBody)
		w.errBody = append(w.errBody, b[:min(n, room)]...)
	}
	return n, err
}

// Status returns the written status, 200 if the handler never set one.
func (w *responseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
