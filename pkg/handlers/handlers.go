// Package handlers holds the response and request-body helpers shared by
// the domain handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// DefaultBodyLimit caps request bodies when DecodeJSON is given no limit.
const DefaultBodyLimit = 1 << 20

var (
	ErrBodyTooLarge = errors.New("request body too large")
	ErrMalformed    = errors.New("malformed JSON body")
)

// RespondJSON writes data as a JSON body with status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": ...}. Server errors are
// logged in full but reach the client only as the status text.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		msg = http.StatusText(status)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON decodes a single JSON value from the request body into dst.
// Bodies over limit bytes (DefaultBodyLimit when limit <= 0) fail with
// ErrBodyTooLarge; anything else unreadable fails with ErrMalformed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))

	err := dec.Decode(dst)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("trailing data after JSON value")
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrBodyTooLarge
	}
	if err != nil {
		return errors.Join(ErrMalformed, err)
	}
	return nil
}
