package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type deviceIDKey struct{}

const DeviceIDHeader = "X-Device-Id"

// DeviceID requires a client-generated UUID in the X-Device-Id header
// and stores it on the request context. It identifies an installation
// for throttling and vote dedup only; it is not authentication.
func DeviceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceIDHeader)
		if deviceID == "" {
			writeError(w, http.StatusBadRequest, "MISSING_DEVICE_ID", "the X-Device-Id header is required")
			return
		}
		if _, err := uuid.Parse(deviceID); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DEVICE_ID", "device id must be a valid UUID")
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDKey{}, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceIDFrom returns the device id placed on ctx by DeviceID, or "".
func DeviceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(deviceIDKey{}).(string)
	return id
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   http.StatusText(status),
		"code":    code,
		"message": message,
	})
}
