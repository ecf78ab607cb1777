package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON request body into dst. On failure it writes a 400
// envelope and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		httpx.WriteError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return false
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			httpx.WriteError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		httpx.WriteError(w, http.StatusBadRequest, "request body must be valid JSON")
		return false
	}
	return true
}
