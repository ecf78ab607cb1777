package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every JSON response. A success carries Status true
// and a Message; a failure carries Status false and at least one error. Trace
// is only filled in development.
type Envelope struct {
	Status  bool     `json:"status"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
	Trace   any      `json:"trace,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteSuccess writes a successful envelope.
func WriteSuccess(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{Status: true, Message: message, Data: data})
}

// WriteError writes a failed envelope. An empty errs list is replaced by the
// generic status text so the list is never empty.
func WriteError(w http.ResponseWriter, code int, errs ...string) {
	WriteErrorTrace(w, code, nil, errs...)
}

// WriteErrorTrace is WriteError with a trace attached.
func WriteErrorTrace(w http.ResponseWriter, code int, trace any, errs ...string) {
	if len(errs) == 0 {
		errs = []string{http.StatusText(code)}
	}
	WriteJSON(w, code, Envelope{Status: false, Errors: errs, Trace: trace})
}
