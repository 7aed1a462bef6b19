package httpx

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in APIError.Code.
const (
	CodeApology          = "apology"
	CodeInternal         = "internal_error"
	CodeQuoteUnavailable = "quote_unavailable"
	CodeRateLimited      = "rate_limited"
)

type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{Error: msg, Code: code, Details: details})
}

// Apology reports a user-facing validation failure. The message is shown to
// the user as is.
func Apology(w http.ResponseWriter, status int, msg string) {
	WriteError(w, status, CodeApology, msg, nil)
}

// Internal hides the cause of a failure from the client.
func Internal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
}
