package httpapi

import (
	"encoding/json"
	"net/http"

	"example.com/mastermind/internal/validation"
)

// Error codes returned by the account routes.
const (
	codeBadRequest         = "bad_request"
	codeUnauthorized       = "unauthorized"
	codeInvalidCredentials = "invalid_credentials"
	codeEmailTaken         = "email_taken"
	codeInternal           = "internal"
)

// ErrorResponse is the body of every non-2xx reply, same shape as the game routes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errCode, msg string) {
	writeJSON(w, status, ErrorResponse{Code: errCode, Message: msg})
}

// decodeValid reads a JSON body into dst and runs the struct validator on it.
// On failure the 400 reply is already written.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any, normalize func()) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid json")
		return false
	}
	if normalize != nil {
		normalize()
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, validation.Details(err))
		return false
	}
	return true
}
