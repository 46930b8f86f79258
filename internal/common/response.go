package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    Kind              `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, kind Kind, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message, Code: kind})
}

// RespondWithAppError writes the status, kind and message derived from err.
// Internal failures are reported with a generic message only.
func RespondWithAppError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)
	resp := ErrorResponse{Error: err.Error(), Code: KindFromError(err)}
	if status == http.StatusInternalServerError {
		resp.Error = ErrInternalServer.Error()
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Fields
	}
	RespondWithJSON(w, status, resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response", "code": "INTERNAL"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
