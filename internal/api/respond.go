package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/storage"
)

// maxBodyBytes caps request bodies well above any legitimate payload.
const maxBodyBytes = 1 << 20

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeError maps a domain error to the JSON error envelope. Internal
// errors keep their detail out of the response body.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	message := err.Error()
	if code == apperrors.CodeUnknown {
		log.Printf("api: internal error: %v", err)
		message = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: message}})
}

// mapStoreErr converts storage sentinel errors to coded domain errors.
func mapStoreErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "record not found")
	}
	return err
}

// decodeJSON reads a bounded JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// writeBadRequest responds with a generic bad-request envelope for
// malformed bodies that never reached domain validation.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: "BAD_REQUEST", Message: message}})
}
