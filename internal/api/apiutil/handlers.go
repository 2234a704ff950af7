package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/api/authz"
)

// HandlerError is an error with the status and message a handler should
// respond with. Err is logged but never shown to the caller.
type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes {"error": reason} with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, reason string) {
	if err := WriteJSON(w, status, ErrorResponse{Error: reason}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write error response")
	}
}

// RespondError writes err as an ErrorResponse. A HandlerError supplies its
// own status; anything else becomes a 500.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	if !errors.As(err, &herr) {
		logger.Error().Err(err).Msg("Unhandled request error")
		WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if herr.Status >= http.StatusInternalServerError {
		logger.Error().Err(herr.Err).Int("status", herr.Status).Msg(herr.Message)
	}
	WriteError(w, r, herr.Status, herr.Message)
}

// RequireService writes the refusal and returns false unless the caller is
// a service account.
func RequireService(w http.ResponseWriter, r *http.Request) bool {
	logger := log.Ctx(r.Context())
	id := authz.IdentityFromContext(r.Context())
	if err := authz.RequireService(r.Context()); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logger.Warn().Msg("Service access denied: unauthenticated")
			WriteError(w, r, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, authz.ErrForbidden):
			logger.Warn().Int64("account_id", id.AccountID).Msg("Service access denied: forbidden")
			WriteError(w, r, http.StatusForbidden, "Forbidden")
		default:
			logger.Error().Err(err).Msg("Service access denied: error")
			WriteError(w, r, http.StatusInternalServerError, "Failed to authorize request")
		}
		return false
	}
	return true
}
