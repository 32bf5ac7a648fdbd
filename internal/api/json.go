package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/notesapi/internal/apperr"
)

const msgMalformedBody = "Request body must be a valid JSON object."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// decodeBody reads a JSON object into dst. Any decoding failure is a
// validation error on the body field.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("body", msgMalformedBody)
	}
	return nil
}

// writeError maps an error to its response. failure is the detail sent
// for unexpected errors; the error itself is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationProblem{
			Title:            problemTitle,
			ValidationErrors: verr.Fields,
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Problem{
			Title:  problemTitle,
			Detail: notFoundDetail(err),
		})
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, Problem{
			Title:  problemTitle,
			Detail: failure,
		})
	}
}

// notFoundDetail turns "user 5: not found" into "user 5 not found".
func notFoundDetail(err error) string {
	head, ok := strings.CutSuffix(err.Error(), ": "+apperr.ErrNotFound.Error())
	if !ok {
		return err.Error()
	}
	return head + " not found"
}
