package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as coded, user-friendly JSON
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Status code is derived from the error kind (statusFor)
//  4. Error is mapped via core.MapError to get the user-facing message
//  5. Structured detail (invalid rows, duplicate keys, available columns)
//     is attached so API clients do not have to parse the message

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csvtool/internal/application"
	"github.com/JonMunkholm/csvtool/internal/core"
	"github.com/JonMunkholm/csvtool/internal/logging"
	"github.com/JonMunkholm/csvtool/internal/reader"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code, Details) and human-readable
// (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// SchemaDetails lists the columns a missing column was looked up among.
type SchemaDetails struct {
	Column    string   `json:"column"`
	Available []string `json:"available"`
}

// DuplicateDetails lists repeated key values.
type DuplicateDetails struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// ValidationDetails lists every invalid key cell.
type ValidationDetails struct {
	Column string                 `json:"column"`
	Errors []core.ValidationError `json:"errors"`
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, reader.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, application.ErrTooManyJobs):
		return http.StatusTooManyRequests
	case core.IsUserFacing(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails extracts structured detail from typed core errors.
func errorDetails(err error) any {
	var (
		verr *core.ValidationFailedError
		derr *core.DuplicateKeysError
		serr *core.SchemaError
	)
	switch {
	case errors.As(err, &verr):
		return ValidationDetails{Column: verr.Column, Errors: verr.Errors}
	case errors.As(err, &derr):
		return DuplicateDetails{Column: derr.Column, Values: derr.Values}
	case errors.As(err, &serr):
		return SchemaDetails{Column: serr.Column, Available: serr.Available}
	default:
		return nil
	}
}

// respondError logs the technical error and writes a coded JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "5")
	}

	writeJSONStatus(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Details: errorDetails(err),
	})
}
