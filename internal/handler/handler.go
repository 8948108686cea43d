package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"trendyshop/internal/middleware"
	"trendyshop/internal/model"
	"trendyshop/internal/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New()

// MessageResponse is returned by endpoints that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error body carrying the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Int("status", status).Str("path", r.URL.Path).Msg(message)

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}

// writeServiceError maps a service error to its HTTP status. Anything that is
// not a domain error is reported as an internal error without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		writeError(w, r, statusFor(de.Code), de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeUserNotFound,
		model.ErrCodeProductNotFound,
		model.ErrCodeColorNotFound,
		model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeInsufficientStock, model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeValidation,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidStatus,
		model.ErrCodeInvalidID,
		model.ErrCodeInvalidJSON,
		model.ErrCodeAlreadyInWishlist:
		return http.StatusBadRequest
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into dst, writing a 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "request body must be valid JSON", logger)
		return false
	}
	return true
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	if !decodeJSON(w, r, dst, logger) {
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, validator.Message(err), logger)
		return false
	}

	return true
}

// pathID parses a UUID path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid "+name+" parameter", logger)
		return 0, false
	}
	return n, true
}

// callerID returns the authenticated caller set by middleware.RequireUser.
func callerID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", logger)
		return uuid.Nil, false
	}
	return id, true
}
