package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/meeting-planner/internal/application"
)

var (
	errBadRequestBody = errors.New("invalid request body")
	errInvalidID      = errors.New("invalid identifier")
	errMissingUser    = errors.New("authentication required")
)

// invitationLinkMessage is the only error text the public invitation endpoint
// ever reveals, regardless of whether the link was malformed, expired, or
// pointed at a record that never existed.
const invitationLinkMessage = "Invalid or expired link"

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		conflictErr     *application.ConflictError
		validationErr   *application.ValidationError
		duplicateErr    *application.DuplicateError
		preconditionErr *application.PreconditionError
	)

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "You are not allowed to perform this operation",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found"})
	case errors.Is(err, application.ErrAlreadyMaterialized):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_MATERIALIZED",
			Message:   "The meeting has already been started",
		})
	case errors.As(err, &conflictErr):
		// A reservation conflict unwraps to a validation error, but callers
		// get the richer conflict payload.
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "RESERVATION_CONFLICT",
			Message:   conflictErr.Error(),
			Conflict: &conflictDTO{
				ResourceKind:  conflictErr.ResourceKind,
				ResourceID:    conflictErr.ResourceID,
				ResourceLabel: conflictErr.ResourceLabel,
				ReservationID: conflictErr.ReservationID,
			},
		})
	case errors.As(err, &duplicateErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "DUPLICATE",
			Message:   duplicateErr.Error(),
		})
	case errors.As(err, &preconditionErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "PRECONDITION_FAILED",
			Message:   preconditionErr.Reason,
		})
	case errors.As(err, &validationErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Validation failed",
			Errors:  validationErr.FieldErrors,
		})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflict  *conflictDTO      `json:"conflict,omitempty"`
}

type conflictDTO struct {
	ResourceKind  string `json:"resource_kind"`
	ResourceID    string `json:"resource_id"`
	ResourceLabel string `json:"resource_label,omitempty"`
	ReservationID string `json:"reservation_id"`
}
