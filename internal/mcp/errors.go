package mcp

import (
	"errors"
	"fmt"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/blob"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects to find a valid id"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "ADL and municipality are required and counts must not be negative"}
	case errors.Is(err, profile.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Images must be http(s) URLs or data:image/ URIs"}
	case errors.Is(err, autosave.ErrInvalidPatch):
		return &APIError{Code: "INVALID_PATCH", Message: err.Error(), RecoveryHint: "Send a JSON object using the stored field names"}
	case errors.Is(err, autosave.ErrSessionClosed):
		return &APIError{Code: "SESSION_CLOSED", Message: "editor closed", RecoveryHint: "Retry the edit to open a new editor"}
	case errors.Is(err, export.ErrUnknownFormat):
		return &APIError{Code: "EXPORT_UNKNOWN_FORMAT", Message: err.Error(), RecoveryHint: "Use json, csv or xlsx"}
	case errors.Is(err, export.ErrProjectRequired):
		return &APIError{Code: "EXPORT_PROJECT_REQUIRED", Message: err.Error(), RecoveryHint: "Pass project_id for CSV exports"}
	case errors.Is(err, export.ErrNoSink):
		return &APIError{Code: "EXPORT_NO_SINK", Message: err.Error(), RecoveryHint: "Export inline or configure export.driver"}
	case errors.Is(err, blob.ErrExists):
		return &APIError{Code: "EXPORT_CONFLICT", Message: err.Error(), RecoveryHint: "Retry the export"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
