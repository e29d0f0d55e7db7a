package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"lease-reconciliation-service/internal/repositories"
)

var (
	ErrNotFound          = repositories.ErrNotFound
	ErrPropertyLeased    = errors.New("property is already leased")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Actor identifies who made a change, for the audit log.
type Actor struct {
	UserID        string
	CorrelationID string
}

func (a Actor) user() string {
	if a.UserID == "" {
		return "system"
	}
	return a.UserID
}

func auditDetails(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return b
}
