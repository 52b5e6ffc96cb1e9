// Package storage persists the history of fetched statistics in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/homestats/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidRecord = errors.New("invalid snapshot")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSnapshot checks a snapshot before it is written.
func validateSnapshot(snapshot *model.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}
	if snapshot.FetchedAt.IsZero() {
		return fmt.Errorf("%w: missing fetch time", ErrInvalidRecord)
	}
	return nil
}
