// Package repository contains data access logic separated from HTTP
// handlers. Sentinel values defined here let handlers distinguish failure
// scenarios without inspecting SQL errors.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete or update cannot proceed because of
// dependent state, such as deleting a branch that still holds inventory.
// Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates a unique key, such as a
// branch code or product SKU that is already taken.
var ErrDuplicate = errors.New("duplicate")

// containsDupCode reports whether err is a MySQL duplicate-key error (1062).
func containsDupCode(err error) bool {
	return strings.Contains(err.Error(), "1062")
}
