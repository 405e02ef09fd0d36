// Package model holds the domain entities shared between the repository and
// service layers, plus sentinel errors that cross those layers.
package model

import "errors"

var (
	// ErrNotFound is returned by repositories when a requested record does
	// not exist. Services decide how much of that fact may leak to clients.
	ErrNotFound = errors.New("record not found")

	// ErrEmailExists and ErrPhoneExists report which unique field collided
	// during registration. Email is checked first when both collide.
	ErrEmailExists = errors.New("email already registered")
	ErrPhoneExists = errors.New("phone number already registered")
)
