package models

import "errors"

var (
	// ErrNotFound indicates a point lookup matched no row
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates another account already uses the email
	ErrEmailTaken = errors.New("email already registered")
)
