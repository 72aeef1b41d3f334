package service

import "errors"

// Sentinel errors surfaced to users. Handlers and the chat router translate
// these into messages that name the corrective action where one exists.
var (
	ErrNotAuthorized      = errors.New("caller is not the main authority")
	ErrAdminNotRegistered = errors.New("caller is not a registered admin")
	ErrClientNotFound     = errors.New("client not found")
	ErrNutNotFound        = errors.New("nut not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrInvalidPackages    = errors.New("invalid packages value, use a positive integer")
	ErrInvalidCredit      = errors.New("invalid credit value, use a non-negative number")
	ErrEmptyName          = errors.New("name must not be empty")
)
