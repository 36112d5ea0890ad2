package store

import "errors"

var (
	ErrNotFound       = errors.New("token not found")
	ErrTokenExpired   = errors.New("cached token expired")
	ErrInvalidProfile = errors.New("profile name is required")
)
