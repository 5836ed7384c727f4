package shared

import "errors"

var (

	// common errors
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrDecode     = errors.New("malformed document")

	// auth-specific errors
	ErrUsernameTaken = errors.New("username already taken")
	ErrCodeExpired   = errors.New("code expired")
	ErrInvalidCode   = errors.New("invalid code")
	ErrInvalidToken  = errors.New("invalid token")

	// level-specific errors
	ErrAlreadySolved    = errors.New("level already solved")
	ErrLevelCoolingDown = errors.New("level is cooling down")
)
