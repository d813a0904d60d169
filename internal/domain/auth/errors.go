package auth

import "errors"

// ErrInvalidTokenConfig is returned when the signing secrets are unusable.
var ErrInvalidTokenConfig = errors.New("access and refresh secrets must be set and distinct")
