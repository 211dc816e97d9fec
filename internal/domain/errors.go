package domain

import "errors"

// ErrValidation marks rejected input at the model boundary. Callers can test
// for it with errors.Is.
var ErrValidation = errors.New("validation failed")
