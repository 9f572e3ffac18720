package errors

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrTaskNotFound = errors.New("task not found")
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid entry name")
	ErrCancelled    = errors.New("download cancelled")
	ErrShuttingDown = errors.New("service is shutting down")
)
