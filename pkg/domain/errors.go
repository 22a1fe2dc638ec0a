package domain

import "errors"

// Domain errors for type validation.
var (
	ErrInvalidChunkID  = errors.New("invalid chunk id")
	ErrInvalidDocPath  = errors.New("invalid document path")
	ErrEmptyContent    = errors.New("content cannot be empty")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
