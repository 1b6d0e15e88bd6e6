// internal/services/errors.go
package services

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrEmbeddingFailed     = errors.New("embedding request failed")
	ErrEmbeddingDimensions = errors.New("embedding dimension mismatch")
	ErrSearchTimeout       = errors.New("search timed out")
	ErrSearchUnavailable   = errors.New("search backend unavailable")
	ErrSearchEventDropped  = errors.New("search event dropped")
)
