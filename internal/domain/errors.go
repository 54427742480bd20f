package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrBackendFailure   = errors.New("backend failure")
	ErrPostProcessing   = errors.New("post-processing failure")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
