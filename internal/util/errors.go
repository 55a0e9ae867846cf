package util

import "errors"

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidPassword   = errors.New("invalid interviewer password")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidFileType   = errors.New("unsupported résumé file type")
	ErrFileTooLarge      = errors.New("résumé file too large")
	ErrEmptyAnswer       = errors.New("answer is required")
)
