package resumes

import "errors"

var (
	// ErrNotFound indicates the user has no master resume on file.
	ErrNotFound = errors.New("master resume not found")
	// ErrAlreadyExists indicates the user already has a master resume.
	ErrAlreadyExists = errors.New("master resume already exists")
	// ErrInvalidInput indicates the payload failed validation.
	ErrInvalidInput = errors.New("invalid resume payload")
	// ErrVersionConflict indicates a concurrent update won the race.
	ErrVersionConflict = errors.New("resume version conflict")
)
