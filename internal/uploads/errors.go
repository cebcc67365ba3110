package uploads

import "errors"

var (
	// ErrNotFound indicates the upload does not exist, belongs to another
	// user, or has expired.
	ErrNotFound = errors.New("temp upload not found")
	// ErrInvalidInput indicates a rejected upload request.
	ErrInvalidInput = errors.New("invalid upload")
)
