package apperror

import "errors"

// As unwraps err to an *AppError if one is present in its chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
