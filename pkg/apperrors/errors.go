package apperrors

import "errors"

var (
	ErrPortNotFound = errors.New("engine port not found")
	ErrQueryFailed  = errors.New("query execution failed")
	ErrMalformedRow = errors.New("malformed embedded metadata encoding")
	ErrWriteFailed  = errors.New("output write failed")
)
