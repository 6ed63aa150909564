package api

import "fmt"

type RequestError struct {
	StatusCode   int
	Err          error
	Body         string
	ErrorDetails map[string]any
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status: %d err: %v message: %s", r.StatusCode, r.Err, r.Body)
}

func (r *RequestError) Unwrap() error {
	return r.Err
}

// ServerError reports whether the remote answered with a 5xx status.
func (r *RequestError) ServerError() bool {
	return r.StatusCode >= 500
}
