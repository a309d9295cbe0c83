package upstream

import (
	"errors"
	"fmt"
)

// NetworkError means the request could not complete or the upstream answered
// with a non-success status.
type NetworkError struct {
	Url        string
	StatusCode int
	Status     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed: %s", e.Url, e.Status)
	}
	return fmt.Sprintf("request to %s failed: %v", e.Url, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError means the payload did not have the expected JSON or XML shape
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse response from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
