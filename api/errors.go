package api

import (
	"errors"
	"fmt"
)

// Common error variables for easy error checking
var (
	// ErrEncodingInput is returned when the source of an upload directive cannot be read
	ErrEncodingInput = errors.New("encoding input error")

	// ErrConnectionFailed is returned when the printer cannot be reached (transport unavailable)
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNetworkError is returned when a read or write fails on an established connection
	ErrNetworkError = errors.New("network error")

	// ErrInvalidArgument is returned when invalid arguments are provided
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCommand is returned when Encode is given a nil or foreign command
	ErrUnknownCommand = errors.New("unknown command")
)

// EncodingInputError represents a failure to read the payload of an upload directive.
// It is fatal to the single upload, never to the Session.
type EncodingInputError struct {
	Path string
	Err  error
}

func (e *EncodingInputError) Error() string {
	return fmt.Sprintf("reading input file %q: %v", e.Path, e.Err)
}

func (e *EncodingInputError) Is(target error) bool {
	return target == ErrEncodingInput
}

func (e *EncodingInputError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrEncodingInput
}

// ConnectionError represents an error when connecting to the printer fails.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

func (e *ConnectionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConnectionFailed
}

// NetworkError represents a write or non-timeout read failure on an established connection.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkError
}

func (e *NetworkError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNetworkError
}

// InvalidArgumentError represents an error when invalid arguments are provided.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
