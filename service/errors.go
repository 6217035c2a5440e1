package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates a caller-supplied parameter failed
	// validation against the report's declared schema
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDatastore indicates the datastore rejected or failed the query.
	// The underlying error is wrapped and surfaced unchanged to the caller.
	ErrDatastore = errors.New("datastore failure")

	// ErrTimeout indicates execution exceeded the caller's bound. No partial
	// results are delivered.
	ErrTimeout = errors.New("report execution timed out")

	// ErrConfirmationRequired gates write-class reports: without an explicit
	// confirm=true they never run. It is a kind of invalid parameter.
	ErrConfirmationRequired = fmt.Errorf("%w: write-class report requires confirm=true", ErrInvalidParameter)
)
