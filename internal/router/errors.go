package router

import (
	"errors"
	"fmt"

	"relayrouter/internal/destination"
)

var (
	// ErrDuplicateDestination is matched by DuplicateDestinationError
	ErrDuplicateDestination = errors.New("destination instance already configured")

	// ErrUnknownDestination is matched by UnknownDestinationError
	ErrUnknownDestination = errors.New("destination instance not configured")

	// ErrUnknownMethod is returned by New for an unsupported routing method
	ErrUnknownMethod = errors.New("unknown router method")
)

// DuplicateDestinationError is returned when a (server, instance) pair is
// added to a hash router that already holds it.
type DuplicateDestinationError struct {
	Instance destination.Instance
}

func (e *DuplicateDestinationError) Error() string {
	return fmt.Sprintf("destination instance (%s, %s) already configured", e.Instance.Server, e.Instance.Instance)
}

func (e *DuplicateDestinationError) Is(target error) bool {
	return target == ErrDuplicateDestination
}

// UnknownDestinationError is returned when removing a (server, instance) pair
// the hash router does not hold.
type UnknownDestinationError struct {
	Instance destination.Instance
}

func (e *UnknownDestinationError) Error() string {
	return fmt.Sprintf("destination instance (%s, %s) not configured", e.Instance.Server, e.Instance.Instance)
}

func (e *UnknownDestinationError) Is(target error) bool {
	return target == ErrUnknownDestination
}
