// Package simerr collects the small error taxonomy shared across the
// simulator: sentinel values meant to be wrapped with fmt.Errorf("...: %w")
// at the raising site and matched with errors.Is by callers.
package simerr

import "errors"

var (
	// ErrInvalidArgument is raised by constructors when a parameter falls
	// outside its documented range. Fatal for the current simulation run.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIdentifierSpaceExhausted is raised by the Coordinator when the
	// retry budget for identifier collisions during join is exceeded.
	ErrIdentifierSpaceExhausted = errors.New("identifier space exhausted")

	// ErrTimeout models a failed simulated RPC (Ping or FindNode). It is
	// always recovered at the call site; this simulation never actually
	// produces it, but the branch must stay reachable for Bucket eviction
	// and lookup-skip tests.
	ErrTimeout = errors.New("timeout")

	// ErrIncomparableTargets is raised when two distance-ranked entries
	// computed against different targets are compared.
	ErrIncomparableTargets = errors.New("incomparable targets")
)
