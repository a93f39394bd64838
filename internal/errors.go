package internal

import "errors"

var (
	// ErrInvalidArgument reports malformed caller input: unknown metric
	// names, dimension mismatches, empty embedding sets, bad paths.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState reports an operation attempted without the required
	// prior configuration, e.g. saving results without a results directory.
	ErrInvalidState = errors.New("invalid state")

	// ErrExhausted signals that an optimizer has no more work. It is the
	// expected terminal outcome of a run loop, comparable to io.EOF, and
	// must never be treated as a failure.
	ErrExhausted = errors.New("optimizer exhausted")

	ErrNotFound = errors.New("not found")
	ErrNoIndex  = errors.New("no vector index available")
)
