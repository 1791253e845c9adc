package queue

import "errors"

// ErrAllocatorExhausted is returned when an allocator cannot supply another
// node.
var ErrAllocatorExhausted = errors.New("queue: allocator exhausted")

// ErrNilConstructor is returned by the emplace family when no constructor
// is supplied.
var ErrNilConstructor = errors.New("queue: nil constructor")
