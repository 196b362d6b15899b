package layer

import "errors"

// ErrSize is returned when a layer is created with a non-positive dimension
var ErrSize = errors.New("layer dimensions must be positive")

// ErrBits is returned when a layer feature would not fit into 32 bits
var ErrBits = errors.New("layer feature must have 1 to 32 bits")
