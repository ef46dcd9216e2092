package utils

import "github.com/benbjohnson/immutable"

// intHasher hashes arena indices for immutable maps.
type intHasher struct{}

// Hash computes the uint32 hash of key using Knuth's multiplicative method.
func (intHasher) Hash(key int) uint32 { return uint32(key) * 2654435761 }

// Equal checks two keys for equality.
func (intHasher) Equal(a, b int) bool { return a == b }

// IntHasher returns a hasher for int-keyed immutable maps.
func IntHasher() immutable.Hasher[int] { return intHasher{} }
