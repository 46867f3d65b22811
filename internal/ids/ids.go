// Package ids generates todo identifiers.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator returns a fresh identifier on every call.
type Generator func() string

// New returns a random (version 4) UUID in its canonical string form.
func New() string {
	return uuid.NewString()
}

// Sequence returns a deterministic generator producing prefix-1, prefix-2, ...
// Useful for tests and fixtures.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
