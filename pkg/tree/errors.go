package tree

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for the tree package.
var (
	// ErrCyclicHierarchy indicates records whose parent chain loops back on itself.
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")

	// ErrUnknownKey indicates a key that has no live node in the index.
	ErrUnknownKey = errors.New("unknown key")
)

// CycleError reports the keys forming a parent cycle, starting and ending
// with the same key. A self-parented record yields two identical entries.
type CycleError struct {
	Keys []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicHierarchy, strings.Join(e.Keys, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicHierarchy
}
