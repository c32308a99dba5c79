package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateUnitID checks that id can be used as a storage key by every adapter.
// Ids are used verbatim as file names and redis keys, so path separators,
// dot-prefixed names and control characters are rejected.
func ValidateUnitID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidUnitID)
	case strings.TrimSpace(id) != id:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidUnitID, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidUnitID, id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidUnitID, id)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidUnitID, id)
		}
	}
	return nil
}
