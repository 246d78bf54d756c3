package zone

import (
	"fmt"
)

// MoveContents transfers ownership of the contents of a Frozen zone to a zone which has
// none. Afterwards from.Contents() returns nil while from.Serving() is unchanged until
// from is retired. It is used both to carry unchanged
// contents into a new zone instance and to hand them back when that instance is
// abandoned, in which case the abandoned instance must be frozen first.
func MoveContents(from, to *Zone) error {
	from.mu.Lock()
	if from.state != Frozen {
		state := from.state
		from.mu.Unlock()
		return fmt.Errorf("%s is %s: %w", from.name, state, ErrNotFrozen)
	}
	c := from.contents
	if c == nil || c.owner != from {
		from.mu.Unlock()
		return fmt.Errorf("%s: %w", from.name, ErrNotOwner)
	}
	from.contents = nil
	from.mu.Unlock()

	to.mu.Lock()
	if to.contents != nil {
		to.mu.Unlock()
		from.mu.Lock()
		from.contents = c // Put it back
		from.mu.Unlock()
		return fmt.Errorf("%s: %w", to.name, ErrHasContents)
	}
	c.owner = to
	to.contents = c
	to.serving.Store(c)
	to.mu.Unlock()

	return nil
}
