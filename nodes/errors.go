package nodes

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAlias is returned when no alias in the scope chain matches a column reference.
	ErrNoAlias = errors.New("no matching alias in scope")
	// ErrAmbiguousAlias is returned when more than one alias at one scope level matches.
	ErrAmbiguousAlias = errors.New("ambiguous alias")
	// ErrAliasTypeMismatch is returned when a named alias is bound to a different row type.
	ErrAliasTypeMismatch = errors.New("alias row type mismatch")
	// ErrInvalidJoin is returned when a validated join condition never references the joined alias.
	ErrInvalidJoin = errors.New("invalid join")
)

// InvalidJoinError reports a join whose ON clause does not use the joined alias.
type InvalidJoinError struct {
	Alias string
}

func (e *InvalidJoinError) Error() string {
	return fmt.Sprintf("invalid join: on clause does not reference %s", e.Alias)
}

func (e *InvalidJoinError) Is(target error) bool { return target == ErrInvalidJoin }

// RenderError carries a failure out of a rendering traversal. Visitors panic
// with it and the terminal call converts it back into an error with Catch.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

// Raise aborts the current traversal with err.
func Raise(err error) {
	panic(&RenderError{Err: err})
}

// Catch recovers a RenderError raised below it and stores it in errp.
// Other panics propagate. Use as: defer nodes.Catch(&err).
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if re, ok := r.(*RenderError); ok {
		*errp = re.Err
		return
	}
	panic(r)
}

// must unwraps a (value, error) pair inside a traversal.
func must[T any](v T, err error) T {
	if err != nil {
		Raise(err)
	}
	return v
}
