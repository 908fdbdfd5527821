package domain

import "context"

// StateLister supplies the full US state reference list.
type StateLister interface {
	// ListStates returns every known state name + abbreviation pair.
	ListStates(ctx context.Context) ([]StateRef, error)
}
