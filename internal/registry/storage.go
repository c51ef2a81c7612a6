package registry

import "errors"

// ErrNotFound is returned when no loan with the requested id exists.
var ErrNotFound = errors.New("loan not found")

// Storage persists issued loans.
type Storage interface {
	Add(l *Loan) error
	Get(id string) (*Loan, error)
	// List returns all loans, outstanding first, ordered by due date.
	List() ([]*Loan, error)
	MarkReturned(id string) error
	Close() error
}
