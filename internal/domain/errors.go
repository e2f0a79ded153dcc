package domain

import "errors"

// ErrorClass buckets provider failures by how the engine should react.
type ErrorClass int

const (
	// ClassTransient covers throttling and momentary unavailability. The next
	// scheduled tick self-heals; nothing is retried beyond the attempt budget.
	ClassTransient ErrorClass = iota
	// ClassConflict is an optimistic-concurrency rejection: the list version
	// moved under us and the diff must be recomputed from a fresh read.
	ClassConflict
	// ClassPermanent means the referenced security group or prefix list no
	// longer exists. Retrying cannot help; the binding needs operator action.
	ClassPermanent
)

// ClassifiedError tags a provider error with its class.
type ClassifiedError struct {
	Class ErrorClass
	Err   error
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }

func (e *ClassifiedError) Unwrap() error { return e.Err }

func Transient(err error) error {
	return &ClassifiedError{Class: ClassTransient, Err: err}
}

func Conflict(err error) error {
	return &ClassifiedError{Class: ClassConflict, Err: err}
}

func Permanent(err error) error {
	return &ClassifiedError{Class: ClassPermanent, Err: err}
}

// ClassOf extracts the class from an error chain. Unclassified errors are
// treated as transient so the next tick gets a chance to recover.
func ClassOf(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassTransient
}
