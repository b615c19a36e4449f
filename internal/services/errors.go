package services

import "fmt"

// ValidationError reports bad input shape or range (score out of bounds,
// wrong panel count, missing fields).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ForbiddenError reports a failed role or ownership check.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// NotFoundError reports a missing batch, review, student or faculty.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// CapacityError reports an attempt to assign students to a full batch.
type CapacityError struct {
	BatchID uint
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("batch %d is already full", e.BatchID)
}

// InvalidStateError reports a mutation attempted on a completed review.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }
