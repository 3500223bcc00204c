package domain

import "fmt"

// NumberType is the carrier product class of a number.
type NumberType string

const (
	NumberTypeLocal    NumberType = "local"
	NumberTypeTollFree NumberType = "toll_free"
)

func (t NumberType) Valid() bool {
	return t == NumberTypeLocal || t == NumberTypeTollFree
}

// EntityStatus is the lifecycle of numbers and pools: active, then pending_deletion while the
// carrier release is outstanding, then deleted.
type EntityStatus string

const (
	StatusActive          EntityStatus = "active"
	StatusPendingDeletion EntityStatus = "pending_deletion"
	StatusDeleted         EntityStatus = "deleted"
)

var allowedTransitions = map[EntityStatus][]EntityStatus{
	StatusActive:          {StatusPendingDeletion, StatusDeleted},
	StatusPendingDeletion: {StatusDeleted},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to EntityStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a lifecycle step and returns the new status.
func Transition(from, to EntityStatus) (EntityStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
