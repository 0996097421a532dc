package models

import "time"

// StoreStatus represents the lifecycle status of a store
type StoreStatus string

const (
	StoreStatusPending   StoreStatus = "pending"
	StoreStatusApproved  StoreStatus = "approved"
	StoreStatusRejected  StoreStatus = "rejected"
	StoreStatusSuspended StoreStatus = "suspended"
)

// Store represents a vendor account. UserID is nullable: anonymous store
// submissions are allowed, and an ownerless store can never be claimed
// through "my store" lookups.
type Store struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Username    string      `json:"username" db:"username"`
	Description string      `json:"description" db:"description"`
	Email       string      `json:"email" db:"email"`
	Contact     string      `json:"contact" db:"contact"`
	Address     string      `json:"address" db:"address"`
	Logo        *string     `json:"logo,omitempty" db:"logo"`
	Status      StoreStatus `json:"status" db:"status"`
	IsActive    bool        `json:"isActive" db:"is_active"`
	UserID      *string     `json:"userId,omitempty" db:"user_id"`
	ReviewerID  *string     `json:"reviewerId,omitempty" db:"reviewer_id"`
	ReviewNote  *string     `json:"reviewNote,omitempty" db:"review_note"`
	ReviewedAt  *time.Time  `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// StoreSubmission represents data for submitting a new store
type StoreSubmission struct {
	Name        string  `json:"name" validate:"required"`
	Username    string  `json:"username" validate:"required,min=3"`
	Description string  `json:"description" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Contact     string  `json:"contact" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Logo        *string `json:"logo,omitempty"`
}

// IsVisible is the store half of the marketplace visibility gate
func (s *Store) IsVisible() bool {
	return s.Status == StoreStatusApproved && s.IsActive
}

// storeTransitions is the allowed lifecycle transition table. Rejected and
// suspended stores are never deleted; suspension is reversible.
var storeTransitions = map[StoreStatus][]StoreStatus{
	StoreStatusPending:   {StoreStatusApproved, StoreStatusRejected},
	StoreStatusApproved:  {StoreStatusSuspended},
	StoreStatusSuspended: {StoreStatusApproved},
}

// CanTransitionTo reports whether the store may move to the given status
func (s *Store) CanTransitionTo(next StoreStatus) bool {
	for _, allowed := range storeTransitions[s.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
