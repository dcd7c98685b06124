package model

import "time"

// Discount is a promotional record, either scoped to one business or global
// when BusinessID is nil.  Discounts are independent of memberships and are
// read-only from the customer's perspective.  Unlike the other models it
// carries json tags, because handlers return it verbatim.
type Discount struct {
	ID          uint64    `json:"id"`          // discounts.id
	BusinessID  *uint64   `json:"business_id"` // discounts.business_id (NULL for global promotions)
	Title       string    `json:"title"`       // discounts.title
	Description string    `json:"description"` // discounts.description
	IsActive    bool      `json:"is_active"`   // discounts.is_active
	CreatedAt   time.Time `json:"created_at"`  // discounts.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // discounts.updated_at
}
