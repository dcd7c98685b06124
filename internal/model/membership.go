package model

import "time"

// Membership joins one customer to one business and carries the running
// point balance.  At most one membership exists per (customer, business)
// pair; the pair is a unique key in the `memberships` table.  A membership
// is created lazily the first time a business scans a given customer.
//
// RewardPending is the explicit reward-claim signal: it is set when a scan
// crosses the reward threshold and cleared after the customer display has
// reported it once.  Presenters react to this flag rather than inferring a
// reward from a point decrease.
type Membership struct {
	ID            uint64    // memberships.id
	CustomerID    uint64    // memberships.customer_id
	BusinessID    uint64    // memberships.business_id
	Points        int       // memberships.points (never negative)
	RewardPending bool      // memberships.reward_pending
	CreatedAt     time.Time // memberships.created_at
	UpdatedAt     time.Time // memberships.updated_at
}

// PointEvent is one row of the append-only point ledger.  Every award writes
// a positive delta; a threshold crossing additionally writes the negative
// reset delta.  The ledger exists for audit and support, the balance on the
// membership row stays authoritative.
type PointEvent struct {
	ID           uint64    // point_events.id
	MembershipID uint64    // point_events.membership_id
	Delta        int       // point_events.delta
	Reason       string    // point_events.reason ("scan", "reward_reset")
	CreatedAt    time.Time // point_events.created_at
}
