// Package queue defines message payloads exchanged over the message broker.
package queue

// RewardWonEvent is published when a scan crosses a business's reward
// threshold.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type RewardWonEvent struct {
	MembershipID  uint64 `json:"membership_id"`
	CustomerID    uint64 `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	BusinessID    uint64 `json:"business_id"`
	BusinessName  string `json:"business_name"`
	PointsAwarded int    `json:"points_awarded"`
	TotalAfter    int    `json:"total_after"`
	RewardMessage string `json:"reward_message"`
	WonAt         string `json:"won_at"`
}
