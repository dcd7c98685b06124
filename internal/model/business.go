package model

import "time"

// Business represents an enrolled business as stored in the `businesses`
// table.  A business logs in with email and password, configures how many
// points a single scan awards and at what total a reward is due, and styles
// the QR codes it issues.  The json tags are omitted because these structs
// are used internally by the repository layer; handlers define separate
// response types with appropriate tags.
//
// Fields:
//
//	ID              – primary key identifier.
//	Token           – opaque identifier with the biz_ prefix, embedded in QR codes.
//	Email           – unique login email.
//	PasswordHash    – bcrypt hashed password.
//	Name            – public display name.
//	Description     – public profile text.
//	PointsPerScan   – points awarded per scan (0 means use the configured default).
//	RewardThreshold – point total at which a reward is due (0 means default).
//	RewardMessage   – message shown to the customer when a reward is won.
//	IsActive        – whether the account is active.
type Business struct {
	ID              uint64    // businesses.id
	Token           string    // businesses.token
	Email           string    // businesses.email
	PasswordHash    string    // businesses.password_hash
	Name            string    // businesses.name
	Description     string    // businesses.description
	PointsPerScan   int       // businesses.points_per_scan
	RewardThreshold int       // businesses.reward_threshold
	RewardMessage   string    // businesses.reward_message
	Style           QRStyle   // embedded styling columns
	IsActive        bool      // businesses.is_active
	CreatedAt       time.Time // businesses.created_at
	UpdatedAt       time.Time // businesses.updated_at
}

// QRStyle groups the styling preferences a business applies to the QR codes
// it issues.  Unsupported options are ignored by the renderer, which falls
// back to a plain render rather than failing the request.
type QRStyle struct {
	LogoURL         string // businesses.logo_url
	ForegroundColor string // businesses.foreground_color (hex, e.g. "#1a1a2e")
	CornerShape     string // businesses.corner_shape
	DotShape        string // businesses.dot_shape
}
