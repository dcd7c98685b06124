package model

import "time"

// Customer represents a customer identity as stored in the `customers`
// table.  Customers have no password; their token is the sole credential
// and is treated as unguessable.  A customer record is created either by
// self-service signup or by a business issuing a provisional "New Customer"
// placeholder that the customer completes later through the setup flow.
//
// Fields:
//
//	ID          – primary key identifier.
//	Token       – opaque identifier with the cust_ prefix, embedded in the QR code.
//	Name        – display name ("New Customer" while provisional).
//	Phone       – contact phone number, may be empty.
//	Provisional – true until the customer completes the setup step.
type Customer struct {
	ID          uint64    // customers.id
	Token       string    // customers.token
	Name        string    // customers.name
	Phone       string    // customers.phone
	Provisional bool      // customers.provisional
	CreatedAt   time.Time // customers.created_at
	UpdatedAt   time.Time // customers.updated_at
}

// PlaceholderName is the display name given to provisional customers
// created by a business at the scan terminal.
const PlaceholderName = "New Customer"
