package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/avelora/qr-loyalty/internal/model"
)

// CustomerRepo provides access to the 'customers' table.  Customers have no
// credentials; the cust_ token is the only handle the rest of the system
// dereferences.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerColumns = "id,token,name,phone,provisional,created_at,updated_at"

// Create inserts a customer and returns its ID.  Provisional records are
// created by businesses at the terminal with the placeholder name; the
// customer completes them later through the setup flow.
func (r *CustomerRepo) Create(ctx context.Context, tok, name, phone string, provisional bool) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.PlaceholderName
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO customers (token, name, phone, provisional) VALUES (?,?,?,?)",
		tok, name, strings.TrimSpace(phone), provisional)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByToken fetches a customer by its cust_ token.
func (r *CustomerRepo) GetByToken(ctx context.Context, tok string) (model.Customer, error) {
	var c model.Customer
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE token=? LIMIT 1", tok).
		Scan(&c.ID, &c.Token, &c.Name, &c.Phone, &c.Provisional, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Update persists a profile edit and clears the provisional flag; both the
// self-service edit and the setup flow land here.
func (r *CustomerRepo) Update(ctx context.Context, id uint64, name, phone string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE customers SET name=?, phone=?, provisional=0, updated_at=NOW() WHERE id=?",
		strings.TrimSpace(name), strings.TrimSpace(phone), id)
	return err
}

// Delete removes a customer and, via cascading foreign keys, all of its
// memberships.  Explicit account deletion is the only path here.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM customers WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MemberRow is one line of a business's member list: the customer plus the
// point balance the business sees.
type MemberRow struct {
	CustomerID uint64 `json:"customer_id"`
	Token      string `json:"token"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Points     int    `json:"points"`
}

// ListByBusiness returns every customer holding a membership with the given
// business, most recently scanned first.
func (r *CustomerRepo) ListByBusiness(ctx context.Context, businessID uint64) ([]MemberRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.token, c.name, c.phone, m.points
		 FROM memberships m
		 JOIN customers c ON c.id = m.customer_id
		 WHERE m.business_id = ?
		 ORDER BY m.updated_at DESC`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MemberRow
	for rows.Next() {
		var m MemberRow
		if err := rows.Scan(&m.CustomerID, &m.Token, &m.Name, &m.Phone, &m.Points); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
