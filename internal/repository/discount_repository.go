package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/qr-loyalty/internal/model"
)

// DiscountRepo provides CRUD operations for promotional discounts.  A
// discount with a NULL business_id is a global promotion visible to every
// customer; otherwise it belongs to one business and only that business may
// edit it.
type DiscountRepo struct{ DB *sql.DB }

func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{DB: db} }

const discountColumns = "id,business_id,title,description,is_active,created_at,updated_at"

// Create inserts a discount.  Pass nil businessID for a global promotion.
func (r *DiscountRepo) Create(ctx context.Context, businessID *uint64, title, description string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO discounts (business_id, title, description, is_active) VALUES (?,?,?,1)",
		businessID, title, description)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a discount.
func (r *DiscountRepo) GetByID(ctx context.Context, id uint64) (model.Discount, error) {
	var d model.Discount
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+discountColumns+" FROM discounts WHERE id=? LIMIT 1", id).
		Scan(&d.ID, &d.BusinessID, &d.Title, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Update edits a discount owned by the given business.  Editing a global
// discount or someone else's discount yields ErrForbidden.
func (r *DiscountRepo) Update(ctx context.Context, id, businessID uint64, title, description string, active bool) error {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.BusinessID == nil || *d.BusinessID != businessID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE discounts SET title=?, description=?, is_active=?, updated_at=NOW() WHERE id=?",
		title, description, active, id)
	return err
}

// Delete removes a discount owned by the given business.
func (r *DiscountRepo) Delete(ctx context.Context, id, businessID uint64) error {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.BusinessID == nil || *d.BusinessID != businessID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM discounts WHERE id=?", id)
	return err
}

// ListForBusiness returns a business's own discounts, newest first.
func (r *DiscountRepo) ListForBusiness(ctx context.Context, businessID uint64) ([]model.Discount, error) {
	return r.list(ctx,
		"SELECT "+discountColumns+" FROM discounts WHERE business_id=? ORDER BY id DESC", businessID)
}

// ListActive returns every active discount a customer may see: global
// promotions plus business-scoped ones.
func (r *DiscountRepo) ListActive(ctx context.Context) ([]model.Discount, error) {
	return r.list(ctx,
		"SELECT "+discountColumns+" FROM discounts WHERE is_active=1 ORDER BY business_id IS NOT NULL, id DESC")
}

// ListActiveForCustomer returns active discounts relevant to one customer:
// global promotions plus those of businesses the customer is a member of.
func (r *DiscountRepo) ListActiveForCustomer(ctx context.Context, customerID uint64) ([]model.Discount, error) {
	return r.list(ctx,
		`SELECT `+discountColumns+` FROM discounts d
		 WHERE d.is_active=1 AND (d.business_id IS NULL OR d.business_id IN
		   (SELECT business_id FROM memberships WHERE customer_id=?))
		 ORDER BY d.id DESC`, customerID)
}

func (r *DiscountRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Discount, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Discount
	for rows.Next() {
		var d model.Discount
		if err := rows.Scan(&d.ID, &d.BusinessID, &d.Title, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
