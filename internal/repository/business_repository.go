package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/avelora/qr-loyalty/internal/model"
	"github.com/avelora/qr-loyalty/internal/utils"
)

// BusinessRepo provides access to the 'businesses' table.
type BusinessRepo struct{ DB *sql.DB }

func NewBusinessRepo(db *sql.DB) *BusinessRepo { return &BusinessRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const businessColumns = "id,token,email,password_hash,name,description,points_per_scan,reward_threshold,reward_message,logo_url,foreground_color,corner_shape,dot_shape,is_active,created_at,updated_at"

// Create inserts a business and returns its ID.  The caller supplies a
// freshly minted biz_ token; the password is hashed here so plaintext never
// travels further than this call.
func (r *BusinessRepo) Create(ctx context.Context, tok, email, password, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO businesses (token, email, password_hash, name) VALUES (?,?,?,?)",
		tok, email, hash, name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a business by normalized email.
func (r *BusinessRepo) GetByEmail(ctx context.Context, email string) (model.Business, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+businessColumns+" FROM businesses WHERE email=? LIMIT 1", email)
}

// GetByID fetches a business by id.
func (r *BusinessRepo) GetByID(ctx context.Context, id uint64) (model.Business, error) {
	return r.get(ctx, "SELECT "+businessColumns+" FROM businesses WHERE id=? LIMIT 1", id)
}

// GetByToken fetches a business by its biz_ token.
func (r *BusinessRepo) GetByToken(ctx context.Context, tok string) (model.Business, error) {
	return r.get(ctx, "SELECT "+businessColumns+" FROM businesses WHERE token=? LIMIT 1", tok)
}

func (r *BusinessRepo) get(ctx context.Context, query string, arg interface{}) (model.Business, error) {
	var b model.Business
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&b.ID, &b.Token, &b.Email, &b.PasswordHash, &b.Name, &b.Description,
		&b.PointsPerScan, &b.RewardThreshold, &b.RewardMessage,
		&b.Style.LogoURL, &b.Style.ForegroundColor, &b.Style.CornerShape, &b.Style.DotShape,
		&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// UpdateProfile persists the editable profile, loyalty-program and QR style
// settings.  Credentials are never touched here.
func (r *BusinessRepo) UpdateProfile(ctx context.Context, b model.Business) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE businesses
		 SET name=?, description=?, points_per_scan=?, reward_threshold=?, reward_message=?,
		     logo_url=?, foreground_color=?, corner_shape=?, dot_shape=?, updated_at=NOW()
		 WHERE id=?`,
		b.Name, b.Description, b.PointsPerScan, b.RewardThreshold, b.RewardMessage,
		b.Style.LogoURL, b.Style.ForegroundColor, b.Style.CornerShape, b.Style.DotShape,
		b.ID)
	return err
}

// List returns every business, newest first.  Used by the admin screens.
func (r *BusinessRepo) List(ctx context.Context) ([]model.Business, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+businessColumns+" FROM businesses ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(
			&b.ID, &b.Token, &b.Email, &b.PasswordHash, &b.Name, &b.Description,
			&b.PointsPerScan, &b.RewardThreshold, &b.RewardMessage,
			&b.Style.LogoURL, &b.Style.ForegroundColor, &b.Style.CornerShape, &b.Style.DotShape,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a business.  Memberships, discounts and refresh tokens go
// with it via ON DELETE CASCADE foreign keys.
func (r *BusinessRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM businesses WHERE id=?", id)
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
