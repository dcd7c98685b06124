package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelora/qr-loyalty/internal/award"
	"github.com/avelora/qr-loyalty/internal/model"
)

// MembershipRepo provides read access to the 'memberships' table for the
// customer-facing state endpoints.  Mutations during an award go through
// AwardStore so they stay inside one transaction.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

// BalanceRow is one line of a customer's wallet: the membership balance plus
// enough business context to render a card.
type BalanceRow struct {
	MembershipID    uint64 `json:"membership_id"`
	BusinessID      uint64 `json:"business_id"`
	BusinessName    string `json:"business_name"`
	Points          int    `json:"points"`
	RewardThreshold int    `json:"reward_threshold"`
	RewardMessage   string `json:"reward_message"`
	RewardPending   bool   `json:"reward_pending"`
}

// ListByCustomer returns every membership of the given customer together
// with the owning business's program settings.
func (r *MembershipRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BalanceRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id, b.id, b.name, m.points, b.reward_threshold, b.reward_message, m.reward_pending
		 FROM memberships m
		 JOIN businesses b ON b.id = m.business_id
		 WHERE m.customer_id = ?
		 ORDER BY m.updated_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BalanceRow
	for rows.Next() {
		var b BalanceRow
		if err := rows.Scan(&b.MembershipID, &b.BusinessID, &b.BusinessName, &b.Points,
			&b.RewardThreshold, &b.RewardMessage, &b.RewardPending); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ClearRewardPending drops the reward flags after a display has reported
// them once, so each reward celebrates exactly one time.
func (r *MembershipRepo) ClearRewardPending(ctx context.Context, membershipIDs []uint64) error {
	if len(membershipIDs) == 0 {
		return nil
	}
	query := "UPDATE memberships SET reward_pending=0 WHERE id IN (?"
	args := []interface{}{membershipIDs[0]}
	for _, id := range membershipIDs[1:] {
		query += ",?"
		args = append(args, id)
	}
	query += ")"
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// ListEvents returns the most recent ledger rows for a membership, newest
// first, capped at limit.
func (r *MembershipRepo) ListEvents(ctx context.Context, membershipID uint64, limit int) ([]model.PointEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, membership_id, delta, reason, created_at
		 FROM point_events WHERE membership_id=? ORDER BY id DESC LIMIT ?`,
		membershipID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PointEvent
	for rows.Next() {
		var e model.PointEvent
		if err := rows.Scan(&e.ID, &e.MembershipID, &e.Delta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AwardStore is the SQL implementation of the award transaction contract.
// Every award runs in one transaction with the membership row locked, so
// concurrent terminals scanning the same customer serialize instead of
// racing on the point total.
type AwardStore struct{ DB *sql.DB }

func NewAwardStore(db *sql.DB) *AwardStore { return &AwardStore{DB: db} }

// Begin opens an award transaction.
func (s *AwardStore) Begin(ctx context.Context) (award.Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &awardTx{tx: tx}, nil
}

type awardTx struct{ tx *sql.Tx }

// FindBusinessByID loads an active business.  Not-found maps to (nil, nil)
// per the award contract; errors are reserved for transport failures.
func (t *awardTx) FindBusinessByID(ctx context.Context, id uint64) (*model.Business, error) {
	var b model.Business
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, token, name, points_per_scan, reward_threshold, reward_message
		 FROM businesses WHERE id=? AND is_active=1 LIMIT 1`, id).
		Scan(&b.ID, &b.Token, &b.Name, &b.PointsPerScan, &b.RewardThreshold, &b.RewardMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindCustomerByToken loads a customer by token, (nil, nil) when unknown.
func (t *awardTx) FindCustomerByToken(ctx context.Context, tok string) (*model.Customer, error) {
	var c model.Customer
	err := t.tx.QueryRowContext(ctx,
		"SELECT id, token, name, phone, provisional FROM customers WHERE token=? LIMIT 1", tok).
		Scan(&c.ID, &c.Token, &c.Name, &c.Phone, &c.Provisional)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateMembership returns the membership for the pair, creating it
// with zero points on first scan.  The SELECT ... FOR UPDATE locks the row
// for the rest of the transaction; a freshly inserted row is owned by this
// transaction until commit anyway.
func (t *awardTx) FindOrCreateMembership(ctx context.Context, customerID, businessID uint64) (model.Membership, bool, error) {
	var m model.Membership
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, customer_id, business_id, points, reward_pending
		 FROM memberships WHERE customer_id=? AND business_id=? LIMIT 1 FOR UPDATE`,
		customerID, businessID).
		Scan(&m.ID, &m.CustomerID, &m.BusinessID, &m.Points, &m.RewardPending)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Membership{}, false, err
	}
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO memberships (customer_id, business_id, points) VALUES (?,?,0)",
		customerID, businessID)
	if err != nil {
		return model.Membership{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Membership{}, false, err
	}
	return model.Membership{ID: uint64(id), CustomerID: customerID, BusinessID: businessID}, true, nil
}

// UpdateMembershipPoints stores the final balance and the reward flag.
func (t *awardTx) UpdateMembershipPoints(ctx context.Context, membershipID uint64, points int, rewardPending bool) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE memberships SET points=?, reward_pending=?, updated_at=NOW() WHERE id=?",
		points, rewardPending, membershipID)
	return err
}

// AppendPointEvent writes one ledger row.
func (t *awardTx) AppendPointEvent(ctx context.Context, membershipID uint64, delta int, reason string) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO point_events (membership_id, delta, reason) VALUES (?,?,?)",
		membershipID, delta, reason)
	return err
}

func (t *awardTx) Commit() error   { return t.tx.Commit() }
func (t *awardTx) Rollback() error { return t.tx.Rollback() }
