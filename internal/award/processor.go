// Package award turns a scan of a customer code into a point increment, a
// lazily created membership, or a reward event.  The whole operation runs
// inside one storage transaction with the membership row locked, so
// concurrent scans from multiple terminals serialize per membership instead
// of racing on the point total.
package award

import (
	"context"
	"errors"

	"github.com/avelora/qr-loyalty/internal/model"
)

// Sentinel errors reported to the scanning terminal.  Anything else coming
// out of Process is a transport or persistence failure and is surfaced as a
// generic unexpected-error outcome by the handler.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrBusinessNotFound = errors.New("business not found")
)

// Result is the outcome contract of one successful award.  It is transient
// and never persisted; the scanning terminal renders it directly.
type Result struct {
	Customer      model.Customer // customer as of this scan
	Business      model.Business // business that performed the scan
	MembershipID  uint64         // membership the points landed on
	PointsAwarded int            // points added by this scan
	Total         int            // stored total after the scan (post-reset when a reward was won)
	NewMember     bool           // membership was created by this scan
	RewardWon     bool           // this scan crossed the reward threshold
	RewardMessage string         // business reward message, set only when RewardWon
}

// Store opens award transactions.  The SQL implementation lives in the
// repository package; tests substitute an in-memory fake.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the transaction-scoped data-access contract of the award operation.
// Lookups return nil (not an error) when no record exists; errors are
// reserved for transport failures.  FindOrCreateMembership must lock the
// returned row for the duration of the transaction.
type Tx interface {
	FindBusinessByID(ctx context.Context, id uint64) (*model.Business, error)
	FindCustomerByToken(ctx context.Context, tok string) (*model.Customer, error)
	FindOrCreateMembership(ctx context.Context, customerID, businessID uint64) (model.Membership, bool, error)
	UpdateMembershipPoints(ctx context.Context, membershipID uint64, points int, rewardPending bool) error
	AppendPointEvent(ctx context.Context, membershipID uint64, delta int, reason string) error
	Commit() error
	Rollback() error
}

// Ledger reasons written by Process.
const (
	ReasonScan        = "scan"
	ReasonRewardReset = "reward_reset"
)

// Processor performs award transactions.  The default values cover
// businesses that never configured their program settings.
type Processor struct {
	Store                  Store
	DefaultPointsPerScan   int
	DefaultRewardThreshold int
}

// Process performs one award of customerToken against businessID:
//
//  1. resolve the customer; unknown token fails with ErrCustomerNotFound
//     and zero writes;
//  2. find or create the membership for the pair (NewMember on create);
//  3. increment by the business points-per-scan value;
//  4. when the new total reaches the reward threshold, store the carry-over
//     (total minus threshold) and flag the reward; overshoot is preserved,
//     never discarded, and the stored total never goes negative;
//  5. persist and report.
//
// Process is intentionally not idempotent: every successful call awards
// points, including an immediate re-scan of the same code.
func (p *Processor) Process(ctx context.Context, businessID uint64, customerToken string) (Result, error) {
	tx, err := p.Store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	biz, err := tx.FindBusinessByID(ctx, businessID)
	if err != nil {
		return Result{}, err
	}
	if biz == nil {
		return Result{}, ErrBusinessNotFound
	}

	cust, err := tx.FindCustomerByToken(ctx, customerToken)
	if err != nil {
		return Result{}, err
	}
	if cust == nil {
		return Result{}, ErrCustomerNotFound
	}

	m, created, err := tx.FindOrCreateMembership(ctx, cust.ID, biz.ID)
	if err != nil {
		return Result{}, err
	}

	perScan := biz.PointsPerScan
	if perScan <= 0 {
		perScan = p.DefaultPointsPerScan
	}
	if perScan <= 0 {
		perScan = 1
	}
	threshold := biz.RewardThreshold
	if threshold <= 0 {
		threshold = p.DefaultRewardThreshold
	}

	total := m.Points + perScan
	rewardWon := threshold > 0 && total >= threshold
	stored := total
	if rewardWon {
		// Carry-over reset: the overshoot beyond the threshold remains on
		// the balance so multi-point scans are never under-rewarded.
		stored = total - threshold
	}

	if err := tx.UpdateMembershipPoints(ctx, m.ID, stored, rewardWon); err != nil {
		return Result{}, err
	}
	if err := tx.AppendPointEvent(ctx, m.ID, perScan, ReasonScan); err != nil {
		return Result{}, err
	}
	if rewardWon {
		if err := tx.AppendPointEvent(ctx, m.ID, -threshold, ReasonRewardReset); err != nil {
			return Result{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true

	res := Result{
		Customer:      *cust,
		Business:      *biz,
		MembershipID:  m.ID,
		PointsAwarded: perScan,
		Total:         stored,
		NewMember:     created,
		RewardWon:     rewardWon,
	}
	if rewardWon {
		res.RewardMessage = biz.RewardMessage
	}
	return res, nil
}
