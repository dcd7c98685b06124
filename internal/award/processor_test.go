package award

import (
	"context"
	"errors"
	"testing"

	"github.com/avelora/qr-loyalty/internal/model"
)

// fakeStore is an in-memory Store whose transactions only apply writes on
// Commit, mirroring the rollback semantics of the SQL implementation.
type fakeStore struct {
	businesses  map[uint64]model.Business
	customers   map[string]model.Customer
	memberships map[[2]uint64]model.Membership // key: customer ID, business ID
	events      []model.PointEvent
	nextID      uint64

	beginErr  error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		businesses:  map[uint64]model.Business{},
		customers:   map[string]model.Customer{},
		memberships: map[[2]uint64]model.Membership{},
		nextID:      1,
	}
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeTx{store: s}, nil
}

type pendingWrite func(s *fakeStore)

type fakeTx struct {
	store   *fakeStore
	pending []pendingWrite
	done    bool
}

func (t *fakeTx) FindBusinessByID(ctx context.Context, id uint64) (*model.Business, error) {
	if b, ok := t.store.businesses[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (t *fakeTx) FindCustomerByToken(ctx context.Context, tok string) (*model.Customer, error) {
	if c, ok := t.store.customers[tok]; ok {
		return &c, nil
	}
	return nil, nil
}

func (t *fakeTx) FindOrCreateMembership(ctx context.Context, customerID, businessID uint64) (model.Membership, bool, error) {
	key := [2]uint64{customerID, businessID}
	if m, ok := t.store.memberships[key]; ok {
		return m, false, nil
	}
	m := model.Membership{ID: t.store.nextID, CustomerID: customerID, BusinessID: businessID}
	t.store.nextID++
	t.pending = append(t.pending, func(s *fakeStore) { s.memberships[key] = m })
	return m, true, nil
}

func (t *fakeTx) UpdateMembershipPoints(ctx context.Context, membershipID uint64, points int, rewardPending bool) error {
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	t.pending = append(t.pending, func(s *fakeStore) {
		for key, m := range s.memberships {
			if m.ID == membershipID {
				m.Points = points
				m.RewardPending = rewardPending
				s.memberships[key] = m
			}
		}
	})
	return nil
}

func (t *fakeTx) AppendPointEvent(ctx context.Context, membershipID uint64, delta int, reason string) error {
	t.pending = append(t.pending, func(s *fakeStore) {
		s.events = append(s.events, model.PointEvent{MembershipID: membershipID, Delta: delta, Reason: reason})
	})
	return nil
}

func (t *fakeTx) Commit() error {
	t.done = true
	for _, w := range t.pending {
		w(t.store)
	}
	return nil
}

func (t *fakeTx) Rollback() error {
	t.done = true
	t.pending = nil
	return nil
}

func seed(s *fakeStore) (model.Business, model.Customer) {
	b := model.Business{ID: 1, Token: "biz_b1", Name: "Corner Cafe", PointsPerScan: 1, RewardThreshold: 10, RewardMessage: "Free coffee!"}
	c := model.Customer{ID: 2, Token: "cust_c1", Name: "Dana"}
	s.businesses[b.ID] = b
	s.customers[c.Token] = c
	return b, c
}

func membershipOf(s *fakeStore, customerID, businessID uint64) (model.Membership, bool) {
	m, ok := s.memberships[[2]uint64{customerID, businessID}]
	return m, ok
}

func TestProcessUnknownCustomerWritesNothing(t *testing.T) {
	s := newFakeStore()
	seed(s)
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	_, err := p.Process(context.Background(), 1, "cust_nobody")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}
	if len(s.memberships) != 0 || len(s.events) != 0 {
		t.Errorf("expected zero writes, got %d memberships and %d events", len(s.memberships), len(s.events))
	}
}

func TestProcessUnknownBusiness(t *testing.T) {
	s := newFakeStore()
	seed(s)
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	if _, err := p.Process(context.Background(), 99, "cust_c1"); !errors.Is(err, ErrBusinessNotFound) {
		t.Fatalf("err = %v, want ErrBusinessNotFound", err)
	}
}

func TestProcessFirstScanCreatesMembership(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	res, err := p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NewMember {
		t.Error("NewMember = false, want true")
	}
	if res.RewardWon {
		t.Error("RewardWon = true, want false")
	}
	if res.PointsAwarded != 1 || res.Total != 1 {
		t.Errorf("awarded/total = %d/%d, want 1/1", res.PointsAwarded, res.Total)
	}
	m, ok := membershipOf(s, c.ID, b.ID)
	if !ok {
		t.Fatal("membership was not persisted")
	}
	if m.Points != 1 {
		t.Errorf("stored points = %d, want 1", m.Points)
	}
}

func TestProcessSecondScanReusesMembership(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	if _, err := p.Process(context.Background(), b.ID, c.Token); err != nil {
		t.Fatal(err)
	}
	res, err := p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewMember {
		t.Error("NewMember = true on second scan, want false")
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}
	if len(s.memberships) != 1 {
		t.Errorf("memberships = %d, want 1", len(s.memberships))
	}
}

func TestProcessThresholdCrossingResetsWithCarryOver(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	s.memberships[[2]uint64{c.ID, b.ID}] = model.Membership{ID: 50, CustomerID: c.ID, BusinessID: b.ID, Points: 9}
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	res, err := p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !res.RewardWon {
		t.Fatal("RewardWon = false, want true")
	}
	if res.Total != 0 {
		t.Errorf("Total = %d, want 0", res.Total)
	}
	if res.RewardMessage != "Free coffee!" {
		t.Errorf("RewardMessage = %q", res.RewardMessage)
	}
	m, _ := membershipOf(s, c.ID, b.ID)
	if m.Points != 0 {
		t.Errorf("stored points = %d, want 0", m.Points)
	}
	if !m.RewardPending {
		t.Error("RewardPending not set after threshold crossing")
	}
}

func TestProcessOvershootIsPreserved(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	b.PointsPerScan = 3
	s.businesses[b.ID] = b
	s.memberships[[2]uint64{c.ID, b.ID}] = model.Membership{ID: 51, CustomerID: c.ID, BusinessID: b.ID, Points: 9}
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	res, err := p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	// 9 + 3 = 12, threshold 10 -> stored 2; the overshoot must survive.
	if !res.RewardWon || res.Total != 2 {
		t.Errorf("rewardWon/total = %v/%d, want true/2", res.RewardWon, res.Total)
	}
	if res.Total < 0 {
		t.Error("stored total went negative")
	}
}

func TestProcessDefaultsApplyWhenUnconfigured(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	b.PointsPerScan = 0
	b.RewardThreshold = 0
	s.businesses[b.ID] = b
	p := &Processor{Store: s, DefaultPointsPerScan: 2, DefaultRewardThreshold: 4}

	res, err := p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	if res.PointsAwarded != 2 || res.Total != 2 {
		t.Errorf("awarded/total = %d/%d, want 2/2", res.PointsAwarded, res.Total)
	}
	res, err = p.Process(context.Background(), b.ID, c.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !res.RewardWon || res.Total != 0 {
		t.Errorf("second scan rewardWon/total = %v/%d, want true/0", res.RewardWon, res.Total)
	}
}

func TestProcessNotIdempotentByDesign(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	for i := 0; i < 3; i++ {
		if _, err := p.Process(context.Background(), b.ID, c.Token); err != nil {
			t.Fatal(err)
		}
	}
	m, _ := membershipOf(s, c.ID, b.ID)
	if m.Points != 3 {
		t.Errorf("points after three scans = %d, want 3", m.Points)
	}
}

func TestProcessPersistenceFailureRollsBack(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	s.updateErr = errors.New("connection reset")
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	if _, err := p.Process(context.Background(), b.ID, c.Token); err == nil {
		t.Fatal("expected error from failing update")
	}
	if len(s.memberships) != 0 || len(s.events) != 0 {
		t.Errorf("rollback left writes behind: %d memberships, %d events", len(s.memberships), len(s.events))
	}
}

func TestProcessWritesLedgerRows(t *testing.T) {
	s := newFakeStore()
	b, c := seed(s)
	s.memberships[[2]uint64{c.ID, b.ID}] = model.Membership{ID: 60, CustomerID: c.ID, BusinessID: b.ID, Points: 9}
	p := &Processor{Store: s, DefaultPointsPerScan: 1, DefaultRewardThreshold: 10}

	if _, err := p.Process(context.Background(), b.ID, c.Token); err != nil {
		t.Fatal(err)
	}
	if len(s.events) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(s.events))
	}
	if s.events[0].Delta != 1 || s.events[0].Reason != ReasonScan {
		t.Errorf("scan row = %+v", s.events[0])
	}
	if s.events[1].Delta != -10 || s.events[1].Reason != ReasonRewardReset {
		t.Errorf("reset row = %+v", s.events[1])
	}
}
