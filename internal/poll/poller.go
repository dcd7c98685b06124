// Package poll keeps a customer-facing display eventually consistent with
// point changes made by business terminals.  There is no push channel; a
// fixed-interval loop re-fetches the customer state and raises callbacks
// when it changes.  The loop never overlaps fetches, skips fetching while
// the display is hidden, and discards results that arrive after teardown.
package poll

import (
	"context"
	"log"
	"sync"
	"time"
)

// State is a snapshot of the totals a display renders.  RewardPending is
// the explicit reward-claim signal set by the award operation; displays
// react to it instead of guessing from point deltas.
type State struct {
	Points        int
	RewardPending bool
}

// FetchFunc loads the current state, typically from the customer state
// endpoint.  Errors are swallowed by the loop; the next tick retries.
type FetchFunc func(ctx context.Context) (State, error)

// Poller runs the refresh loop.  Interval defaults to three seconds.
// Visible gates each fetch: when it reports false the tick is skipped
// entirely, before any network call.  OnUpdate fires after every applied
// fetch; OnReward fires exactly once per reward event.
type Poller struct {
	Interval time.Duration
	Fetch    FetchFunc
	Visible  func() bool
	OnUpdate func(State)
	OnReward func(State)

	stopOnce sync.Once
	stopCh   chan struct{}

	hasLast bool
	last    State
}

// NewPoller wires a poller around the given fetch function.
func NewPoller(interval time.Duration, fetch FetchFunc) *Poller {
	return &Poller{
		Interval: interval,
		Fetch:    fetch,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks until the context is cancelled or Stop is called.  Callers
// usually run it in its own goroutine, one per open display.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if p.Visible != nil && !p.Visible() {
				continue
			}
			s, err := p.Fetch(ctx)
			if err != nil {
				log.Printf("poll: fetch failed: %v", err)
				continue
			}
			// The fetch may have raced teardown; a late result must not
			// reach the callbacks of a stopped display.
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			default:
			}
			p.apply(s)
		}
	}
}

// Stop tears the loop down.  Safe to call more than once and from any
// goroutine.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// apply records the snapshot and decides whether a reward celebration is
// due.  The explicit RewardPending flag is authoritative; a decrease in the
// total is honored as a legacy fallback for balances lowered out of band.
// An unchanged total never celebrates.
func (p *Poller) apply(s State) {
	reward := s.RewardPending
	if !reward && p.hasLast && s.Points < p.last.Points {
		reward = true
	}
	p.last = s
	p.hasLast = true
	if p.OnUpdate != nil {
		p.OnUpdate(s)
	}
	if reward && p.OnReward != nil {
		p.OnReward(s)
	}
}
