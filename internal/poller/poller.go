// Package poller runs the dashboard's reconciliation loop: a poll timer
// that pulls the latest reading plus a history window, and a separate
// watchdog timer that re-derives liveness from the time since the last
// successful receipt. The watchdog is deliberately independent of the
// server's verdict; it is what turns a dead network or API into a
// visible disconnect instead of a frozen-but-green dashboard.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nodewatch-systems/nodewatch/internal/client"
	"github.com/nodewatch-systems/nodewatch/internal/liveness"
	"github.com/nodewatch-systems/nodewatch/internal/metrics"
	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// API is the slice of the HTTP client the poller needs.
type API interface {
	Latest(ctx context.Context) (*client.LatestResult, error)
	History(ctx context.Context, hours, limit int) ([]*models.Reading, error)
	SetFlag(ctx context.Context, name string, value bool) (bool, error)
}

// Config configures the loop cadence. The watchdog interval is shorter
// than the poll interval on purpose: a hung poll must not also hang
// disconnect detection.
type Config struct {
	PollInterval       time.Duration
	WatchdogInterval   time.Duration
	StalenessThreshold time.Duration
	HistoryHours       int
	HistoryLimit       int
}

func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.WatchdogInterval == 0 {
		c.WatchdogInterval = 2 * time.Second
	}
	if c.StalenessThreshold == 0 {
		c.StalenessThreshold = liveness.DefaultThreshold
	}
	if c.HistoryHours == 0 {
		c.HistoryHours = 24
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 100
	}
}

// Snapshot is the reconciled dashboard state after one loop event.
// Reading is nil in every state except FRESH: a stale number must never
// sit on screen looking current.
type Snapshot struct {
	State       liveness.State
	Reading     *models.Reading
	History     []*models.Reading
	LastReceipt time.Time

	// Relay and Led mirror the echo fields of received readings, not
	// the control-state store: they show what the node says it is
	// doing, converging within one device poll interval of a command.
	Relay bool
	Led   bool
}

type fetchResult struct {
	latest  *client.LatestResult
	history []*models.Reading
	err     error
}

// Poller owns the two timers and the reconciled snapshot.
type Poller struct {
	api API
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	snap       Snapshot
	nextSeq    uint64
	appliedSeq uint64

	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	onUpdate func(Snapshot)
}

// New creates a Poller. Call OnUpdate before Start if render callbacks
// are wanted.
func New(api API, cfg Config) *Poller {
	cfg.applyDefaults()
	return &Poller{
		api:  api,
		cfg:  cfg,
		now:  time.Now,
		snap: Snapshot{State: liveness.StateUnknown},
	}
}

// OnUpdate registers a callback invoked with a snapshot copy after
// every applied state change. Must be set before Start.
func (p *Poller) OnUpdate(fn func(Snapshot)) { p.onUpdate = fn }

// Snapshot returns a copy of the current reconciled state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Start launches the poll and watchdog loops.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(2)
	go p.pollLoop(ctx)
	go p.watchdogLoop(ctx)

	return nil
}

// Stop halts both loops. In-flight fetches are abandoned logically;
// their late completions are discarded by the sequence check.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller not running")
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	// First fetch immediately; the ticker covers the rest.
	p.launchFetch(ctx)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.launchFetch(ctx)
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) watchdogLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.watchdogTick()
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// launchFetch starts one fetch in its own goroutine. Fetches are never
// cancelled; a slow one from tick N may complete after tick N+1's and
// is then discarded by apply's sequence check.
func (p *Poller) launchFetch(ctx context.Context) {
	seq := p.nextFetchSeq()
	go func() {
		p.apply(seq, p.doFetch(ctx))
	}()
}

func (p *Poller) nextFetchSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSeq++
	return p.nextSeq
}

func (p *Poller) doFetch(ctx context.Context) fetchResult {
	latest, err := p.api.Latest(ctx)
	if err != nil {
		return fetchResult{err: err}
	}

	history, err := p.api.History(ctx, p.cfg.HistoryHours, p.cfg.HistoryLimit)
	if err != nil {
		// Latest succeeded; keep it and reuse the previous history.
		return fetchResult{latest: latest}
	}
	return fetchResult{latest: latest, history: history}
}

// apply reconciles one fetch completion into the snapshot. Completions
// older than the most recently applied one are discarded so a late slow
// response can never regress the displayed state.
func (p *Poller) apply(seq uint64, res fetchResult) {
	p.mu.Lock()

	if seq <= p.appliedSeq {
		p.mu.Unlock()
		return
	}
	p.appliedSeq = seq

	changed := false
	switch {
	case res.err != nil:
		// Transport failure folds into the stale path; before any data
		// has ever arrived there is nothing to blank, so UNKNOWN holds.
		if p.snap.State == liveness.StateFresh {
			p.goStaleLocked()
			changed = true
		}
	case res.latest.Stale:
		if p.snap.State != liveness.StateStale {
			p.goStaleLocked()
			changed = true
		}
	case res.latest.NoData:
		if p.snap.State != liveness.StateUnknown {
			p.snap.State = liveness.StateUnknown
			p.snap.Reading = nil
			changed = true
		}
	default:
		p.snap.State = liveness.StateFresh
		p.snap.Reading = res.latest.Reading
		p.snap.LastReceipt = p.now()
		if res.latest.Reading.RelayOn != nil {
			p.snap.Relay = *res.latest.Reading.RelayOn
		}
		if res.latest.Reading.LedOn != nil {
			p.snap.Led = *res.latest.Reading.LedOn
		}
		if res.history != nil {
			p.snap.History = res.history
		}
		changed = true
	}

	snap := p.snap
	p.mu.Unlock()

	if changed {
		p.notify(snap)
	}
}

// watchdogTick re-derives liveness from the receipt clock alone. It
// reports whether this tick transitioned the state.
func (p *Poller) watchdogTick() bool {
	p.mu.Lock()

	if p.snap.LastReceipt.IsZero() || p.snap.State != liveness.StateFresh {
		p.mu.Unlock()
		return false
	}
	if p.now().Sub(p.snap.LastReceipt) <= p.cfg.StalenessThreshold {
		p.mu.Unlock()
		return false
	}

	p.goStaleLocked()
	snap := p.snap
	p.mu.Unlock()

	p.notify(snap)
	return true
}

// goStaleLocked transitions to STALE and blanks every displayed metric
// in the same step. Caller holds the lock.
func (p *Poller) goStaleLocked() {
	p.snap.State = liveness.StateStale
	p.snap.Reading = nil
	metrics.WatchdogStaleTransitions.Inc()
}

// Toggle submits an actuator command optimistically: the snapshot flips
// immediately and reverts only if the command gate rejects it. The true
// indicator converges from the node's echo on a later poll.
func (p *Poller) Toggle(ctx context.Context, name string, value bool) error {
	p.mu.Lock()
	prev := p.setFlagLocked(name, value)
	snap := p.snap
	p.mu.Unlock()
	p.notify(snap)

	if _, err := p.api.SetFlag(ctx, name, value); err != nil {
		p.mu.Lock()
		p.setFlagLocked(name, prev)
		snap = p.snap
		p.mu.Unlock()
		p.notify(snap)
		return err
	}
	return nil
}

func (p *Poller) setFlagLocked(name string, value bool) (prev bool) {
	switch name {
	case models.FlagRelay:
		prev = p.snap.Relay
		p.snap.Relay = value
	case models.FlagLED:
		prev = p.snap.Led
		p.snap.Led = value
	}
	return prev
}

func (p *Poller) notify(snap Snapshot) {
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}
