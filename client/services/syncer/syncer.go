package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sourcegraph/conc/iter"

	"github.com/qash-finance/qash-sub002/batch"
	"github.com/qash-finance/qash-sub002/client/modules/accounts"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/modules/metadata"
	"github.com/qash-finance/qash-sub002/client/types"
	fsmtypes "github.com/qash-finance/qash-sub002/fsm/types"
	"github.com/qash-finance/qash-sub002/ledger"
	"github.com/qash-finance/qash-sub002/relay"
)

const (
	DefaultInterval    = 10 * time.Second
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxParallel = 4

	// SyncState is tried once more after a failure
	syncAttempts = 2
)

var roundsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_rounds_total",
	Help: "Sync rounds by outcome",
}, []string{"result"})

// Ticker is the part of time.Ticker the loop uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type Config struct {
	Interval    time.Duration
	RetryDelay  time.Duration
	MaxParallel int
	Ticker      TickerFactory
}

// AccountSnapshot is the state of one account after the last round.
type AccountSnapshot struct {
	AccountID     string                     `json:"account_id"`
	Proposals     []fsmtypes.Proposal        `json:"proposals"`
	PendingDeltas int                        `json:"pending_deltas"`
	Balances      []metadata.EnrichedBalance `json:"balances"`
	SyncedAt      time.Time                  `json:"synced_at"`
	Error         string                     `json:"error,omitempty"`

	nonceTooLow bool
}

type Status struct {
	Height   uint64    `json:"height"`
	LastSync time.Time `json:"last_sync"`
	Paused   bool      `json:"paused"`
	Warning  string    `json:"warning,omitempty"`
}

// Syncer periodically brings the local ledger state and the relay view of
// every registered account up to date. Pause blocks until a running round
// finishes, rounds are skipped until the matching Resume.
type Syncer struct {
	accounts *accounts.Registry
	relay    relay.Client
	ledger   ledger.Client
	metadata *metadata.Cache
	logger   logger.Logger
	cfg      Config
	now      func() time.Time

	runMu sync.Mutex

	mu        sync.RWMutex
	paused    int
	height    uint64
	lastSync  time.Time
	warning   string
	snapshots map[string]AccountSnapshot
}

func NewSyncer(
	registry *accounts.Registry,
	r relay.Client,
	client ledger.Client,
	cache *metadata.Cache,
	cfg Config,
	l logger.Logger,
) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	if cfg.Ticker == nil {
		cfg.Ticker = NewTimeTicker
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Syncer{
		accounts:  registry,
		relay:     r,
		ledger:    client,
		metadata:  cache,
		logger:    l.Named("syncer"),
		cfg:       cfg,
		now:       time.Now,
		snapshots: make(map[string]AccountSnapshot),
	}
}

// Run syncs immediately and then on every tick until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := s.cfg.Ticker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Log("Starting sync loop with interval %s", s.cfg.Interval)
	for {
		if err := s.SyncOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("Sync round failed: %v", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Log("Sync loop stopped")
			return ctx.Err()
		case <-ticker.C():
		}
	}
}

func (s *Syncer) Pause() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	s.paused++
	s.mu.Unlock()
}

func (s *Syncer) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused > 0 {
		s.paused--
	}
}

func (s *Syncer) IsPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused > 0
}

// SyncOnce runs one round unless the loop is paused or a round is already
// running, in which case it returns nil without doing anything.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	if !s.runMu.TryLock() {
		roundsCounter.WithLabelValues("skipped").Inc()
		return nil
	}
	defer s.runMu.Unlock()

	if s.IsPaused() {
		roundsCounter.WithLabelValues("skipped").Inc()
		return nil
	}

	err := s.round(ctx)
	switch {
	case err == nil:
		roundsCounter.WithLabelValues("ok").Inc()
	case types.KindOf(err) == types.KindLedgerLag:
		roundsCounter.WithLabelValues("warning").Inc()
	default:
		roundsCounter.WithLabelValues("error").Inc()
	}
	return err
}

func (s *Syncer) round(ctx context.Context) error {
	if refresher, ok := s.relay.(relay.Refresher); ok {
		if err := refresher.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh relay: %w", err)
		}
	}

	height, err := s.syncState(ctx)
	if err != nil {
		if ledger.IsNonceTooLow(err) {
			s.setWarning(types.NonceTooLowWarning)
			return types.NewSyncWarning(err)
		}
		return fmt.Errorf("failed to sync ledger state: %w", err)
	}

	mapper := iter.Mapper[string, AccountSnapshot]{MaxGoroutines: s.cfg.MaxParallel}
	snapshots := mapper.Map(s.accounts.IDs(), func(accountID *string) AccountSnapshot {
		return s.syncAccount(ctx, *accountID)
	})

	warning := ""
	s.mu.Lock()
	for _, snapshot := range snapshots {
		s.snapshots[accountKey(snapshot.AccountID)] = snapshot
		if snapshot.nonceTooLow {
			warning = types.NonceTooLowWarning
		}
	}
	s.height = height
	s.lastSync = s.now()
	s.warning = warning
	s.mu.Unlock()

	if warning != "" {
		return types.NewSyncWarning(ledger.ErrNonceTooLow)
	}
	return nil
}

// syncState calls the ledger sync, retrying once after RetryDelay.
func (s *Syncer) syncState(ctx context.Context) (uint64, error) {
	var height uint64
	err := retry.Do(
		func() error {
			var err error
			height, err = s.ledger.SyncState(ctx)
			return err
		},
		retry.Attempts(syncAttempts),
		retry.Delay(s.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Ledger sync attempt %d failed: %v", n+1, err)
		}),
	)
	return height, err
}

func (s *Syncer) syncAccount(ctx context.Context, accountID string) AccountSnapshot {
	snapshot := AccountSnapshot{AccountID: accountID, SyncedAt: s.now()}

	fail := func(step string, err error) AccountSnapshot {
		s.logger.Warn("Failed to sync %s of account %s: %v", step, accountID, err)
		snapshot.Error = fmt.Sprintf("%s: %v", step, err)
		snapshot.nonceTooLow = ledger.IsNonceTooLow(err)
		return snapshot
	}

	proposals, err := s.relay.ListTransactionProposals(ctx, accountID)
	if err != nil {
		return fail("proposals", err)
	}
	snapshot.Proposals = proposals

	deltas, err := s.relay.GetDeltaProposals(ctx, accountID)
	if err != nil {
		return fail("deltas", err)
	}
	snapshot.PendingDeltas = countPending(proposals, deltas)

	balances, err := s.ledger.GetAccountBalances(ctx, accountID)
	if err != nil {
		return fail("balances", err)
	}
	snapshot.Balances = s.metadata.Enrich(ctx, balances)

	return snapshot
}

// countPending counts deltas whose proposal has not reached a terminal state.
func countPending(proposals []fsmtypes.Proposal, deltas []types.Delta) int {
	terminal := make(map[string]struct{}, len(proposals))
	for _, p := range proposals {
		if p.Status.IsTerminal() {
			terminal[p.SummaryCommitment] = struct{}{}
		}
	}
	pending := 0
	for _, d := range deltas {
		if _, ok := terminal[d.SummaryCommitment]; !ok {
			pending++
		}
	}
	return pending
}

func (s *Syncer) setWarning(warning string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warning = warning
}

func (s *Syncer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Height:   s.height,
		LastSync: s.lastSync,
		Paused:   s.paused > 0,
		Warning:  s.warning,
	}
}

// Warning returns the current sync warning, empty after a clean round.
func (s *Syncer) Warning() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.warning
}

func (s *Syncer) Snapshot(accountID string) (AccountSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[accountKey(accountID)]
	return snapshot, ok
}

func accountKey(accountID string) string {
	if id, err := batch.ParseAccountID(accountID); err == nil {
		return id.Hex()
	}
	return accountID
}
