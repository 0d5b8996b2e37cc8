package accumulator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

var (
	// ErrBusy is returned by LoadNext while another load is pending.
	ErrBusy = errors.New("a page load is already in progress")
	// ErrStale is returned when the query changed before the page arrived.
	ErrStale = errors.New("query changed while the page was loading")
)

// Loader fetches successive pages for the current query and feeds them
// into an Accumulator. At most one load is in flight at a time.
type Loader struct {
	source core.CatalogSource
	logger *slog.Logger

	mu       sync.Mutex
	acc      *Accumulator
	gen      uint64
	inFlight bool
	cancel   context.CancelFunc
}

// NewLoader creates a loader for q backed by source.
func NewLoader(source core.CatalogSource, q core.FetchQuery, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger, acc: New(q)}
}

// SetQuery switches the loader to q. If the query changed, the set is
// reset and any pending load is canceled; its result will be discarded.
func (l *Loader) SetQuery(q core.FetchQuery) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.acc.SetQuery(q) {
		return false
	}
	l.invalidate()
	return true
}

// Restart switches to q and always starts again from the first page,
// even when q equals the current query.
func (l *Loader) Restart(q core.FetchQuery) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.acc.SetQuery(q) {
		l.acc.Reset()
	}
	l.invalidate()
}

// invalidate cancels the pending load and marks its result stale.
// The caller holds l.mu.
func (l *Loader) invalidate() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.inFlight = false
}

// Query returns the current query.
func (l *Loader) Query() core.FetchQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acc.Query()
}

// Snapshot returns a copy of the accumulated set.
func (l *Loader) Snapshot() ResultSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acc.Snapshot()
}

// Loading reports whether a load is pending.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// LoadNext fetches the next page and returns the updated set.
// On any error the accumulated set is left unchanged.
func (l *Loader) LoadNext(ctx context.Context) (ResultSet, error) {
	l.mu.Lock()
	if l.acc.set.Exhausted {
		defer l.mu.Unlock()
		return l.acc.Snapshot(), ErrExhausted
	}
	if l.inFlight {
		defer l.mu.Unlock()
		return l.acc.Snapshot(), ErrBusy
	}

	gen := l.gen
	q := l.acc.Query()
	q.Page = l.acc.set.NextPage
	fetchCtx, cancel := context.WithCancel(ctx)
	l.inFlight = true
	l.cancel = cancel
	l.mu.Unlock()

	page, err := l.source.FetchPage(fetchCtx, q)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		l.logger.Debug("discarding stale page", slog.Int("page", q.Page))
		return l.acc.Snapshot(), ErrStale
	}
	l.inFlight = false
	l.cancel = nil

	if err != nil {
		return l.acc.Snapshot(), err
	}
	if err := l.acc.AppendPage(page.Items); err != nil {
		return l.acc.Snapshot(), err
	}

	snap := l.acc.Snapshot()
	l.logger.Debug("page accumulated",
		slog.Int("page", q.Page),
		slog.Int("raw", len(page.Items)),
		slog.Int("total", len(snap.Items)),
		slog.Bool("exhausted", snap.Exhausted),
	)
	return snap, nil
}
