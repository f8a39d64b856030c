// Package pipeline holds the deal board: the client-side collection of deals
// grouped by stage, the advance/remove/update mutations and the replication
// of the whole collection to the Sync Gateway.
//
// Replication policy is fire-and-forget: a mutation changes local state
// immediately and unconditionally, then hands a snapshot of the full
// collection to a single background writer. A failed write is reported as a
// PersistResult and logged; local state is never rolled back. Snapshots are
// written in mutation order and a burst of mutations is coalesced into its
// latest snapshot, so the last mutation is always the last write.
//
// The board assumes one writer per record (one salesperson editing their own
// pipeline). The Gateway overwrites by primary key with no version check, so
// two boards editing the same deals lose updates to each other.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skyaboveme/yourgency/internal/models"
)

// Store is the remote side of the board. SaveDeals receives the entire
// collection every time.
type Store interface {
	LoadDeals(ctx context.Context) ([]models.Deal, error)
	SaveDeals(ctx context.Context, deals []models.Deal) error
}

type Option func(*Board)

func WithLogger(l *zap.Logger) Option {
	return func(b *Board) { b.log = l }
}

// OnPersist registers a callback invoked from the writer goroutine after
// every write attempt.
func OnPersist(fn func(PersistResult)) Option {
	return func(b *Board) { b.onPersist = fn }
}

// WithPersistTimeout bounds a single write. Zero leaves it to the store.
func WithPersistTimeout(d time.Duration) Option {
	return func(b *Board) { b.persistTimeout = d }
}

type snapshot struct {
	seq   uint64
	deals []models.Deal
}

type Board struct {
	store          Store
	log            *zap.Logger
	onPersist      func(PersistResult)
	persistTimeout time.Duration

	mu      sync.Mutex
	deals   []models.Deal
	removed map[string]struct{}
	seq     uint64 // last mutation
	written uint64 // last snapshot written (successfully or not)
	last    PersistResult
	pending *snapshot
	closed  bool
	// progress is closed and replaced whenever written advances
	progress chan struct{}

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewBoard creates an empty board and starts its writer. Call Close to stop it.
func NewBoard(store Store, opts ...Option) *Board {
	b := &Board{
		store:    store,
		log:      zap.NewNop(),
		removed:  map[string]struct{}{},
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

// Load replaces the collection with the store's full set.
func (b *Board) Load(ctx context.Context) error {
	deals, err := b.store.LoadDeals(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.deals = make([]models.Deal, 0, len(deals))
	present := make(map[string]struct{}, len(deals))
	for _, d := range deals {
		b.deals = append(b.deals, d.Clone())
		present[d.ID] = struct{}{}
	}
	for id := range b.removed {
		if _, ok := present[id]; ok {
			b.log.Warn("pipeline: locally removed deal is still stored", zap.String("id", id))
			continue
		}
		delete(b.removed, id)
	}
	b.log.Debug("pipeline: loaded", zap.Int("count", len(b.deals)))
	return nil
}

// Deals returns a copy of the whole collection.
func (b *Board) Deals() []models.Deal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.deals)
}

// ListByStage returns the deals whose stage equals s exactly.
func (b *Board) ListByStage(s models.Stage) []models.Deal {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := []models.Deal{}
	for _, d := range b.deals {
		if d.Stage == s {
			out = append(out, d.Clone())
		}
	}
	return out
}

// Get returns a copy of one deal.
func (b *Board) Get(id string) (models.Deal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.deals[i].Clone(), true
	}
	return models.Deal{}, false
}

// Advance moves a deal to the next stage of the advance order. Only the stage
// changes.
func (b *Board) Advance(id string) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return NotFound
	}
	next, ok := NextStage(b.deals[i].Stage)
	if !ok {
		return Terminal
	}
	b.log.Debug("pipeline: advance",
		zap.String("id", id),
		zap.String("from", string(b.deals[i].Stage)),
		zap.String("to", string(next)),
	)
	b.deals[i].Stage = next
	b.scheduleLocked()
	return Applied
}

// Remove deletes a deal from the board after the confirmer agrees. The
// confirmer is not consulted for an unknown id.
//
// The Gateway never deletes rows, so the removal is local only: the deal
// comes back on the next Load. Such ids are reported by LocallyRemoved.
func (b *Board) Remove(ctx context.Context, id string, c Confirmer) (Outcome, error) {
	if c == nil {
		return Declined, ErrNoConfirmer
	}

	deal, ok := b.Get(id)
	if !ok {
		return NotFound, nil
	}
	yes, err := c.Confirm(ctx, deal)
	if err != nil {
		return Declined, err
	}
	if !yes {
		return Declined, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// the deal may have gone while the confirmer was blocking
	i := b.indexOf(id)
	if i < 0 {
		return NotFound, nil
	}
	b.deals = append(b.deals[:i], b.deals[i+1:]...)
	b.removed[id] = struct{}{}
	b.scheduleLocked()
	return Applied, nil
}

// Update replaces a deal wholesale, matched by id.
func (b *Board) Update(deal models.Deal) Outcome {
	if !deal.Stage.Valid() {
		return Invalid
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(deal.ID)
	if i < 0 {
		return NotFound
	}
	b.deals[i] = deal.Clone()
	b.scheduleLocked()
	return Applied
}

// LocallyRemoved lists ids removed from the board that the store still holds
// as far as the board knows.
func (b *Board) LocallyRemoved() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.removed))
	for id := range b.removed {
		out = append(out, id)
	}
	return out
}

// LastPersist returns the most recent write result.
func (b *Board) LastPersist() PersistResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Persist writes the current collection and waits for the outcome. It goes
// through the same writer as background persists, so ordering is preserved.
func (b *Board) Persist(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.scheduleLocked()
	b.mu.Unlock()
	return b.Flush(ctx)
}

// Flush waits until the latest mutation's snapshot has been written and
// returns that write's error, if any.
func (b *Board) Flush(ctx context.Context) error {
	for {
		b.mu.Lock()
		if b.written >= b.seq {
			err := b.last.Err
			b.mu.Unlock()
			return err
		}
		if b.closed && b.pending == nil && b.isDone() {
			b.mu.Unlock()
			return ErrClosed
		}
		ch := b.progress
		b.mu.Unlock()

		select {
		case <-ch:
		case <-b.done:
			// writer drained on exit; loop once more to read the result
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes any pending snapshot, stops the writer and returns the last
// write's error. Mutations after Close change local state only.
func (b *Board) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.quit)
	})
	<-b.done
	return b.LastPersist().Err
}

func (b *Board) isDone() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Board) indexOf(id string) int {
	for i := range b.deals {
		if b.deals[i].ID == id {
			return i
		}
	}
	return -1
}

// scheduleLocked records a mutation and replaces the pending snapshot.
// Caller holds b.mu.
func (b *Board) scheduleLocked() {
	b.seq++
	if b.closed {
		b.log.Warn("pipeline: board closed, change not persisted", zap.Uint64("seq", b.seq))
		return
	}
	b.pending = &snapshot{seq: b.seq, deals: cloneAll(b.deals)}
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Board) run() {
	defer close(b.done)
	for {
		select {
		case <-b.wake:
			b.writePending()
		case <-b.quit:
			b.writePending()
			return
		}
	}
}

func (b *Board) writePending() {
	b.mu.Lock()
	snap := b.pending
	b.pending = nil
	b.mu.Unlock()
	if snap == nil {
		return
	}

	ctx := context.Background()
	if b.persistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.persistTimeout)
		defer cancel()
	}

	start := time.Now()
	res := PersistResult{Seq: snap.seq, Count: len(snap.deals)}
	if err := b.store.SaveDeals(ctx, snap.deals); err != nil {
		res.Err = &PersistError{Seq: snap.seq, Err: err}
	}
	res.Duration = time.Since(start)

	if res.Err != nil {
		b.log.Error("pipeline: persist failed, local state kept",
			zap.Uint64("seq", res.Seq),
			zap.Int("count", res.Count),
			zap.Error(res.Err),
		)
	} else {
		b.log.Debug("pipeline: persisted",
			zap.Uint64("seq", res.Seq),
			zap.Int("count", res.Count),
			zap.Duration("took", res.Duration),
		)
	}
	if b.onPersist != nil {
		b.onPersist(res)
	}

	b.mu.Lock()
	b.written = snap.seq
	b.last = res
	close(b.progress)
	b.progress = make(chan struct{})
	b.mu.Unlock()
}

func cloneAll(in []models.Deal) []models.Deal {
	out := make([]models.Deal, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
