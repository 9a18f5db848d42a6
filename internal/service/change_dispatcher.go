package service

import (
	"context"
	"sync"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// Upper bound for handling one change event on a worker
const changeEventTimeout = 2 * time.Minute

// ChangePublisher is notified by usecases after a write has committed.
type ChangePublisher interface {
	Publish(ctx context.Context, event entity.ChangeEvent)
}

// SearchIndexer is the part of the indexing pipeline the dispatcher drives.
type SearchIndexer interface {
	IndexMaster(ctx context.Context, id uint) error
	RemoveMaster(ctx context.Context, id uint) error
	ReindexMasters(ctx context.Context, ids []uint) error
	ReindexReferencing(ctx context.Context, kind entity.EntityKind, refID uint) error
}

// ChangeDispatcher invalidates cached reference lists synchronously and hands
// index work to a bounded pool of workers.
type ChangeDispatcher struct {
	indexer   SearchIndexer
	cache     ReferenceCache
	retryRepo repository.IndexRetryRepository
	log       *logrus.Logger

	queue chan entity.ChangeEvent
	wg    sync.WaitGroup

	// guards queue against sends after close
	mu      sync.RWMutex
	stopped bool
}

// NewChangeDispatcher creates the dispatcher and starts its workers.
// Call Stop() during graceful shutdown.
func NewChangeDispatcher(
	indexer SearchIndexer,
	cache ReferenceCache,
	retryRepo repository.IndexRetryRepository,
	log *logrus.Logger,
	cfg config.SearchConfig,
) *ChangeDispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &ChangeDispatcher{
		indexer:   indexer,
		cache:     cache,
		retryRepo: retryRepo,
		log:       log,
		queue:     make(chan entity.ChangeEvent, queueSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Publish never blocks on index work. When the queue is full, master ids are
// parked in the retry set and reference events are left to reconciliation.
func (d *ChangeDispatcher) Publish(ctx context.Context, event entity.ChangeEvent) {
	if event.Kind.IsReference() && d.cache != nil {
		d.cache.Invalidate(ctx, InvalidationKeys(event)...)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.stopped {
		select {
		case d.queue <- event:
			return
		default:
		}
	}

	ids := event.MasterIDs
	if event.Kind == entity.KindMaster {
		ids = []uint{event.ID}
	}
	d.log.Warnf("Change queue unavailable, deferring %s %d (%s) to retry", event.Kind, event.ID, event.Action)
	if len(ids) > 0 {
		if err := d.retryRepo.Push(context.WithoutCancel(ctx), ids...); err != nil {
			d.log.Errorf("Failed to enqueue index retry for %v: %+v", ids, err)
		}
	}
}

// Stop drains queued events and waits for the workers.
// Safe to call multiple times.
func (d *ChangeDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("ChangeDispatcher stopped")
}

func (d *ChangeDispatcher) worker() {
	defer d.wg.Done()

	for event := range d.queue {
		d.handle(event)
	}
}

func (d *ChangeDispatcher) handle(event entity.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), changeEventTimeout)
	defer cancel()

	var err error
	switch {
	case event.Kind == entity.KindMaster && event.Action == entity.ChangeDeleted:
		err = d.indexer.RemoveMaster(ctx, event.ID)
	case event.Kind == entity.KindMaster:
		err = d.indexer.IndexMaster(ctx, event.ID)
	case len(event.MasterIDs) > 0:
		err = d.indexer.ReindexMasters(ctx, event.MasterIDs)
	case event.Kind.IsReference():
		err = d.indexer.ReindexReferencing(ctx, event.Kind, event.ID)
	}

	if err != nil {
		d.log.Warnf("Failed to apply %s change of %s %d: %+v", event.Action, event.Kind, event.ID, err)
	}
}
