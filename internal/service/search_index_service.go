package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/converter"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

const (
	// Masters loaded per reconciliation batch
	reindexBatchSize = 500

	// Retry set entries drained per tick
	retryDrainSize = 100

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SearchIndexService keeps the search index equal to the relational state of masters.
//
// Writes for one master are serialized by a per-id mutex so a slow rebuild can
// not overwrite a newer one. Failed updates go to the retry set; the periodic
// reconciliation sweep repairs anything the retry set missed.
type SearchIndexService struct {
	db         *gorm.DB
	log        *logrus.Logger
	masterRepo repository.MasterRepository
	reviewRepo repository.ReviewRepository
	searchRepo repository.MasterSearchRepository
	retryRepo  repository.IndexRetryRepository

	workers       int
	retryInterval time.Duration
	cron          *cron.Cron

	// Per-master mutex for concurrent safety
	masterMu sync.Map // map[uint]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSearchIndexService creates the indexer and starts the mutex cleanup loop.
// Call Stop() during graceful shutdown.
func NewSearchIndexService(
	db *gorm.DB,
	log *logrus.Logger,
	masterRepo repository.MasterRepository,
	reviewRepo repository.ReviewRepository,
	searchRepo repository.MasterSearchRepository,
	retryRepo repository.IndexRetryRepository,
	cfg config.SearchConfig,
) *SearchIndexService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	svc := &SearchIndexService{
		db:            db,
		log:           log,
		masterRepo:    masterRepo,
		reviewRepo:    reviewRepo,
		searchRepo:    searchRepo,
		retryRepo:     retryRepo,
		workers:       workers,
		retryInterval: cfg.RetryInterval,
		cron:          newCron(log),
		stopChan:      make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Start launches the retry drain loop and schedules the reconciliation sweep.
func (s *SearchIndexService) Start(schedule string) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() {
			if err := s.ReindexAll(context.Background()); err != nil {
				s.log.Warnf("Failed to reconcile search index: %+v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule reconciliation %q: %w", schedule, err)
		}
		s.cron.Start()
	}

	if s.retryInterval > 0 {
		s.wg.Add(1)
		go s.retryLoop()
	}

	s.log.Infof("Search indexer started (workers=%d, reconcile=%q)", s.workers, schedule)
	return nil
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SearchIndexService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		<-s.cron.Stop().Done()
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SearchIndexService stopped")
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (s *SearchIndexService) EnsureIndex(ctx context.Context) error {
	if err := s.searchRepo.EnsureIndex(ctx); err != nil {
		s.log.Warnf("Failed to ensure search index: %+v", err)
		return err
	}
	return nil
}

// IndexMaster rebuilds the document of one master from the database. Masters
// that are gone, not role master, or not active are removed from the index.
func (s *SearchIndexService) IndexMaster(ctx context.Context, id uint) error {
	mt := s.getMasterMutex(id)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if err := s.indexMaster(ctx, id); err != nil {
		s.log.Warnf("Failed to index master %d: %+v", id, err)
		s.enqueueRetry(ctx, id)
		return err
	}
	return nil
}

// RemoveMaster deletes the document of a master. Its mutex is left for the
// cleanup loop; another writer may already be waiting on it.
func (s *SearchIndexService) RemoveMaster(ctx context.Context, id uint) error {
	mt := s.getMasterMutex(id)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.Warnf("Failed to remove master %d from index: %+v", id, err)
		s.enqueueRetry(ctx, id)
		return fmt.Errorf("remove master %d: %w", id, err)
	}

	s.log.Debugf("Removed master %d from index", id)
	return nil
}

// ReindexMasters rebuilds every listed master with bounded concurrency. One
// failure does not stop the others; the joined error is returned.
func (s *SearchIndexService) ReindexMasters(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	p := pool.New().WithMaxGoroutines(s.workers).WithErrors().WithContext(ctx)
	for _, id := range ids {
		p.Go(func(ctx context.Context) error {
			return s.IndexMaster(ctx, id)
		})
	}

	err := p.Wait()
	if err != nil {
		s.log.Warnf("Failed to reindex some of %d masters: %+v", len(ids), err)
	}
	return err
}

// ReindexReferencing rebuilds every master that embeds the given reference row.
// Kinds that are not embedded in documents are a no-op.
func (s *SearchIndexService) ReindexReferencing(ctx context.Context, kind entity.EntityKind, refID uint) error {
	if !kind.EmbeddedInDocument() {
		return nil
	}

	ids, err := s.masterRepo.FindIDsReferencing(s.db.WithContext(ctx), kind, refID)
	if err != nil {
		s.log.Warnf("Failed to find masters referencing %s %d: %+v", kind, refID, err)
		return err
	}

	s.log.Debugf("Reindexing %d masters referencing %s %d", len(ids), kind, refID)
	return s.ReindexMasters(ctx, ids)
}

// ReindexAll reconciles the whole index with the database. Masters are walked
// by id in batches; each batch is upserted and documents inside the batch's id
// range that are not in the batch are deleted. Documents above the last id are
// deleted at the end.
func (s *SearchIndexService) ReindexAll(ctx context.Context) error {
	s.log.Info("Starting search index reconciliation...")
	startTime := time.Now()

	// the index may have been dropped since boot
	if err := s.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	var (
		afterID     uint
		totalSynced int
		failed      []error
	)

	for {
		masters, err := s.masterRepo.FindIndexableAfter(s.db.WithContext(ctx), afterID, reindexBatchSize)
		if err != nil {
			s.log.Errorf("Failed to query masters after id %d: %+v", afterID, err)
			return fmt.Errorf("query masters after id %d: %w", afterID, err)
		}

		if len(masters) == 0 {
			break
		}

		if err := s.reconcileBatch(ctx, afterID, masters); err != nil {
			failed = append(failed, err)
		}

		totalSynced += len(masters)
		afterID = masters[len(masters)-1].ID

		if len(masters) < reindexBatchSize {
			break
		}

		// Respect context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	if err := s.searchRepo.DeleteStale(ctx, afterID+1, nil, nil); err != nil {
		s.log.Warnf("Failed to delete documents above id %d: %+v", afterID, err)
		failed = append(failed, err)
	}

	s.log.Infof("Search index reconciliation completed: %d masters indexed in %v", totalSynced, time.Since(startTime))
	return errors.Join(failed...)
}

// DrainRetries reindexes up to n masters from the retry set.
func (s *SearchIndexService) DrainRetries(ctx context.Context, n int) error {
	if err := s.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	ids, err := s.retryRepo.Pop(ctx, n)
	if err != nil {
		s.log.Warnf("Failed to pop index retries: %+v", err)
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	s.log.Infof("Retrying index update for %d masters", len(ids))
	return s.ReindexMasters(ctx, ids)
}

// reconcileBatch rebuilds each master of the batch from a fresh read under its
// mutex; the batch itself only decides which ids survive in the range.
func (s *SearchIndexService) reconcileBatch(ctx context.Context, afterID uint, masters []entity.Master) error {
	ids := make([]uint, len(masters))
	for i := range masters {
		ids[i] = masters[i].ID
	}

	var failed []error
	if err := s.ReindexMasters(ctx, ids); err != nil {
		failed = append(failed, err)
	}

	lastID := ids[len(ids)-1]
	if err := s.searchRepo.DeleteStale(ctx, afterID+1, &lastID, ids); err != nil {
		s.log.Warnf("Failed to delete stale documents in (%d, %d]: %+v", afterID, lastID, err)
		failed = append(failed, err)
	}

	return errors.Join(failed...)
}

// indexMaster must be called with the master's mutex held.
func (s *SearchIndexService) indexMaster(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)

	master, err := s.masterRepo.FindByID(db, id)
	if err != nil {
		return fmt.Errorf("load master %d: %w", id, err)
	}

	if !master.Indexable() {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete document %d: %w", id, err)
		}
		s.log.Debugf("Master %d is not indexable, document removed", id)
		return nil
	}

	stats, err := s.reviewRepo.RatingStats(db, []uint{id})
	if err != nil {
		return fmt.Errorf("load rating of master %d: %w", id, err)
	}

	if err := s.searchRepo.Upsert(ctx, converter.MasterToDocument(master, ratingOf(stats, id))); err != nil {
		return fmt.Errorf("upsert document %d: %w", id, err)
	}

	s.log.Debugf("Indexed master %d", id)
	return nil
}

func (s *SearchIndexService) enqueueRetry(ctx context.Context, ids ...uint) {
	// the caller's context may be the reason the update failed
	retryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.retryRepo.Push(retryCtx, ids...); err != nil {
		s.log.Errorf("Failed to enqueue index retry for masters %v: %+v", ids, err)
	}
}

func (s *SearchIndexService) retryLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Index retry goroutine stopping")
			return
		case <-ticker.C:
			s.DrainRetries(context.Background(), retryDrainSize)
		}
	}
}

// getMasterMutex returns mutex for a specific master ID
func (s *SearchIndexService) getMasterMutex(id uint) *mutexWithTimestamp {
	mt, _ := s.masterMu.LoadOrStore(id, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SearchIndexService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety
func (s *SearchIndexService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	s.masterMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		// TryLock first - if we can't get lock, someone is using it
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.masterMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
}

func newCron(log *logrus.Logger) *cron.Cron {
	logger := cronLogger(log)
	return cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

// cronLogger routes scheduler messages (skipped runs, recovered panics) to logrus.
func cronLogger(log *logrus.Logger) cron.Logger {
	return cron.PrintfLogger(log)
}

func ratingOf(stats map[uint]entity.RatingStats, id uint) entity.Rating {
	if st, ok := stats[id]; ok {
		return entity.RatingFromStats(&st)
	}
	return entity.Rating{}
}
