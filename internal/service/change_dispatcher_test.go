package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/repository"
	"masters-marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndexer struct {
	mu      sync.Mutex
	calls   []string
	started chan struct{}
	release chan struct{}
}

func (r *recordingIndexer) record(call string) {
	if r.started != nil {
		r.started <- struct{}{}
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingIndexer) IndexMaster(ctx context.Context, id uint) error {
	r.record(fmt.Sprintf("index %d", id))
	return nil
}

func (r *recordingIndexer) RemoveMaster(ctx context.Context, id uint) error {
	r.record(fmt.Sprintf("remove %d", id))
	return nil
}

func (r *recordingIndexer) ReindexMasters(ctx context.Context, ids []uint) error {
	r.record(fmt.Sprintf("reindex %v", ids))
	return nil
}

func (r *recordingIndexer) ReindexReferencing(ctx context.Context, kind entity.EntityKind, refID uint) error {
	r.record(fmt.Sprintf("referencing %s %d", kind, refID))
	return nil
}

func (r *recordingIndexer) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDispatcherRoutesEvents(t *testing.T) {
	_, client := testutil.NewRedis(t)
	indexer := &recordingIndexer{}
	d := NewChangeDispatcher(indexer, nil, repository.NewIndexRetryRepository(client), testutil.NewLogger(),
		config.SearchConfig{Workers: 2, QueueSize: 16})

	ctx := context.Background()
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: 1, Action: entity.ChangeUpdated})
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: 2, Action: entity.ChangeDeleted})
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindCategory, ID: 3, Action: entity.ChangeUpdated})
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindCity, ID: 4, Action: entity.ChangeDeleted, MasterIDs: []uint{7, 8}})
	d.Stop()

	assert.ElementsMatch(t, []string{
		"index 1",
		"remove 2",
		"referencing category 3",
		"reindex [7 8]",
	}, indexer.recorded())
}

func TestDispatcherInvalidatesCacheSynchronously(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	cache := NewReferenceCache(client, testutil.NewLogger(), config.CacheConfig{TTL: time.Minute, Timeout: time.Second})
	d := NewChangeDispatcher(&recordingIndexer{}, cache, repository.NewIndexRetryRepository(client), testutil.NewLogger(),
		config.SearchConfig{Workers: 1, QueueSize: 4})
	defer d.Stop()

	for _, key := range []string{ServiceListKey, ServicesForCategoryKey(1), ServicesForCategoryKey(2), ServicesForCategoryKey(3), CityListKey} {
		require.NoError(t, mr.Set(key, "[]"))
	}

	d.Publish(context.Background(), entity.ChangeEvent{
		Kind:      entity.KindService,
		ID:        10,
		Action:    entity.ChangeUpdated,
		ParentIDs: []uint{1, 2},
	})

	assert.False(t, mr.Exists(ServiceListKey))
	assert.False(t, mr.Exists(ServicesForCategoryKey(1)))
	assert.False(t, mr.Exists(ServicesForCategoryKey(2)))
	assert.True(t, mr.Exists(ServicesForCategoryKey(3)))
	assert.True(t, mr.Exists(CityListKey))
}

func TestDispatcherFullQueueParksMasterIDs(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	indexer := &recordingIndexer{started: make(chan struct{}), release: make(chan struct{})}
	d := NewChangeDispatcher(indexer, nil, repository.NewIndexRetryRepository(client), testutil.NewLogger(),
		config.SearchConfig{Workers: 1, QueueSize: 1})

	ctx := context.Background()
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: 1, Action: entity.ChangeUpdated})
	<-indexer.started // worker is busy with master 1

	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: 2, Action: entity.ChangeUpdated}) // fills the queue
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: 3, Action: entity.ChangeUpdated}) // overflows
	d.Publish(ctx, entity.ChangeEvent{Kind: entity.KindCity, ID: 4, Action: entity.ChangeDeleted, MasterIDs: []uint{5}})

	members, err := mr.Members(repository.IndexRetryKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"3", "5"}, members)

	go func() {
		for range indexer.started {
		}
	}()
	close(indexer.release)
	d.Stop()
	close(indexer.started)

	assert.ElementsMatch(t, []string{"index 1", "index 2"}, indexer.recorded())
}

func TestDispatcherPublishAfterStop(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	d := NewChangeDispatcher(&recordingIndexer{}, nil, repository.NewIndexRetryRepository(client), testutil.NewLogger(),
		config.SearchConfig{Workers: 1, QueueSize: 1})
	d.Stop()
	d.Stop()

	d.Publish(context.Background(), entity.ChangeEvent{Kind: entity.KindMaster, ID: 9, Action: entity.ChangeUpdated})

	members, err := mr.Members(repository.IndexRetryKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, members)
}
