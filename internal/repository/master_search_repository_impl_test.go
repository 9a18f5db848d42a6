package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"masters-marketplace/internal/domain/entity"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeElasticsearch answers with canned bodies keyed by "METHOD /path".
type fakeElasticsearch struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	resp, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		resp = fakeResponse{status: http.StatusOK, body: `{}`}
	}

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeElasticsearch) respond(key string, resp fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = resp
}

func (f *fakeElasticsearch) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

func (f *fakeElasticsearch) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newSearchRepo(t *testing.T, fake *fakeElasticsearch) *masterSearchRepository {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return NewMasterSearchRepository(es, "masters", time.Second).(*masterSearchRepository)
}

func TestSearchDecodesHits(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"POST /masters/_search": {status: http.StatusOK, body: `{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "4", "_source": {"id": 4, "full_name": "Alı Məmmədov", "average_rating": 4.5, "review_count": 2,
						"cities": [{"id": 1, "name": "baku", "display_name": "Bakı"}], "districts": []}},
					{"_id": "9", "_source": {"id": 9, "full_name": "Orxan Əliyev", "average_rating": null, "review_count": 0,
						"cities": [], "districts": []}}
				]
			}
		}`},
	}}
	repo := newSearchRepo(t, fake)

	result, err := repo.Search(context.Background(), entity.MasterSearchFilter{CityID: uintPtr(1), Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.EqualValues(t, 2, result.Total)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, uint(4), result.Documents[0].ID)
	require.NotNil(t, result.Documents[0].AverageRating)
	assert.Equal(t, 4.5, *result.Documents[0].AverageRating)
	assert.Equal(t, "Bakı", result.Documents[0].Cities[0].DisplayName)
	assert.Nil(t, result.Documents[1].AverageRating)

	sent := fake.last()
	assert.Equal(t, "/masters/_search", sent.Path)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sent.Body), &body))
	assert.Contains(t, sent.Body, `"cities.id":1`)
}

func TestSearchEngineErrorIsReturned(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"POST /masters/_search": {status: http.StatusServiceUnavailable, body: `{"error":"unavailable"}`},
	}}
	repo := newSearchRepo(t, fake)

	_, err := repo.Search(context.Background(), entity.MasterSearchFilter{Page: 1, PageSize: 10})
	require.Error(t, err)
}

func TestUpsertUsesMasterIDAsDocumentID(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"PUT /masters/_doc/42": {status: http.StatusCreated, body: `{"result":"created"}`},
	}}
	repo := newSearchRepo(t, fake)

	err := repo.Upsert(context.Background(), &entity.MasterDocument{ID: 42, FullName: "Test Master", Cities: []entity.DocumentRef{}, Districts: []entity.DocumentRef{}})
	require.NoError(t, err)

	sent := fake.last()
	assert.Equal(t, http.MethodPut, sent.Method)
	assert.Equal(t, "/masters/_doc/42", sent.Path)
	assert.Contains(t, sent.Body, `"full_name":"Test Master"`)
	assert.Contains(t, sent.Body, `"average_rating":null`)
}

func TestDeleteMissingDocumentIsNotAnError(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"DELETE /masters/_doc/7": {status: http.StatusNotFound, body: `{"result":"not_found"}`},
	}}
	repo := newSearchRepo(t, fake)

	require.NoError(t, repo.Delete(context.Background(), 7))
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"HEAD /masters": {status: http.StatusNotFound, body: ``},
		"PUT /masters":  {status: http.StatusOK, body: `{"acknowledged":true}`},
	}}
	repo := newSearchRepo(t, fake)

	require.NoError(t, repo.EnsureIndex(context.Background()))

	sent := fake.last()
	assert.Equal(t, http.MethodPut, sent.Method)
	assert.True(t, strings.Contains(sent.Body, `"type": "nested"`))
}

func TestEnsureIndexSkipsExisting(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"HEAD /masters": {status: http.StatusOK, body: ``},
	}}
	repo := newSearchRepo(t, fake)

	require.NoError(t, repo.EnsureIndex(context.Background()))
	assert.Len(t, fake.requests, 1)
}

func TestDeleteStaleSendsRangeQuery(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"POST /masters/_delete_by_query": {status: http.StatusOK, body: `{"deleted":1}`},
	}}
	repo := newSearchRepo(t, fake)

	require.NoError(t, repo.DeleteStale(context.Background(), 1, uintPtr(10), []uint{2, 5}))

	sent := fake.last()
	assert.Equal(t, "/masters/_delete_by_query", sent.Path)
	assert.Contains(t, sent.Body, `"must_not"`)
}

func TestUpsertCreatesMappedIndexOnceClusterIsBack(t *testing.T) {
	fake := &fakeElasticsearch{responses: map[string]fakeResponse{
		"HEAD /masters": {status: http.StatusInternalServerError, body: ``},
	}}
	repo := newSearchRepo(t, fake)
	doc := &entity.MasterDocument{ID: 1, FullName: "Usta", Cities: []entity.DocumentRef{}, Districts: []entity.DocumentRef{}}

	require.Error(t, repo.Upsert(context.Background(), doc))
	assert.NotContains(t, fake.paths(), "PUT /masters/_doc/1")

	fake.respond("HEAD /masters", fakeResponse{status: http.StatusNotFound})
	fake.respond("PUT /masters", fakeResponse{status: http.StatusOK, body: `{"acknowledged":true}`})
	fake.respond("PUT /masters/_doc/1", fakeResponse{status: http.StatusCreated, body: `{"result":"created"}`})

	require.NoError(t, repo.Upsert(context.Background(), doc))
	paths := fake.paths()
	require.GreaterOrEqual(t, len(paths), 3)
	assert.Equal(t, []string{"HEAD /masters", "PUT /masters", "PUT /masters/_doc/1"}, paths[len(paths)-3:])
	assert.Contains(t, fake.requests[len(paths)-2].Body, `"dynamic": "strict"`)

	// index known to exist, no more existence checks
	require.NoError(t, repo.Upsert(context.Background(), doc))
	assert.Len(t, fake.paths(), len(paths)+1)
}
