package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"masters-marketplace/internal/domain/entity"
	domainRepo "masters-marketplace/internal/domain/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// masterIndexMapping is the document shape of the masters index.
const masterIndexMapping = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "id": {"type": "long"},
      "full_name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "custom_profession": {"type": "text"},
      "education_detail": {"type": "text"},
      "birthday": {"type": "date"},
      "phone_number": {"type": "keyword"},
      "gender": {"type": "keyword"},
      "is_active_on_main_page": {"type": "boolean"},
      "note": {"type": "text"},
      "experience": {"type": "integer"},
      "facebook_url": {"type": "keyword"},
      "instagram_url": {"type": "keyword"},
      "tiktok_url": {"type": "keyword"},
      "linkedin_url": {"type": "keyword"},
      "youtube_url": {"type": "keyword"},
      "created_at": {"type": "date"},
      "slug": {"type": "keyword"},
      "profession_category": {"properties": {
        "id": {"type": "long"}, "name": {"type": "text"}, "display_name": {"type": "text"}}},
      "profession_service": {"properties": {
        "id": {"type": "long"}, "name": {"type": "text"}, "display_name": {"type": "text"}}},
      "cities": {"type": "nested", "properties": {
        "id": {"type": "long"}, "name": {"type": "text"}, "display_name": {"type": "text"}}},
      "districts": {"type": "nested", "properties": {
        "id": {"type": "long"}, "name": {"type": "text"}, "display_name": {"type": "text"}}},
      "average_rating": {"type": "float"},
      "review_count": {"type": "integer"}
    }
  }
}`

type masterSearchRepository struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration

	// set once the mapped index is known to exist
	ready atomic.Bool
}

func NewMasterSearchRepository(es *elasticsearch.Client, index string, timeout time.Duration) domainRepo.MasterSearchRepository {
	return &masterSearchRepository{
		es:      es,
		index:   index,
		timeout: timeout,
	}
}

func (r *masterSearchRepository) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.es.Indices.Exists([]string{r.index}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists request: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		r.ready.Store(true)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("search: index exists [%s]", res.Status())
	}

	res, err = r.es.Indices.Create(
		r.index,
		r.es.Indices.Create.WithBody(strings.NewReader(masterIndexMapping)),
		r.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: create index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if bytes.Contains(body, []byte("resource_already_exists_exception")) {
			r.ready.Store(true)
			return nil
		}
		return fmt.Errorf("search: create index error [%s]: %s", res.Status(), body)
	}
	r.ready.Store(true)
	return nil
}

// Upsert writes the document under the master id, so repeating it is harmless.
// The index is created with its mapping first; a document write must never
// auto-create it with dynamic mappings.
func (r *masterSearchRepository) Upsert(ctx context.Context, doc *entity.MasterDocument) error {
	if !r.ready.Load() {
		if err := r.EnsureIndex(ctx); err != nil {
			return err
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.es.Index(
		r.index,
		bytes.NewReader(body),
		r.es.Index.WithDocumentID(documentID(doc.ID)),
		r.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index request: %w", err)
	}
	defer res.Body.Close()

	return responseError("index", res)
}

func (r *masterSearchRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.es.Delete(r.index, documentID(id), r.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete", res)
}

func (r *masterSearchRepository) DeleteStale(ctx context.Context, fromID uint, toID *uint, keep []uint) error {
	body, err := json.Marshal(staleQuery(fromID, toID, keep))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.es.DeleteByQuery(
		[]string{r.index},
		bytes.NewReader(body),
		r.es.DeleteByQuery.WithContext(ctx),
		r.es.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return fmt.Errorf("search: delete by query request: %w", err)
	}
	defer res.Body.Close()

	return responseError("delete by query", res)
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source entity.MasterDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *masterSearchRepository) Search(ctx context.Context, filter entity.MasterSearchFilter) (*entity.MasterSearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(filter)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(&buf),
		r.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search: query request: %w", err)
	}
	defer res.Body.Close()

	if err := responseError("query", res); err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	result := &entity.MasterSearchResult{
		Total:     parsed.Hits.Total.Value,
		Documents: make([]entity.MasterDocument, len(parsed.Hits.Hits)),
	}
	for i, hit := range parsed.Hits.Hits {
		result.Documents[i] = hit.Source
	}
	return result, nil
}

func responseError(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("search: %s error [%s]: %s", op, res.Status(), body)
}

func documentID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
