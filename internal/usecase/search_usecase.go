package usecase

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"
	"masters-marketplace/pkg/pagination"

	"github.com/sirupsen/logrus"
)

var ErrSearchUnavailable = errors.New("search is temporarily unavailable")

// The engine refuses from+size beyond this many hits.
const maxResultWindow = 10000

// Query parameters of the master search endpoint
const (
	SearchParam     = "search"
	CategoryParam   = "profession_category_id"
	ServiceParam    = "profession_service_id"
	CityParam       = "city_id"
	DistrictParam   = "district_id"
	ExperienceParam = "experience"
	OrderingParam   = "ordering"
)

type SearchUsecase interface {
	SearchMasters(ctx context.Context, filter entity.MasterSearchFilter) (*entity.MasterSearchResult, error)
}

type searchUsecase struct {
	log        *logrus.Logger
	searchRepo repository.MasterSearchRepository
}

func NewSearchUsecase(log *logrus.Logger, searchRepo repository.MasterSearchRepository) SearchUsecase {
	return &searchUsecase{
		log:        log,
		searchRepo: searchRepo,
	}
}

func (u *searchUsecase) SearchMasters(ctx context.Context, filter entity.MasterSearchFilter) (*entity.MasterSearchResult, error) {
	result, err := u.searchRepo.Search(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to search masters: %+v", err)
		return nil, ErrSearchUnavailable
	}
	if result.Documents == nil {
		result.Documents = []entity.MasterDocument{}
	}
	return result, nil
}

// ParseSearchFilter reads the search query string. Malformed numeric filters
// are dropped rather than rejected.
func ParseSearchFilter(q url.Values) entity.MasterSearchFilter {
	page := pagination.FromQuery(q, pagination.DefaultPageSize).Within(maxResultWindow)

	return entity.MasterSearchFilter{
		Search:     strings.TrimSpace(q.Get(SearchParam)),
		CategoryID: parseUintParam(q.Get(CategoryParam)),
		ServiceID:  parseUintParam(q.Get(ServiceParam)),
		CityID:     parseUintParam(q.Get(CityParam)),
		DistrictID: parseUintParam(q.Get(DistrictParam)),
		Experience: parseIntParam(q.Get(ExperienceParam)),
		Ordering:   strings.TrimSpace(q.Get(OrderingParam)),
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

func parseUintParam(s string) *uint {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

func parseIntParam(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}
