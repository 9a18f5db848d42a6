package repository

import (
	"strings"

	"masters-marketplace/internal/domain/entity"
)

// sortableFields maps public ordering names to index fields.
var sortableFields = map[string]string{
	"experience":     "experience",
	"full_name":      "full_name.keyword",
	"created_at":     "created_at",
	"birthday":       "birthday",
	"average_rating": "average_rating",
	"review_count":   "review_count",
}

// textFields are matched by the free-text part of a search.
var textFields = []string{
	"full_name",
	"custom_profession",
	"profession_category.name",
	"profession_category.display_name",
	"profession_service.name",
	"profession_service.display_name",
}

// buildSearchQuery translates a filter into an Elasticsearch request body.
// Exact filters restrict the candidate set in filter context; the text query
// only ranks within it. Cities and districts are nested so a filter matches
// one element, never fields spread across elements.
func buildSearchQuery(filter entity.MasterSearchFilter) map[string]interface{} {
	filters := []interface{}{
		term("is_active_on_main_page", true),
	}
	if filter.CategoryID != nil {
		filters = append(filters, term("profession_category.id", *filter.CategoryID))
	}
	if filter.ServiceID != nil {
		filters = append(filters, term("profession_service.id", *filter.ServiceID))
	}
	if filter.Experience != nil {
		filters = append(filters, term("experience", *filter.Experience))
	}
	if filter.CityID != nil {
		filters = append(filters, nested("cities", term("cities.id", *filter.CityID)))
	}
	if filter.DistrictID != nil {
		filters = append(filters, nested("districts", term("districts.id", *filter.DistrictID)))
	}

	boolQuery := map[string]interface{}{
		"filter": filters,
	}
	if text := strings.TrimSpace(filter.Search); text != "" {
		boolQuery["must"] = []interface{}{textQuery(text)}
	}

	return map[string]interface{}{
		"query":            map[string]interface{}{"bool": boolQuery},
		"sort":             buildSort(filter.Ordering),
		"from":             filter.Offset(),
		"size":             filter.PageSize,
		"track_total_hits": true,
	}
}

func textQuery(text string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  text,
						"fields": textFields,
					},
				},
				nested("cities", map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  text,
						"fields": []string{"cities.name", "cities.display_name"},
					},
				}),
				nested("districts", map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  text,
						"fields": []string{"districts.name", "districts.display_name"},
					},
				}),
			},
			"minimum_should_match": 1,
		},
	}
}

// buildSort always ends with id so that pages partition the result set.
func buildSort(ordering string) []interface{} {
	sort := make([]interface{}, 0, 2)

	if field, direction, ok := parseOrdering(ordering); ok {
		sort = append(sort, map[string]interface{}{
			field: map[string]interface{}{"order": direction, "missing": "_last"},
		})
	} else {
		sort = append(sort, "_score")
	}

	return append(sort, map[string]interface{}{
		"id": map[string]interface{}{"order": "asc"},
	})
}

// parseOrdering accepts "field" or "-field" for a known sortable field.
func parseOrdering(ordering string) (field, direction string, ok bool) {
	ordering = strings.TrimSpace(ordering)
	direction = "asc"
	if strings.HasPrefix(ordering, "-") {
		direction = "desc"
		ordering = ordering[1:]
	}

	field, ok = sortableFields[ordering]
	return field, direction, ok
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

func nested(path string, query map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"nested": map[string]interface{}{
			"path":  path,
			"query": query,
		},
	}
}

// staleQuery matches documents in [fromID, toID] whose id is not kept.
func staleQuery(fromID uint, toID *uint, keep []uint) map[string]interface{} {
	idRange := map[string]interface{}{"gte": fromID}
	if toID != nil {
		idRange["lte"] = *toID
	}

	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"range": map[string]interface{}{"id": idRange}},
		},
	}
	if len(keep) > 0 {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"terms": map[string]interface{}{"id": keep}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}
