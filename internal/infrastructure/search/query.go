package search

import (
	"sort"
	"strings"

	searchapp "github.com/datahub/backend/internal/application/search"
)

// fieldRemapping maps sort fields to their sortable variants
var fieldRemapping = map[string]string{
	"name": "name_keyword",
}

type query = map[string]any

// buildTermQuery matches every document for a blank term. Otherwise it
// prefers exact name matches, then exact ids, then the app's search fields.
func buildTermQuery(term string, fields []string) query {
	if strings.TrimSpace(term) == "" {
		return query{"match_all": query{}}
	}
	should := []query{
		{"match_phrase": query{"name_keyword": query{"query": term, "boost": 2}}},
		{"match_phrase": query{"id": term}},
		{"match": query{"name": query{"query": term}}},
	}
	if len(fields) > 0 {
		should = append(should, query{"multi_match": query{
			"query":    term,
			"fields":   fields,
			"type":     "cross_fields",
			"operator": "and",
		}})
	}
	return query{"bool": query{"should": should}}
}

// splitRangeFields separates "<field>_before" and "<field>_after" filters
// into range conditions on <field>
func splitRangeFields(filters map[string]any) (map[string]any, map[string]query) {
	plain := make(map[string]any, len(filters))
	ranges := map[string]query{}
	for k, v := range filters {
		switch {
		case strings.HasSuffix(k, "_before"):
			field := strings.TrimSuffix(k, "_before")
			if ranges[field] == nil {
				ranges[field] = query{}
			}
			ranges[field]["lte"] = v
		case strings.HasSuffix(k, "_after"):
			field := strings.TrimSuffix(k, "_after")
			if ranges[field] == nil {
				ranges[field] = query{}
			}
			ranges[field]["gte"] = v
		default:
			plain[k] = v
		}
	}
	return plain, ranges
}

func nestedPath(field string) (string, bool) {
	path, _, ok := strings.Cut(field, ".")
	return path, ok
}

func wrapNested(field string, q query) query {
	if path, ok := nestedPath(field); ok {
		return query{"nested": query{"path": path, "query": q}}
	}
	return q
}

func buildExistsQuery(field string, exists bool) query {
	kind := "must_not"
	if exists {
		kind = "must"
	}
	return query{"bool": query{kind: query{"exists": query{"field": field}}}}
}

func buildSingleFieldQuery(field string, value any) query {
	if value == nil {
		// null matches documents without the related object
		if idx := strings.LastIndex(field, "."); idx >= 0 {
			field = field[:idx]
		}
		return buildExistsQuery(field, false)
	}

	var q query
	switch {
	case strings.HasSuffix(field, "_exists"):
		exists, _ := value.(bool)
		return buildExistsQuery(strings.TrimSuffix(field, "_exists"), exists)
	case strings.HasSuffix(field, ".id"), strings.HasSuffix(field, "_keyword"):
		q = query{"match_phrase": query{field: value}}
	default:
		q = query{"match": query{field: query{"query": value, "operator": "and"}}}
	}
	return wrapNested(field, q)
}

func buildFieldQuery(field string, value any) query {
	if values, ok := value.([]any); ok {
		should := make([]query, 0, len(values))
		for _, v := range values {
			should = append(should, buildSingleFieldQuery(field, v))
		}
		return query{"bool": query{"should": should, "minimum_should_match": 1}}
	}
	if values, ok := value.([]string); ok {
		generic := make([]any, len(values))
		for i, v := range values {
			generic[i] = v
		}
		return buildFieldQuery(field, generic)
	}
	return buildSingleFieldQuery(field, value)
}

func buildRangeQuery(field string, bounds query) query {
	return wrapNested(field, query{"range": query{field: bounds}})
}

// buildFilterQueries turns filters into conditions that must all match.
// Filters are processed in key order so the same input builds the same query.
func buildFilterQueries(filters map[string]any) []query {
	plain, ranges := splitRangeFields(filters)

	must := make([]query, 0, len(plain)+len(ranges))
	for _, field := range sortedKeys(plain) {
		must = append(must, buildFieldQuery(field, plain[field]))
	}
	rangeFields := make([]string, 0, len(ranges))
	for field := range ranges {
		rangeFields = append(rangeFields, field)
	}
	sort.Strings(rangeFields)
	for _, field := range rangeFields {
		must = append(must, buildRangeQuery(field, ranges[field]))
	}
	return must
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildSort orders by relevance when sortBy is empty, otherwise by
// "field" or "field:order" with id as the tie breaker
func buildSort(sortBy string) []any {
	if sortBy == "" {
		return []any{"_score", "id"}
	}
	field, order := sortBy, "asc"
	if idx := strings.LastIndex(sortBy, ":"); idx >= 0 {
		field, order = sortBy[:idx], sortBy[idx+1:]
	}
	if order != "desc" {
		order = "asc"
	}

	params := query{"order": order, "missing": "_last"}
	if order == "asc" {
		params["missing"] = "_first"
	}
	if path, ok := nestedPath(field); ok {
		params["nested"] = query{"path": path}
	}
	if remapped, ok := fieldRemapping[field]; ok {
		field = remapped
	}
	return []any{query{field: params}, "id"}
}

func buildAggregations(fields []string) query {
	aggs := query{}
	for _, field := range fields {
		if strings.HasSuffix(field, "_before") || strings.HasSuffix(field, "_after") || strings.HasSuffix(field, "_exists") {
			continue
		}
		terms := query{"terms": query{"field": field}}
		if path, ok := nestedPath(field); ok {
			aggs[field] = query{
				"nested": query{"path": path},
				"aggs":   query{field: terms},
			}
			continue
		}
		aggs[field] = terms
	}
	return aggs
}

// buildEntitySearch builds the request body of a search in one app
func buildEntitySearch(cfg appConfig, q searchapp.Query) query {
	body := query{
		"query":            buildTermQuery(q.Term, cfg.searchFields),
		"sort":             buildSort(q.SortBy),
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
	}
	if filters := buildFilterQueries(q.Filters); len(filters) > 0 {
		body["post_filter"] = query{"bool": query{"must": filters}}
	}
	if aggs := buildAggregations(q.Aggregations); len(aggs) > 0 {
		body["aggs"] = aggs
	}
	return body
}

// buildBasicSearch builds a search across every app that returns documents
// of entity and counts matches per app
func buildBasicSearch(entity string, fields []string, q searchapp.Query) query {
	return query{
		"query":            buildTermQuery(q.Term, fields),
		"post_filter":      query{"term": query{DocumentTypeField: entity}},
		"sort":             buildSort(q.SortBy),
		"from":             q.Offset,
		"size":             q.Limit,
		"track_total_hits": true,
		"aggs": query{
			"count_by_type": query{"terms": query{"field": DocumentTypeField}},
		},
	}
}
