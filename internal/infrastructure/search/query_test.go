package search

import (
	"encoding/json"
	"testing"

	searchapp "github.com/datahub/backend/internal/application/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestBuildTermQuery(t *testing.T) {
	t.Run("blank term matches everything", func(t *testing.T) {
		assert.JSONEq(t, `{"match_all":{}}`, toJSON(t, buildTermQuery("  ", []string{"name"})))
	})

	t.Run("term", func(t *testing.T) {
		expected := `{"bool":{"should":[
			{"match_phrase":{"name_keyword":{"query":"acme","boost":2}}},
			{"match_phrase":{"id":"acme"}},
			{"match":{"name":{"query":"acme"}}},
			{"multi_match":{"query":"acme","fields":["name","company_number"],"type":"cross_fields","operator":"and"}}
		]}}`
		assert.JSONEq(t, expected, toJSON(t, buildTermQuery("acme", []string{"name", "company_number"})))
	})
}

func TestBuildFilterQueries(t *testing.T) {
	tests := []struct {
		name     string
		filters  map[string]any
		expected string
	}{
		{
			name:     "plain field",
			filters:  map[string]any{"status": "ongoing"},
			expected: `[{"match":{"status":{"query":"ongoing","operator":"and"}}}]`,
		},
		{
			name:     "nested id",
			filters:  map[string]any{"sector.id": "s1"},
			expected: `[{"nested":{"path":"sector","query":{"match_phrase":{"sector.id":"s1"}}}}]`,
		},
		{
			name:    "list is an or",
			filters: map[string]any{"uk_region.id": []string{"r1", "r2"}},
			expected: `[{"bool":{"minimum_should_match":1,"should":[
				{"nested":{"path":"uk_region","query":{"match_phrase":{"uk_region.id":"r1"}}}},
				{"nested":{"path":"uk_region","query":{"match_phrase":{"uk_region.id":"r2"}}}}
			]}}]`,
		},
		{
			name:     "null means missing",
			filters:  map[string]any{"one_list_account_owner.id": nil},
			expected: `[{"bool":{"must_not":{"exists":{"field":"one_list_account_owner"}}}}]`,
		},
		{
			name:     "exists suffix",
			filters:  map[string]any{"archived_on_exists": true},
			expected: `[{"bool":{"must":{"exists":{"field":"archived_on"}}}}]`,
		},
		{
			name:     "date range",
			filters:  map[string]any{"date_after": "2024-01-01", "date_before": "2024-12-31"},
			expected: `[{"range":{"date":{"gte":"2024-01-01","lte":"2024-12-31"}}}]`,
		},
		{
			name:     "keyword field",
			filters:  map[string]any{"name_keyword": "Acme"},
			expected: `[{"match_phrase":{"name_keyword":"Acme"}}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.expected, toJSON(t, buildFilterQueries(tt.filters)))
		})
	}
}

func TestBuildFilterQueries_IsDeterministic(t *testing.T) {
	filters := map[string]any{"b": "2", "a": "1", "c_before": "x"}
	first := toJSON(t, buildFilterQueries(filters))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, toJSON(t, buildFilterQueries(filters)))
	}
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		sortBy   string
		expected string
	}{
		{"", `["_score","id"]`},
		{"name", `[{"name_keyword":{"order":"asc","missing":"_first"}},"id"]`},
		{"modified_on:desc", `[{"modified_on":{"order":"desc","missing":"_last"}},"id"]`},
		{"stage.name:asc", `[{"stage.name":{"order":"asc","missing":"_first","nested":{"path":"stage"}}},"id"]`},
		{"created_on:sideways", `[{"created_on":{"order":"asc","missing":"_first"}},"id"]`},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			assert.JSONEq(t, tt.expected, toJSON(t, buildSort(tt.sortBy)))
		})
	}
}

func TestBuildAggregations(t *testing.T) {
	aggs := buildAggregations([]string{"status", "stage.id", "date_after", "archived_exists"})
	assert.JSONEq(t, `{
		"status":{"terms":{"field":"status"}},
		"stage.id":{"nested":{"path":"stage"},"aggs":{"stage.id":{"terms":{"field":"stage.id"}}}}
	}`, toJSON(t, aggs))
}

func TestBuildEntitySearch(t *testing.T) {
	cfg, ok := appFor(searchapp.AppInvestmentProject)
	require.True(t, ok)

	body := buildEntitySearch(cfg, searchapp.Query{
		Filters: map[string]any{"status": "won"},
		Offset:  20,
		Limit:   10,
	})
	assert.Equal(t, 20, body["from"])
	assert.Equal(t, 10, body["size"])
	assert.Equal(t, query{"match_all": query{}}, body["query"])
	assert.Contains(t, body, "post_filter")
	assert.NotContains(t, body, "aggs")
}

func TestBuildBasicSearch(t *testing.T) {
	body := buildBasicSearch(searchapp.AppContact, []string{"name"}, searchapp.Query{Term: "smith", Limit: 5})
	assert.JSONEq(t, `{"term":{"_document_type":"contact"}}`, toJSON(t, body["post_filter"]))
	assert.JSONEq(t, `{"count_by_type":{"terms":{"field":"_document_type"}}}`, toJSON(t, body["aggs"]))
}
