package dto

import (
	"encoding/json"

	"github.com/datahub/backend/internal/domain/shared"
)

// ListRequest holds the pagination and ordering query parameters of list endpoints
type ListRequest struct {
	Offset int    `form:"offset" binding:"min=0"`
	Limit  int    `form:"limit" binding:"min=0"`
	SortBy string `form:"sortby"`
	Search string `form:"search"`
}

// Filter converts the request into a repository filter. A leading "-" in
// sortby orders descending.
func (r ListRequest) Filter() shared.Filter {
	f := shared.Filter{
		Offset:  r.Offset,
		Limit:   r.Limit,
		Search:  r.Search,
		Filters: map[string]any{},
	}
	if r.SortBy != "" {
		f.OrderBy = r.SortBy
		f.OrderDir = "asc"
		if r.SortBy[0] == '-' {
			f.OrderBy = r.SortBy[1:]
			f.OrderDir = "desc"
		}
	}
	return f
}

// ArchiveRequest is the body of archive endpoints
type ArchiveRequest struct {
	Reason string `json:"reason" example:"Company is dissolved"`
}

// DetailsRequest is the body of proposition complete and abandon endpoints
type DetailsRequest struct {
	Details string `json:"details" example:"Proposition delivered to the investor"`
}

// SearchRequest is the body of the per-app search endpoints
type SearchRequest struct {
	OriginalQuery string         `json:"original_query" example:"acme"`
	Offset        int            `json:"offset" binding:"min=0"`
	Limit         int            `json:"limit" binding:"min=0"`
	SortBy        string         `json:"sortby" example:"name:asc"`
	Filters       map[string]any `json:"-"`
}

// UnmarshalJSON collects every unknown key of the body as a filter
func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Filters = map[string]any{}
	for key, value := range raw {
		var err error
		switch key {
		case "original_query":
			err = json.Unmarshal(value, &r.OriginalQuery)
		case "offset":
			err = json.Unmarshal(value, &r.Offset)
		case "limit":
			err = json.Unmarshal(value, &r.Limit)
		case "sortby":
			err = json.Unmarshal(value, &r.SortBy)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			r.Filters[key] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LoginRequest is the body of the token endpoint
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"adviser@example.com"`
	Password string `json:"password" binding:"required"`
}

// UploadRequest is the body of proposition document create requests
type UploadRequest struct {
	OriginalFilename string `json:"original_filename" example:"pitch.pdf"`
}

// TitleRequest is the body of generic document title updates
type TitleRequest struct {
	Title string `json:"title" example:"Board minutes"`
}
