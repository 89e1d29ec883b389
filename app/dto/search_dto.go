package dto

// SearchRequest is the typed link search. Every enumerated field is
// validated before it touches a query; free text only ever becomes a
// parameterized ILIKE predicate.
type SearchRequest struct {
	Query            string `json:"query" validate:"max=256"`
	Set              string `json:"set" validate:"omitempty,oneof=mine all"`
	Sort             string `json:"sort" validate:"omitempty,oneof=relevance created_asc created_desc visits"`
	ShowDeletedLinks bool   `json:"show_deleted_links"`
	ShowExpiredLinks bool   `json:"show_expired_links"`
	ShowType         string `json:"show_type" validate:"omitempty,oneof=links tracking_pixels both"`
	Page             int    `json:"page" validate:"omitempty,min=1"`
	PageSize         int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// SearchResponse pages through matching links
type SearchResponse struct {
	Results  []LinkDTO `json:"results"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
