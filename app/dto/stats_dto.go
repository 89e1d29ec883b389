package dto

import "time"

// BucketDTO is one named count in an aggregation
type BucketDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// VisitCountResponse is the total visit count for one link
type VisitCountResponse struct {
	LinkID uint  `json:"link_id"`
	Visits int64 `json:"visits"`
}

// BrowserStatsResponse buckets a link's visits by browser and platform,
// top-N with ties
type BrowserStatsResponse struct {
	Browsers  []BucketDTO `json:"browsers"`
	Platforms []BucketDTO `json:"platforms"`
}

// RefererStatsResponse buckets a link's visits by normalized referer domain
type RefererStatsResponse struct {
	Referers []BucketDTO `json:"referers"`
}

// EndpointStatsResponse is the admin totals snapshot
type EndpointStatsResponse struct {
	Links    int64 `json:"links"`
	LinkHubs int64 `json:"linkhubs"`
	Visits   int64 `json:"visits"`
	Users    int64 `json:"users"`
}

// OverviewStatsRequest asks for per-day visit totals in [from, to)
type OverviewStatsRequest struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}

// DayBucketDTO is one day's visit total
type DayBucketDTO struct {
	Day    string `json:"day"`
	Visits int64  `json:"visits"`
}

// OverviewStatsResponse is the per-day series for the requested range
type OverviewStatsResponse struct {
	Days []DayBucketDTO `json:"days"`
}
