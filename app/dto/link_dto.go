package dto

import "time"

// CreateLinkRequest creates a link with a custom or generated alias.
// A tracking pixel carries an image extension instead of a browser redirect.
type CreateLinkRequest struct {
	Title           string     `json:"title" validate:"required,max=255"`
	LongURL         string     `json:"long_url" validate:"required,max=4096"`
	Alias           *string    `json:"alias,omitempty" validate:"omitempty,max=60"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsTrackingPixel bool       `json:"is_tracking_pixel"`
	PixelExtension  string     `json:"pixel_extension,omitempty" validate:"omitempty,oneof=png gif"`
	Tags            []string   `json:"tags,omitempty" validate:"omitempty,max=16,dive,max=64"`
}

// CreateLinkResponse returns the new link id and its first alias
type CreateLinkResponse struct {
	ID    uint   `json:"id"`
	Alias string `json:"alias"`
}

// UpdateLinkRequest updates mutable link fields. Nil fields are untouched;
// ClearExpiry removes an existing expiry.
type UpdateLinkRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	LongURL     *string    `json:"long_url,omitempty" validate:"omitempty,max=4096"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClearExpiry bool       `json:"clear_expiry,omitempty"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=16,dive,max=64"`
}

// AddAliasRequest attaches an alias to an existing link. Nil alias means
// generate one.
type AddAliasRequest struct {
	Alias *string `json:"alias,omitempty" validate:"omitempty,max=60"`
}

// AddAliasResponse returns the attached alias
type AddAliasResponse struct {
	Alias string `json:"alias"`
}

// LinkDTO is the API view of a link
type LinkDTO struct {
	ID              uint       `json:"id"`
	OwnerNetid      string     `json:"owner_netid"`
	Title           string     `json:"title"`
	LongURL         string     `json:"long_url"`
	Aliases         []string   `json:"aliases"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsTrackingPixel bool       `json:"is_tracking_pixel"`
	PixelExtension  string     `json:"pixel_extension,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Deleted         bool       `json:"deleted"`
	CreatedAt       string     `json:"created_at"`
}

// ListLinksResponse pages through a user's links
type ListLinksResponse struct {
	Links    []LinkDTO `json:"links"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
