package dto

// LinkHubEntryDTO is one row in a hub's ordered link list
type LinkHubEntryDTO struct {
	Title string `json:"title" validate:"required,max=255"`
	URL   string `json:"url" validate:"required,max=4096"`
}

// CreateLinkHubRequest creates a hub with a custom or generated alias
type CreateLinkHubRequest struct {
	Title    string            `json:"title" validate:"required,max=255"`
	Alias    *string           `json:"alias,omitempty" validate:"omitempty,max=60"`
	IsPublic bool              `json:"is_public"`
	Links    []LinkHubEntryDTO `json:"links,omitempty" validate:"omitempty,max=100,dive"`
}

// CreateLinkHubResponse returns the new hub id and its alias
type CreateLinkHubResponse struct {
	ID    uint   `json:"id"`
	Alias string `json:"alias"`
}

// UpdateLinkHubRequest updates hub fields; a non-nil Links replaces the
// whole ordered list
type UpdateLinkHubRequest struct {
	Title    *string            `json:"title,omitempty" validate:"omitempty,max=255"`
	IsPublic *bool              `json:"is_public,omitempty"`
	Links    *[]LinkHubEntryDTO `json:"links,omitempty" validate:"omitempty,max=100,dive"`
}

// AddCollaboratorRequest grants a netid or org access to a hub
type AddCollaboratorRequest struct {
	EntityType string `json:"entity_type" validate:"required,oneof=netid org"`
	Entity     string `json:"entity" validate:"required,max=128"`
	Permission string `json:"permission" validate:"required,oneof=viewer editor"`
}

// CollaboratorDTO is the API view of one collaborator grant
type CollaboratorDTO struct {
	EntityType string `json:"entity_type"`
	Entity     string `json:"entity"`
	Permission string `json:"permission"`
}

// LinkHubDTO is the API view of a hub with its children
type LinkHubDTO struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	OwnerNetid    string            `json:"owner_netid"`
	Alias         string            `json:"alias,omitempty"`
	IsPublic      bool              `json:"is_public"`
	Links         []LinkHubEntryDTO `json:"links"`
	Collaborators []CollaboratorDTO `json:"collaborators,omitempty"`
	CreatedAt     string            `json:"created_at"`
}
