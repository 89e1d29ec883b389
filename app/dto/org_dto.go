package dto

// CreateOrgRequest creates an organization; the creator becomes its first
// admin member
type CreateOrgRequest struct {
	Name string `json:"name" validate:"required,min=2,max=128"`
}

// OrgMemberDTO is the API view of one membership
type OrgMemberDTO struct {
	Netid   string `json:"netid"`
	IsAdmin bool   `json:"is_admin"`
}

// OrgDTO is the API view of an organization
type OrgDTO struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Members   []OrgMemberDTO `json:"members,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// AddOrgMemberRequest adds a netid to an organization
type AddOrgMemberRequest struct {
	Netid   string `json:"netid" validate:"required,min=2,max=64"`
	IsAdmin bool   `json:"is_admin"`
}

// SetOrgMemberAdminRequest promotes or demotes a member
type SetOrgMemberAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// ListOrgsResponse lists organizations visible to the caller
type ListOrgsResponse struct {
	Organizations []OrgDTO `json:"organizations"`
}
