package dto

// GrantRoleRequest carries the optional comment on a grant; the role and
// entity arrive in the URL path
type GrantRoleRequest struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1024"`
}

// RoleGrantDTO is the API view of one grant
type RoleGrantDTO struct {
	Role      string  `json:"role"`
	Entity    string  `json:"entity"`
	GrantedBy string  `json:"granted_by"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ListRoleEntitiesResponse lists every entity holding a role
type ListRoleEntitiesResponse struct {
	Role     string   `json:"role"`
	Entities []string `json:"entities"`
}
