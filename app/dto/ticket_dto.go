package dto

// CreateTicketRequest submits a request ticket. Entity is required for
// whitelisting requests.
type CreateTicketRequest struct {
	Reason  string  `json:"reason" validate:"required,oneof=power_user whitelisted other"`
	Entity  *string `json:"entity,omitempty" validate:"omitempty,max=255"`
	Comment string  `json:"comment" validate:"required,max=2000"`
}

// TicketDTO is the API view of a ticket
type TicketDTO struct {
	UUID       string  `json:"uuid"`
	Reason     string  `json:"reason"`
	Entity     *string `json:"entity,omitempty"`
	Comment    string  `json:"comment"`
	Status     string  `json:"status"`
	CreatedBy  string  `json:"created_by"`
	ActionedBy *string `json:"actioned_by,omitempty"`
	CreatedAt  string  `json:"created_at"`
	ClosedAt   *string `json:"closed_at,omitempty"`
}

// CloseTicketRequest closes a ticket; GrantRole applies the requested role
// as part of closing
type CloseTicketRequest struct {
	GrantRole bool `json:"grant_role"`
}

// ListTicketsResponse lists tickets visible to the caller
type ListTicketsResponse struct {
	Tickets []TicketDTO `json:"tickets"`
	Total   int64       `json:"total"`
}
