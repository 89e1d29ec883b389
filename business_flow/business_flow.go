// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging and
// visit recording
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referer   string `json:"referer,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToLinkDTO converts a link model (with preloaded aliases) to its API view
func ToLinkDTO(link *models.Link) dto.LinkDTO {
	aliases := make([]string, 0, len(link.Aliases))
	for _, a := range link.Aliases {
		if !a.Deleted {
			aliases = append(aliases, a.Alias)
		}
	}
	return dto.LinkDTO{
		ID:              link.ID,
		OwnerNetid:      link.OwnerNetid,
		Title:           link.Title,
		LongURL:         link.LongURL,
		Aliases:         aliases,
		ExpiresAt:       link.ExpiresAt,
		IsTrackingPixel: link.IsTrackingPixel,
		PixelExtension:  link.PixelExtension,
		Tags:            link.Tags,
		Deleted:         link.Deleted,
		CreatedAt:       link.CreatedAt.Format(time.RFC3339),
	}
}

// ToTicketDTO converts a ticket model to its API view
func ToTicketDTO(t *models.Ticket) dto.TicketDTO {
	out := dto.TicketDTO{
		UUID:       t.UUID.String(),
		Reason:     t.Reason,
		Entity:     t.Entity,
		Comment:    t.Comment,
		Status:     t.Status,
		CreatedBy:  t.CreatedBy,
		ActionedBy: t.ActionedBy,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
	if t.ClosedAt != nil {
		s := t.ClosedAt.Format(time.RFC3339)
		out.ClosedAt = &s
	}
	return out
}

// ToOrgDTO converts an organization (optionally with members) to its API view
func ToOrgDTO(org *models.Organization) dto.OrgDTO {
	members := make([]dto.OrgMemberDTO, 0, len(org.Members))
	for _, m := range org.Members {
		members = append(members, dto.OrgMemberDTO{Netid: m.Netid, IsAdmin: m.IsAdmin})
	}
	return dto.OrgDTO{
		ID:        org.ID,
		Name:      org.Name,
		Members:   members,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
	}
}
