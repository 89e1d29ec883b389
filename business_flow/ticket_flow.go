package businessflow

import (
	"context"
	"strings"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
)

// TicketFlow defines operations for request tickets
type TicketFlow interface {
	CreateTicket(ctx context.Context, netid string, req *dto.CreateTicketRequest) (*dto.TicketDTO, error)
	ListTickets(ctx context.Context, netid string, isAdmin bool) (*dto.ListTicketsResponse, error)
	CloseTicket(ctx context.Context, actorNetid string, isAdmin bool, uuidStr string, req *dto.CloseTicketRequest) (*dto.TicketDTO, error)
	DeleteTicket(ctx context.Context, netid string, uuidStr string) error
}

// TicketFlowImpl implements TicketFlow
type TicketFlowImpl struct {
	ticketRepo repository.TicketRepository
	roleRepo   repository.RoleGrantRepository
}

func NewTicketFlow(ticketRepo repository.TicketRepository, roleRepo repository.RoleGrantRepository) TicketFlow {
	return &TicketFlowImpl{ticketRepo: ticketRepo, roleRepo: roleRepo}
}

// requestedRole maps a ticket to the role grant it asks for. The grant
// target is the creator for power_user requests and the named entity for
// whitelisting requests; "other" tickets carry no grant.
func requestedRole(t *models.Ticket) (role, entity string, ok bool) {
	switch t.Reason {
	case models.TicketReasonPowerUser:
		return models.RolePowerUser, t.CreatedBy, true
	case models.TicketReasonWhitelisted:
		if t.Entity == nil {
			return "", "", false
		}
		return models.RoleWhitelisted, *t.Entity, true
	}
	return "", "", false
}

// CreateTicket submits a ticket. A request for a role the target already
// holds is rejected, as is a duplicate of a still-open ticket; the partial
// unique index over open tickets settles concurrent duplicates.
func (f *TicketFlowImpl) CreateTicket(ctx context.Context, netid string, req *dto.CreateTicketRequest) (*dto.TicketDTO, error) {
	if !models.IsKnownTicketReason(req.Reason) {
		return nil, ErrUnknownReason
	}
	if req.Reason == models.TicketReasonWhitelisted && (req.Entity == nil || strings.TrimSpace(*req.Entity) == "") {
		return nil, ErrTicketEntityNeeded
	}

	ticket := &models.Ticket{
		Reason:    req.Reason,
		Entity:    req.Entity,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedBy: netid,
	}

	if role, entity, ok := requestedRole(ticket); ok {
		held, err := f.roleRepo.ByRoleAndEntity(ctx, role, entity)
		if err != nil {
			return nil, err
		}
		if held != nil {
			return nil, ErrRoleAlreadyHeld
		}
	}

	dup, err := f.ticketRepo.OpenDuplicateExists(ctx, netid, req.Reason, req.Entity)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateTicket
	}

	if err := f.ticketRepo.Save(ctx, ticket); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrDuplicateTicket
		}
		return nil, err
	}

	out := ToTicketDTO(ticket)
	return &out, nil
}

// ListTickets returns the caller's tickets; admins see all
func (f *TicketFlowImpl) ListTickets(ctx context.Context, netid string, isAdmin bool) (*dto.ListTicketsResponse, error) {
	filter := models.TicketFilter{}
	if !isAdmin {
		filter.CreatedBy = &netid
	}

	total, err := f.ticketRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	tickets, err := f.ticketRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ToTicketDTO(t))
	}
	return &dto.ListTicketsResponse{Tickets: out, Total: total}, nil
}

// CloseTicket closes an open ticket, optionally granting the requested
// role. A grant that lost a race to an identical grant does not block the
// close.
func (f *TicketFlowImpl) CloseTicket(ctx context.Context, actorNetid string, isAdmin bool, uuidStr string, req *dto.CloseTicketRequest) (*dto.TicketDTO, error) {
	if !isAdmin {
		return nil, ErrForbidden
	}

	ticket, err := f.ticketRepo.ByUUID(ctx, uuidStr)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.Status != models.TicketStatusOpen {
		return nil, ErrTicketNotFound
	}

	if req != nil && req.GrantRole {
		role, entity, ok := requestedRole(ticket)
		if ok {
			grant := &models.RoleGrant{Role: role, Entity: entity, GrantedBy: actorNetid}
			if err := f.roleRepo.Save(ctx, grant); err != nil && !repository.IsDuplicateKey(err) {
				return nil, err
			}
		}
	}

	now := utils.UTCNow()
	if err := f.ticketRepo.Close(ctx, ticket.ID, actorNetid, now); err != nil {
		return nil, err
	}

	fresh, err := f.ticketRepo.ByID(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrTicketNotFound
	}
	out := ToTicketDTO(fresh)
	return &out, nil
}

// DeleteTicket lets a creator withdraw an open ticket. Deleting an absent
// ticket succeeds so retries are harmless; closed tickets stay for the
// audit trail.
func (f *TicketFlowImpl) DeleteTicket(ctx context.Context, netid string, uuidStr string) error {
	ticket, err := f.ticketRepo.ByUUID(ctx, uuidStr)
	if err != nil {
		return err
	}
	if ticket == nil {
		return nil
	}
	if ticket.CreatedBy != netid {
		return ErrForbidden
	}
	if ticket.Status != models.TicketStatusOpen {
		return ErrForbidden
	}
	_, err = f.ticketRepo.DeleteOpen(ctx, ticket.ID, netid)
	return err
}
