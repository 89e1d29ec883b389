package businessflow

import (
	"context"
	"strings"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// OrgFlow defines operations for organizations and their memberships
type OrgFlow interface {
	CreateOrg(ctx context.Context, netid string, req *dto.CreateOrgRequest) (*dto.OrgDTO, error)
	GetOrg(ctx context.Context, netid string, isAdmin bool, orgID uint) (*dto.OrgDTO, error)
	ListOrgs(ctx context.Context, netid string, isAdmin bool) (*dto.ListOrgsResponse, error)
	AddMember(ctx context.Context, netid string, isAdmin bool, orgID uint, req *dto.AddOrgMemberRequest) error
	RemoveMember(ctx context.Context, netid string, isAdmin bool, orgID uint, memberNetid string) error
	SetMemberAdmin(ctx context.Context, netid string, isAdmin bool, orgID uint, memberNetid string, req *dto.SetOrgMemberAdminRequest) error
	DeleteOrg(ctx context.Context, netid string, isAdmin bool, orgID uint) error
}

// OrgFlowImpl implements OrgFlow
type OrgFlowImpl struct {
	db      *gorm.DB
	orgRepo repository.OrganizationRepository
}

func NewOrgFlow(db *gorm.DB, orgRepo repository.OrganizationRepository) OrgFlow {
	return &OrgFlowImpl{db: db, orgRepo: orgRepo}
}

// CreateOrg creates an organization with the caller as its first admin
// member. The unique name index decides naming races.
func (f *OrgFlowImpl) CreateOrg(ctx context.Context, netid string, req *dto.CreateOrgRequest) (*dto.OrgDTO, error) {
	name := strings.TrimSpace(req.Name)
	org := &models.Organization{Name: name}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orgRepo.Save(txCtx, org); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrOrgNameTaken
			}
			return err
		}
		return f.orgRepo.AddMember(txCtx, &models.OrganizationMember{
			OrganizationID: org.ID,
			Netid:          netid,
			IsAdmin:        true,
		})
	})
	if err != nil {
		return nil, err
	}

	org.Members = []models.OrganizationMember{{OrganizationID: org.ID, Netid: netid, IsAdmin: true}}
	out := ToOrgDTO(org)
	return &out, nil
}

func (f *OrgFlowImpl) GetOrg(ctx context.Context, netid string, isAdmin bool, orgID uint) (*dto.OrgDTO, error) {
	org, err := f.liveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	full, err := f.orgRepo.WithMembers(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, ErrOrgNotFound
	}
	if !isAdmin && !isMember(full.Members, netid) {
		return nil, ErrForbidden
	}
	out := ToOrgDTO(full)
	return &out, nil
}

// ListOrgs lists the caller's organizations; global admins see every live org
func (f *OrgFlowImpl) ListOrgs(ctx context.Context, netid string, isAdmin bool) (*dto.ListOrgsResponse, error) {
	deleted := false
	filter := models.OrganizationFilter{Deleted: &deleted}
	if !isAdmin {
		filter.MemberNetid = &netid
	}
	orgs, err := f.orgRepo.ByFilter(ctx, filter, "name ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrgDTO, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, ToOrgDTO(org))
	}
	return &dto.ListOrgsResponse{Organizations: out}, nil
}

func (f *OrgFlowImpl) AddMember(ctx context.Context, netid string, isAdmin bool, orgID uint, req *dto.AddOrgMemberRequest) error {
	org, err := f.liveOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := f.requireOrgAdmin(ctx, org.ID, netid, isAdmin); err != nil {
		return err
	}

	err = f.orgRepo.AddMember(ctx, &models.OrganizationMember{
		OrganizationID: org.ID,
		Netid:          req.Netid,
		IsAdmin:        req.IsAdmin,
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return ErrMemberExists
		}
		return err
	}
	return nil
}

// RemoveMember removes a membership. The rows are locked so the last-admin
// check and the delete observe the same membership set even under
// concurrent removals.
func (f *OrgFlowImpl) RemoveMember(ctx context.Context, netid string, isAdmin bool, orgID uint, memberNetid string) error {
	org, err := f.liveOrg(ctx, orgID)
	if err != nil {
		return err
	}
	// Members may always remove themselves, subject to the admin floor
	if netid != memberNetid {
		if err := f.requireOrgAdmin(ctx, org.ID, netid, isAdmin); err != nil {
			return err
		}
	}

	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		members, err := f.orgRepo.ListMembersForUpdate(txCtx, org.ID)
		if err != nil {
			return err
		}
		target := findMember(members, memberNetid)
		if target == nil {
			return ErrMemberNotFound
		}
		if target.IsAdmin && countAdmins(members) <= 1 {
			return ErrLastAdmin
		}
		removed, err := f.orgRepo.RemoveMember(txCtx, org.ID, memberNetid)
		if err != nil {
			return err
		}
		if !removed {
			return ErrMemberNotFound
		}
		return nil
	})
}

func (f *OrgFlowImpl) SetMemberAdmin(ctx context.Context, netid string, isAdmin bool, orgID uint, memberNetid string, req *dto.SetOrgMemberAdminRequest) error {
	org, err := f.liveOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := f.requireOrgAdmin(ctx, org.ID, netid, isAdmin); err != nil {
		return err
	}

	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		members, err := f.orgRepo.ListMembersForUpdate(txCtx, org.ID)
		if err != nil {
			return err
		}
		target := findMember(members, memberNetid)
		if target == nil {
			return ErrMemberNotFound
		}
		if target.IsAdmin && !req.IsAdmin && countAdmins(members) <= 1 {
			return ErrLastAdmin
		}
		return f.orgRepo.SetMemberAdmin(txCtx, org.ID, memberNetid, req.IsAdmin)
	})
}

func (f *OrgFlowImpl) DeleteOrg(ctx context.Context, netid string, isAdmin bool, orgID uint) error {
	org, err := f.liveOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := f.requireOrgAdmin(ctx, org.ID, netid, isAdmin); err != nil {
		return err
	}
	return f.orgRepo.SoftDelete(ctx, org.ID, utils.UTCNow())
}

func (f *OrgFlowImpl) liveOrg(ctx context.Context, orgID uint) (*models.Organization, error) {
	org, err := f.orgRepo.ByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil || org.Deleted {
		return nil, ErrOrgNotFound
	}
	return org, nil
}

// requireOrgAdmin allows global admins and the org's admin members
func (f *OrgFlowImpl) requireOrgAdmin(ctx context.Context, orgID uint, netid string, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	members, err := f.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return err
	}
	m := findMember(members, netid)
	if m == nil || !m.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func isMember(members []models.OrganizationMember, netid string) bool {
	for _, m := range members {
		if m.Netid == netid {
			return true
		}
	}
	return false
}

func findMember(members []*models.OrganizationMember, netid string) *models.OrganizationMember {
	for _, m := range members {
		if m.Netid == netid {
			return m
		}
	}
	return nil
}

func countAdmins(members []*models.OrganizationMember) int {
	n := 0
	for _, m := range members {
		if m.IsAdmin {
			n++
		}
	}
	return n
}
