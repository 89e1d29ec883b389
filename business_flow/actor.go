package businessflow

import (
	"context"

	"github.com/plexlink/plexlink/repository"
)

// LoadActorContext assembles the permission evaluator's view of a caller:
// the roles granted to the netid and the organizations it currently belongs
// to. Always read fresh so grants and membership changes apply immediately.
func LoadActorContext(ctx context.Context, netid string, roleRepo repository.RoleGrantRepository, orgRepo repository.OrganizationRepository) (ActorContext, error) {
	actor := ActorContext{Netid: netid, Roles: map[string]struct{}{}}
	if netid == "" {
		return actor, nil
	}

	roles, err := roleRepo.ListRolesForEntity(ctx, netid)
	if err != nil {
		return actor, err
	}
	for _, role := range roles {
		actor.Roles[role] = struct{}{}
	}

	orgs, err := orgRepo.ListOrgNamesForNetid(ctx, netid)
	if err != nil {
		return actor, err
	}
	actor.Orgs = orgs

	return actor, nil
}
