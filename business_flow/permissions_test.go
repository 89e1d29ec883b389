package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plexlink/plexlink/models"
)

func actorWith(netid string, roles []string, orgs []string) ActorContext {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}
	return ActorContext{Netid: netid, Roles: roleSet, Orgs: orgs}
}

func TestEvaluate_OwnerAlwaysAllowed(t *testing.T) {
	res := Resource{OwnerNetid: "alice"}
	for _, action := range []Action{ActionView, ActionEdit, ActionManage} {
		d := Evaluate(actorWith("alice", nil, nil), res, action)
		assert.True(t, d.Allowed, "owner should be allowed to %s", action)
	}
}

func TestEvaluate_BlacklistBeatsEverything(t *testing.T) {
	res := Resource{OwnerNetid: "alice", IsPublic: true}

	// Even the owner loses access while blacklisted
	d := Evaluate(actorWith("alice", []string{models.RoleBlacklisted}, nil), res, ActionView)
	assert.False(t, d.Allowed)

	// A blacklisted admin is still denied
	d = Evaluate(actorWith("bob", []string{models.RoleBlacklisted, models.RoleAdmin}, nil), res, ActionView)
	assert.False(t, d.Allowed)
}

func TestEvaluate_PublicViewOnly(t *testing.T) {
	res := Resource{OwnerNetid: "alice", IsPublic: true}
	stranger := actorWith("bob", nil, nil)

	assert.True(t, Evaluate(stranger, res, ActionView).Allowed)
	assert.False(t, Evaluate(stranger, res, ActionEdit).Allowed)
	assert.False(t, Evaluate(stranger, res, ActionManage).Allowed)
}

func TestEvaluate_CollaboratorLevels(t *testing.T) {
	res := Resource{
		OwnerNetid: "alice",
		Collaborators: []models.LinkHubCollaborator{
			{EntityType: models.CollaboratorTypeNetid, Entity: "viewer-guy", Permission: models.PermissionViewer},
			{EntityType: models.CollaboratorTypeNetid, Entity: "editor-guy", Permission: models.PermissionEditor},
		},
	}

	viewer := actorWith("viewer-guy", nil, nil)
	assert.True(t, Evaluate(viewer, res, ActionView).Allowed)
	assert.False(t, Evaluate(viewer, res, ActionEdit).Allowed)

	editor := actorWith("editor-guy", nil, nil)
	assert.True(t, Evaluate(editor, res, ActionView).Allowed)
	assert.True(t, Evaluate(editor, res, ActionEdit).Allowed)
	assert.False(t, Evaluate(editor, res, ActionManage).Allowed)
}

func TestEvaluate_OrgGrantAppliesToMembers(t *testing.T) {
	res := Resource{
		OwnerNetid: "alice",
		Collaborators: []models.LinkHubCollaborator{
			{EntityType: models.CollaboratorTypeOrg, Entity: "design-team", Permission: models.PermissionEditor},
		},
	}

	member := actorWith("bob", nil, []string{"design-team"})
	assert.True(t, Evaluate(member, res, ActionEdit).Allowed)

	outsider := actorWith("carol", nil, []string{"other-team"})
	assert.False(t, Evaluate(outsider, res, ActionEdit).Allowed)
}

func TestEvaluate_BestGrantWins(t *testing.T) {
	// Direct viewer grant plus editor through an org: the higher one counts
	res := Resource{
		OwnerNetid: "alice",
		Collaborators: []models.LinkHubCollaborator{
			{EntityType: models.CollaboratorTypeNetid, Entity: "bob", Permission: models.PermissionViewer},
			{EntityType: models.CollaboratorTypeOrg, Entity: "team", Permission: models.PermissionEditor},
		},
	}

	bob := actorWith("bob", nil, []string{"team"})
	assert.True(t, Evaluate(bob, res, ActionEdit).Allowed)
}

func TestEvaluate_AdminFallback(t *testing.T) {
	res := Resource{OwnerNetid: "alice"}
	admin := actorWith("root", []string{models.RoleAdmin}, nil)

	assert.True(t, Evaluate(admin, res, ActionView).Allowed)
	assert.True(t, Evaluate(admin, res, ActionManage).Allowed)
}

func TestEvaluate_DefaultDeny(t *testing.T) {
	res := Resource{OwnerNetid: "alice"}
	d := Evaluate(actorWith("bob", nil, nil), res, ActionView)
	assert.False(t, d.Allowed)
}
