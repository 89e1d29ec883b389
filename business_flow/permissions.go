package businessflow

import "github.com/plexlink/plexlink/models"

// Action is something an actor wants to do to a resource
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionManage Action = "manage" // delete, collaborators, ownership
)

// ActorContext is everything the evaluator knows about the caller. The
// calling flow fetches roles and org memberships at evaluation time; the
// evaluator itself does no I/O, so membership changes apply to the very
// next request.
type ActorContext struct {
	Netid string
	Roles map[string]struct{}
	Orgs  []string
}

// HasRole reports whether the actor holds a role
func (a ActorContext) HasRole(role string) bool {
	_, ok := a.Roles[role]
	return ok
}

// Resource is the evaluator's view of the thing being accessed
type Resource struct {
	OwnerNetid    string
	IsPublic      bool
	Collaborators []models.LinkHubCollaborator
}

// Decision is the evaluator's verdict with the rule that produced it
type Decision struct {
	Allowed bool
	Reason  string
}

// requiredLevel maps an action to the minimum collaborator permission
func requiredLevel(action Action) int {
	switch action {
	case ActionView:
		return models.PermissionLevel(models.PermissionViewer)
	case ActionEdit:
		return models.PermissionLevel(models.PermissionEditor)
	case ActionManage:
		return models.PermissionLevel(models.PermissionOwner)
	default:
		return models.PermissionLevel(models.PermissionOwner) + 1
	}
}

// Evaluate decides whether an actor may perform an action on a resource.
// Precedence: blacklist beats everything, then ownership, then the best
// collaborator grant (direct netid or via any current org membership),
// then the admin role, then deny. Public resources are viewable by anyone
// not blacklisted.
func Evaluate(actor ActorContext, res Resource, action Action) Decision {
	if actor.HasRole(models.RoleBlacklisted) {
		return Decision{Allowed: false, Reason: "actor is blacklisted"}
	}

	if actor.Netid != "" && actor.Netid == res.OwnerNetid {
		return Decision{Allowed: true, Reason: "owner"}
	}

	if action == ActionView && res.IsPublic {
		return Decision{Allowed: true, Reason: "public resource"}
	}

	if best := bestGrantLevel(actor, res.Collaborators); best >= requiredLevel(action) {
		return Decision{Allowed: true, Reason: "collaborator grant"}
	}

	if actor.HasRole(models.RoleAdmin) {
		return Decision{Allowed: true, Reason: "admin"}
	}

	return Decision{Allowed: false, Reason: "no matching grant"}
}

// bestGrantLevel returns the highest permission level granted to the actor
// directly or through any org it belongs to
func bestGrantLevel(actor ActorContext, collaborators []models.LinkHubCollaborator) int {
	orgs := make(map[string]struct{}, len(actor.Orgs))
	for _, o := range actor.Orgs {
		orgs[o] = struct{}{}
	}

	best := 0
	for _, c := range collaborators {
		var matches bool
		switch c.EntityType {
		case models.CollaboratorTypeNetid:
			matches = c.Entity == actor.Netid
		case models.CollaboratorTypeOrg:
			_, matches = orgs[c.Entity]
		}
		if !matches {
			continue
		}
		if lvl := models.PermissionLevel(c.Permission); lvl > best {
			best = lvl
		}
	}
	return best
}
