package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/app/services"
	businessflow "github.com/plexlink/plexlink/business_flow"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	testingutil "github.com/plexlink/plexlink/testing"
	"github.com/plexlink/plexlink/utils"
)

func TestLinkFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		linkRepo := repository.NewLinkRepository(testDB.DB)
		aliasRepo := repository.NewAliasRepository(testDB.DB)
		aliasSvc := services.NewAliasService("", 0, []string{"admin"})
		flow := businessflow.NewLinkFlow(testDB.DB, linkRepo, aliasRepo, aliasSvc)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestUser("alice")
		require.NoError(t, err)

		var linkID uint

		t.Run("CreateWithCustomAlias", func(t *testing.T) {
			resp, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "docs",
				LongURL: "https://example.com/docs",
				Alias:   utils.ToPtr("docs"),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "docs", resp.Alias)
			linkID = resp.ID
		})

		t.Run("CreateWithGeneratedAlias", func(t *testing.T) {
			resp, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "generated",
				LongURL: "https://example.com/gen",
			}, nil)
			require.NoError(t, err)
			assert.Len(t, resp.Alias, utils.DefaultAliasLength)
		})

		t.Run("RejectsTakenAlias", func(t *testing.T) {
			_, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "squatter",
				LongURL: "https://example.com/x",
				Alias:   utils.ToPtr("docs"),
			}, nil)
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("RejectsReservedAlias", func(t *testing.T) {
			_, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "sneaky",
				LongURL: "https://example.com/x",
				Alias:   utils.ToPtr("admin"),
			}, nil)
			assert.True(t, businessflow.IsAliasReserved(err))
		})

		t.Run("RejectsRelativeURL", func(t *testing.T) {
			_, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "bad",
				LongURL: "not-a-url",
			}, nil)
			assert.True(t, businessflow.IsInvalidURL(err))
		})

		t.Run("GetIncludesAliases", func(t *testing.T) {
			link, err := flow.GetLink(ctx, "alice", false, linkID)
			require.NoError(t, err)
			assert.Equal(t, []string{"docs"}, link.Aliases)
		})

		t.Run("OtherUserForbidden", func(t *testing.T) {
			_, err := flow.GetLink(ctx, "bob", false, linkID)
			assert.True(t, businessflow.IsForbidden(err))

			// Global admins read anything
			_, err = flow.GetLink(ctx, "root", true, linkID)
			assert.NoError(t, err)
		})

		t.Run("AddAndRemoveAlias", func(t *testing.T) {
			resp, err := flow.AddAlias(ctx, "alice", false, linkID, &dto.AddAliasRequest{Alias: utils.ToPtr("docs2")})
			require.NoError(t, err)
			assert.Equal(t, "docs2", resp.Alias)

			require.NoError(t, flow.RemoveAlias(ctx, "alice", false, linkID, "docs2"))

			err = flow.RemoveAlias(ctx, "alice", false, linkID, "docs2")
			assert.True(t, businessflow.IsAliasNotFound(err))
		})

		t.Run("UpdateFields", func(t *testing.T) {
			link, err := flow.UpdateLink(ctx, "alice", false, linkID, &dto.UpdateLinkRequest{
				Title:   utils.ToPtr("renamed"),
				LongURL: utils.ToPtr("https://example.com/moved"),
			})
			require.NoError(t, err)
			assert.Equal(t, "renamed", link.Title)
			assert.Equal(t, "https://example.com/moved", link.LongURL)
		})

		t.Run("DeleteRetiresAliases", func(t *testing.T) {
			require.NoError(t, flow.DeleteLink(ctx, "alice", false, linkID))

			_, err := flow.GetLink(ctx, "alice", false, linkID)
			assert.True(t, businessflow.IsLinkNotFound(err))

			// The retired alias is free for the next claimant
			resp, err := flow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "successor",
				LongURL: "https://example.com/new",
				Alias:   utils.ToPtr("docs"),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "docs", resp.Alias)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrgFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		orgRepo := repository.NewOrganizationRepository(testDB.DB)
		flow := businessflow.NewOrgFlow(testDB.DB, orgRepo)
		ctx := testingutil.CreateTestContext()

		org, err := flow.CreateOrg(ctx, "alice", &dto.CreateOrgRequest{Name: "plexlink-team"})
		require.NoError(t, err)

		t.Run("CreatorIsFirstAdmin", func(t *testing.T) {
			got, err := flow.GetOrg(ctx, "alice", false, org.ID)
			require.NoError(t, err)
			require.Len(t, got.Members, 1)
			assert.Equal(t, "alice", got.Members[0].Netid)
			assert.True(t, got.Members[0].IsAdmin)
		})

		t.Run("NameConflict", func(t *testing.T) {
			_, err := flow.CreateOrg(ctx, "bob", &dto.CreateOrgRequest{Name: "plexlink-team"})
			assert.True(t, businessflow.IsOrgNameTaken(err))
		})

		t.Run("NonMemberCannotRead", func(t *testing.T) {
			_, err := flow.GetOrg(ctx, "mallory", false, org.ID)
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("AddMember", func(t *testing.T) {
			require.NoError(t, flow.AddMember(ctx, "alice", false, org.ID, &dto.AddOrgMemberRequest{Netid: "bob"}))

			err := flow.AddMember(ctx, "alice", false, org.ID, &dto.AddOrgMemberRequest{Netid: "bob"})
			assert.True(t, businessflow.IsMemberExists(err))
		})

		t.Run("NonAdminMemberCannotManage", func(t *testing.T) {
			err := flow.AddMember(ctx, "bob", false, org.ID, &dto.AddOrgMemberRequest{Netid: "carol"})
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("LastAdminCannotLeave", func(t *testing.T) {
			err := flow.RemoveMember(ctx, "alice", false, org.ID, "alice")
			assert.True(t, businessflow.IsLastAdmin(err))
		})

		t.Run("LastAdminCannotDemoteSelf", func(t *testing.T) {
			err := flow.SetMemberAdmin(ctx, "alice", false, org.ID, "alice", &dto.SetOrgMemberAdminRequest{IsAdmin: false})
			assert.True(t, businessflow.IsLastAdmin(err))
		})

		t.Run("HandoverThenLeave", func(t *testing.T) {
			require.NoError(t, flow.SetMemberAdmin(ctx, "alice", false, org.ID, "bob", &dto.SetOrgMemberAdminRequest{IsAdmin: true}))
			require.NoError(t, flow.RemoveMember(ctx, "alice", false, org.ID, "alice"))

			got, err := flow.GetOrg(ctx, "bob", false, org.ID)
			require.NoError(t, err)
			require.Len(t, got.Members, 1)
			assert.Equal(t, "bob", got.Members[0].Netid)
		})

		t.Run("RemoveUnknownMember", func(t *testing.T) {
			err := flow.RemoveMember(ctx, "bob", false, org.ID, "ghost")
			assert.True(t, businessflow.IsMemberNotFound(err))
		})

		t.Run("DeleteOrg", func(t *testing.T) {
			require.NoError(t, flow.DeleteOrg(ctx, "bob", false, org.ID))

			_, err := flow.GetOrg(ctx, "bob", false, org.ID)
			assert.True(t, businessflow.IsOrgNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTicketFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ticketRepo := repository.NewTicketRepository(testDB.DB)
		roleRepo := repository.NewRoleGrantRepository(testDB.DB)
		flow := businessflow.NewTicketFlow(ticketRepo, roleRepo)
		ctx := testingutil.CreateTestContext()

		ticket, err := flow.CreateTicket(ctx, "alice", &dto.CreateTicketRequest{
			Reason:  models.TicketReasonPowerUser,
			Comment: "I run the newsletter links",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TicketStatusOpen, ticket.Status)

		t.Run("DuplicateOpenRejected", func(t *testing.T) {
			_, err := flow.CreateTicket(ctx, "alice", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonPowerUser,
				Comment: "asking twice",
			})
			assert.True(t, businessflow.IsDuplicateTicket(err))
		})

		t.Run("WhitelistedNeedsEntity", func(t *testing.T) {
			_, err := flow.CreateTicket(ctx, "alice", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonWhitelisted,
				Comment: "whitelist please",
			})
			assert.True(t, businessflow.IsTicketEntityNeeded(err))
		})

		t.Run("CloseRequiresAdmin", func(t *testing.T) {
			_, err := flow.CloseTicket(ctx, "alice", false, ticket.UUID, nil)
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("CloseWithGrant", func(t *testing.T) {
			closed, err := flow.CloseTicket(ctx, "root", true, ticket.UUID, &dto.CloseTicketRequest{GrantRole: true})
			require.NoError(t, err)
			assert.Equal(t, models.TicketStatusClosed, closed.Status)
			require.NotNil(t, closed.ActionedBy)
			assert.Equal(t, "root", *closed.ActionedBy)

			grant, err := roleRepo.ByRoleAndEntity(ctx, models.RolePowerUser, "alice")
			require.NoError(t, err)
			require.NotNil(t, grant)
			assert.Equal(t, "root", grant.GrantedBy)
		})

		t.Run("CloseIsNotIdempotent", func(t *testing.T) {
			_, err := flow.CloseTicket(ctx, "root", true, ticket.UUID, nil)
			assert.True(t, businessflow.IsTicketNotFound(err))
		})

		t.Run("HeldRoleBlocksNewTicket", func(t *testing.T) {
			_, err := flow.CreateTicket(ctx, "alice", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonPowerUser,
				Comment: "already granted",
			})
			assert.True(t, businessflow.IsRoleAlreadyHeld(err))
		})

		t.Run("ListScopedToCreator", func(t *testing.T) {
			_, err := flow.CreateTicket(ctx, "bob", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonOther,
				Comment: "something else",
			})
			require.NoError(t, err)

			mine, err := flow.ListTickets(ctx, "alice", false)
			require.NoError(t, err)
			assert.Equal(t, int64(1), mine.Total)

			all, err := flow.ListTickets(ctx, "root", true)
			require.NoError(t, err)
			assert.Equal(t, int64(2), all.Total)
		})

		t.Run("DeleteOnlyByCreator", func(t *testing.T) {
			open, err := flow.ListTickets(ctx, "bob", false)
			require.NoError(t, err)
			require.Len(t, open.Tickets, 1)

			err = flow.DeleteTicket(ctx, "mallory", open.Tickets[0].UUID)
			assert.True(t, businessflow.IsForbidden(err))

			require.NoError(t, flow.DeleteTicket(ctx, "bob", open.Tickets[0].UUID))

			// Withdrawing an already-gone ticket is a no-op
			require.NoError(t, flow.DeleteTicket(ctx, "bob", open.Tickets[0].UUID))
		})

		t.Run("EntityScopesDuplicates", func(t *testing.T) {
			entity := "https://example.com/specific"
			_, err := flow.CreateTicket(ctx, "carol", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonOther,
				Entity:  &entity,
				Comment: "about one url",
			})
			require.NoError(t, err)

			// An entity-less request is a different request: only an open
			// ticket that is itself entity-less may block it
			_, err = flow.CreateTicket(ctx, "carol", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonOther,
				Comment: "about nothing in particular",
			})
			require.NoError(t, err)

			_, err = flow.CreateTicket(ctx, "carol", &dto.CreateTicketRequest{
				Reason:  models.TicketReasonOther,
				Comment: "again without an entity",
			})
			assert.True(t, businessflow.IsDuplicateTicket(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAuthFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		userRepo := repository.NewUserRepository(testDB.DB)
		roleRepo := repository.NewRoleGrantRepository(testDB.DB)
		tokenSvc, err := services.NewTokenService(time.Hour, 24*time.Hour, "plexlink", "plexlink-api", false, "", "", "test-secret-key-that-is-long-enough-for-hmac")
		require.NoError(t, err)
		flow := businessflow.NewAuthFlow(userRepo, roleRepo, tokenSvc)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("192.0.2.1", "test-agent")

		_, err = fixtures.CreateTestUser("alice")
		require.NoError(t, err)

		t.Run("Login", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.LoginRequest{Netid: "alice", Password: "TestPass123!"}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "alice", resp.Netid)
			assert.False(t, resp.IsAdmin)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
			// ExpiresIn reflects the TTL the service actually signs with
			assert.Equal(t, 3600, resp.ExpiresIn)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{Netid: "alice", Password: "WrongPass123!"}, metadata)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownUser", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.LoginRequest{Netid: "ghost", Password: "TestPass123!"}, metadata)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("AdminGrantReflectedAtLogin", func(t *testing.T) {
			_, err := fixtures.CreateTestRoleGrant(models.RoleAdmin, "alice", "root")
			require.NoError(t, err)

			resp, err := flow.Login(ctx, &dto.LoginRequest{Netid: "alice", Password: "TestPass123!"}, metadata)
			require.NoError(t, err)
			assert.True(t, resp.IsAdmin)
		})

		t.Run("RefreshRotation", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.LoginRequest{Netid: "alice", Password: "TestPass123!"}, metadata)
			require.NoError(t, err)

			rotated, err := flow.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
			require.NoError(t, err)
			assert.Equal(t, "alice", rotated.Netid)

			// An access token does not pass for a refresh token
			_, err = flow.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: resp.AccessToken})
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRoleFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		roleRepo := repository.NewRoleGrantRepository(testDB.DB)
		flow := businessflow.NewRoleFlow(roleRepo)
		ctx := testingutil.CreateTestContext()

		t.Run("GrantRequiresAdmin", func(t *testing.T) {
			err := flow.Grant(ctx, "alice", false, models.RolePowerUser, "bob", nil)
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("GrantCheckRevoke", func(t *testing.T) {
			require.NoError(t, flow.Grant(ctx, "root", true, models.RolePowerUser, "bob", nil))

			held, err := flow.Check(ctx, models.RolePowerUser, "bob")
			require.NoError(t, err)
			assert.True(t, held)

			err = flow.Grant(ctx, "root", true, models.RolePowerUser, "bob", nil)
			assert.True(t, businessflow.IsAlreadyGranted(err))

			require.NoError(t, flow.Revoke(ctx, "root", true, models.RolePowerUser, "bob"))
			held, err = flow.Check(ctx, models.RolePowerUser, "bob")
			require.NoError(t, err)
			assert.False(t, held)

			// Revoking an absent grant is a no-op
			require.NoError(t, flow.Revoke(ctx, "root", true, models.RolePowerUser, "bob"))
		})

		t.Run("BlockedURLEntity", func(t *testing.T) {
			err := flow.Grant(ctx, "root", true, models.RoleBlockedURL, "not a url", nil)
			assert.True(t, businessflow.IsInvalidEntity(err))

			require.NoError(t, flow.Grant(ctx, "root", true, models.RoleBlockedURL, "https://evil.example.com/", nil))
		})

		t.Run("List", func(t *testing.T) {
			require.NoError(t, flow.Grant(ctx, "root", true, models.RoleWhitelisted, "carol", nil))

			resp, err := flow.List(ctx, true, models.RoleWhitelisted)
			require.NoError(t, err)
			assert.Equal(t, models.RoleWhitelisted, resp.Role)
			assert.Equal(t, []string{"carol"}, resp.Entities)

			_, err = flow.List(ctx, true, "superuser")
			assert.True(t, businessflow.IsUnknownRole(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLinkHubFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		linkHubRepo := repository.NewLinkHubRepository(testDB.DB)
		aliasRepo := repository.NewAliasRepository(testDB.DB)
		roleRepo := repository.NewRoleGrantRepository(testDB.DB)
		orgRepo := repository.NewOrganizationRepository(testDB.DB)
		aliasSvc := services.NewAliasService("", 0, nil)
		flow := businessflow.NewLinkHubFlow(testDB.DB, linkHubRepo, aliasRepo, roleRepo, orgRepo, aliasSvc)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		resp, err := flow.CreateLinkHub(ctx, "alice", &dto.CreateLinkHubRequest{
			Title:    "reading list",
			Alias:    utils.ToPtr("reading"),
			IsPublic: false,
			Links: []dto.LinkHubEntryDTO{
				{Title: "blog", URL: "https://example.com/blog"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "reading", resp.Alias)
		hubID := resp.ID

		t.Run("HubAliasSharesNamespaceWithLinks", func(t *testing.T) {
			linkRepo := repository.NewLinkRepository(testDB.DB)
			linkFlow := businessflow.NewLinkFlow(testDB.DB, linkRepo, aliasRepo, aliasSvc)

			_, err := linkFlow.CreateLink(ctx, "alice", &dto.CreateLinkRequest{
				Title:   "squatter",
				LongURL: "https://example.com/x",
				Alias:   utils.ToPtr("reading"),
			}, nil)
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("PrivateHubHiddenOnPublicPath", func(t *testing.T) {
			_, err := flow.ResolveLinkHub(ctx, "reading")
			assert.True(t, businessflow.IsLinkHubNotFound(err))
		})

		t.Run("PublicHubResolves", func(t *testing.T) {
			_, err := flow.UpdateLinkHub(ctx, "alice", false, hubID, &dto.UpdateLinkHubRequest{
				IsPublic: utils.ToPtr(true),
			})
			require.NoError(t, err)

			hub, err := flow.ResolveLinkHub(ctx, "reading")
			require.NoError(t, err)
			assert.Equal(t, "reading list", hub.Title)
			require.Len(t, hub.Links, 1)
			assert.Equal(t, "https://example.com/blog", hub.Links[0].URL)
			// The public page never exposes the collaborator list
			assert.Empty(t, hub.Collaborators)
		})

		t.Run("CollaboratorGrants", func(t *testing.T) {
			err := flow.AddCollaborator(ctx, "alice", false, hubID, &dto.AddCollaboratorRequest{
				EntityType: models.CollaboratorTypeNetid,
				Entity:     "bob",
				Permission: models.PermissionViewer,
			})
			require.NoError(t, err)

			err = flow.AddCollaborator(ctx, "alice", false, hubID, &dto.AddCollaboratorRequest{
				EntityType: models.CollaboratorTypeNetid,
				Entity:     "bob",
				Permission: models.PermissionEditor,
			})
			assert.True(t, businessflow.IsCollaboratorExists(err))

			// Viewers read but cannot edit
			_, err = flow.GetLinkHub(ctx, "bob", false, hubID)
			assert.NoError(t, err)
			_, err = flow.UpdateLinkHub(ctx, "bob", false, hubID, &dto.UpdateLinkHubRequest{
				Title: utils.ToPtr("hijacked"),
			})
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("OrgCollaboratorMustExist", func(t *testing.T) {
			err := flow.AddCollaborator(ctx, "alice", false, hubID, &dto.AddCollaboratorRequest{
				EntityType: models.CollaboratorTypeOrg,
				Entity:     "no-such-org",
				Permission: models.PermissionEditor,
			})
			assert.True(t, businessflow.IsOrgNotFound(err))
		})

		t.Run("OrgGrantCoversMembers", func(t *testing.T) {
			_, err := fixtures.CreateTestOrg("editors", "carol")
			require.NoError(t, err)

			err = flow.AddCollaborator(ctx, "alice", false, hubID, &dto.AddCollaboratorRequest{
				EntityType: models.CollaboratorTypeOrg,
				Entity:     "editors",
				Permission: models.PermissionEditor,
			})
			require.NoError(t, err)

			_, err = flow.UpdateLinkHub(ctx, "carol", false, hubID, &dto.UpdateLinkHubRequest{
				Title: utils.ToPtr("shared reading list"),
			})
			require.NoError(t, err)

			// Editors still cannot manage collaborators
			err = flow.RemoveCollaborator(ctx, "carol", false, hubID, models.CollaboratorTypeNetid, "bob")
			assert.True(t, businessflow.IsForbidden(err))
		})

		t.Run("DeleteFreesAlias", func(t *testing.T) {
			require.NoError(t, flow.DeleteLinkHub(ctx, "alice", false, hubID))

			_, err := flow.ResolveLinkHub(ctx, "reading")
			assert.True(t, businessflow.IsLinkHubNotFound(err))

			again, err := flow.CreateLinkHub(ctx, "bob", &dto.CreateLinkHubRequest{
				Title: "new owner",
				Alias: utils.ToPtr("reading"),
			})
			require.NoError(t, err)
			assert.Equal(t, "reading", again.Alias)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVisitFlowResolution(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		linkRepo := repository.NewLinkRepository(testDB.DB)
		aliasRepo := repository.NewAliasRepository(testDB.DB)
		visitRepo := repository.NewVisitRepository(testDB.DB)
		trackingRepo := repository.NewTrackingIDRepository(testDB.DB)
		roleRepo := repository.NewRoleGrantRepository(testDB.DB)
		flow := businessflow.NewVisitFlow(linkRepo, aliasRepo, visitRepo, trackingRepo, roleRepo, nil)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("192.0.2.50", "curl/8.4.0")

		_, err := fixtures.CreateTestUser("alice")
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink("alice", "target", "https://example.com/target")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAlias(link.ID, "go-there")
		require.NoError(t, err)

		t.Run("ResolveLink", func(t *testing.T) {
			longURL, err := flow.ResolveLink(ctx, "go-there", metadata)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/target", longURL)
		})

		t.Run("UnknownAlias", func(t *testing.T) {
			_, err := flow.ResolveLink(ctx, "nope", metadata)
			assert.True(t, businessflow.IsAliasNotFound(err))
		})

		t.Run("ExpiredLinkIsGone", func(t *testing.T) {
			expired := &models.Link{
				OwnerNetid: "alice",
				Title:      "expired",
				LongURL:    "https://example.com/old",
				ExpiresAt:  utils.UTCNowAddPtr(-time.Hour),
			}
			require.NoError(t, linkRepo.Save(ctx, expired))
			_, err := fixtures.CreateTestAlias(expired.ID, "stale")
			require.NoError(t, err)

			_, err = flow.ResolveLink(ctx, "stale", metadata)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("BlacklistedOwnerIsGone", func(t *testing.T) {
			_, err := fixtures.CreateTestRoleGrant(models.RoleBlacklisted, "alice", "root")
			require.NoError(t, err)
			defer func() {
				_, _ = roleRepo.Delete(ctx, models.RoleBlacklisted, "alice")
			}()

			_, err = flow.ResolveLink(ctx, "go-there", metadata)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("BlockedURLIsGone", func(t *testing.T) {
			_, err := fixtures.CreateTestRoleGrant(models.RoleBlockedURL, "https://example.com/target", "root")
			require.NoError(t, err)
			defer func() {
				_, _ = roleRepo.Delete(ctx, models.RoleBlockedURL, "https://example.com/target")
			}()

			_, err = flow.ResolveLink(ctx, "go-there", metadata)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("PixelRequiresPixelLink", func(t *testing.T) {
			_, err := flow.ResolvePixel(ctx, "go-there", metadata)
			assert.True(t, businessflow.IsLinkNotFound(err))
		})

		t.Run("ResolutionRecordsOneVisit", func(t *testing.T) {
			recorded := businessflow.NewClientMetadata("203.0.113.7", "recorded-agent/1.0")
			recorded.Referer = "https://news.example.org/post"

			_, err := flow.ResolveLink(ctx, "go-there", recorded)
			require.NoError(t, err)

			// Recording is fire-and-forget on a detached context
			var visits []*models.Visit
			require.Eventually(t, func() bool {
				rows, err := visitRepo.ByFilter(ctx, models.VisitFilter{
					LinkID:   &link.ID,
					SourceIP: utils.ToPtr("203.0.113.7"),
				}, "id ASC", 0, 0)
				if err != nil {
					return false
				}
				visits = rows
				return len(rows) >= 1
			}, 5*time.Second, 25*time.Millisecond)

			require.Len(t, visits, 1)
			assert.Equal(t, "go-there", visits[0].Alias)
			require.NotNil(t, visits[0].UserAgent)
			assert.Equal(t, "recorded-agent/1.0", *visits[0].UserAgent)
			require.NotNil(t, visits[0].Referer)
			assert.Equal(t, "https://news.example.org/post", *visits[0].Referer)

			// The same caller keeps the same tracking id on later visits
			trackingID, err := trackingRepo.LookupOrCreate(ctx, "203.0.113.7")
			require.NoError(t, err)
			assert.Equal(t, trackingID, visits[0].TrackingID)
		})

		t.Run("PixelServesImage", func(t *testing.T) {
			pixel := &models.Link{
				OwnerNetid:      "alice",
				Title:           "pixel",
				LongURL:         "https://example.com/pixel",
				IsTrackingPixel: true,
				PixelExtension:  models.PixelExtensionGIF,
			}
			require.NoError(t, linkRepo.Save(ctx, pixel))
			_, err := fixtures.CreateTestAlias(pixel.ID, "open-rate")
			require.NoError(t, err)

			result, err := flow.ResolvePixel(ctx, "open-rate", metadata)
			require.NoError(t, err)
			assert.Equal(t, "open-rate.gif", result.ImageName)
			assert.Equal(t, "image/gif", result.ContentType)
			assert.NotEmpty(t, result.Body)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVisitAggregation(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		visitRepo := repository.NewVisitRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestUser("alice")
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink("alice", "tracked", "")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAlias(link.ID, "tracked")
		require.NoError(t, err)

		chromeUA := "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0 Safari/537.36"
		for i := 0; i < 3; i++ {
			_, err = fixtures.CreateTestVisit(link.ID, "tracked", "192.0.2.1", chromeUA, "https://news.ycombinator.com/")
			require.NoError(t, err)
		}
		_, err = fixtures.CreateTestVisit(link.ID, "tracked", "192.0.2.2", "curl/8.4.0", "")
		require.NoError(t, err)

		t.Run("CountByLink", func(t *testing.T) {
			count, err := visitRepo.CountByLink(ctx, link.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(4), count)
		})

		t.Run("GroupByUserAgent", func(t *testing.T) {
			counts, err := visitRepo.GroupByUserAgent(ctx, &link.ID)
			require.NoError(t, err)
			require.Len(t, counts, 2)
			assert.Equal(t, chromeUA, counts[0].Value)
			assert.Equal(t, int64(3), counts[0].Count)
		})

		t.Run("GroupByReferer", func(t *testing.T) {
			counts, err := visitRepo.GroupByReferer(ctx, &link.ID)
			require.NoError(t, err)
			require.NotEmpty(t, counts)
			assert.Equal(t, "https://news.ycombinator.com/", counts[0].Value)
			assert.Equal(t, int64(3), counts[0].Count)
		})

		return nil
	})
	require.NoError(t, err)
}
