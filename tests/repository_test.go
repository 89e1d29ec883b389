// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	testingutil "github.com/plexlink/plexlink/testing"
	"github.com/plexlink/plexlink/utils"
)

func TestAliasRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAliasRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		alice, err := fixtures.CreateTestUser("alice")
		require.NoError(t, err)
		link1, err := fixtures.CreateTestLink(alice.Netid, "first", "")
		require.NoError(t, err)
		link2, err := fixtures.CreateTestLink(alice.Netid, "second", "")
		require.NoError(t, err)

		t.Run("ByAlias", func(t *testing.T) {
			row, err := fixtures.CreateTestAlias(link1.ID, "promo")
			require.NoError(t, err)

			found, err := repo.ByAlias(ctx, "promo")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, row.ID, found.ID)
			assert.Equal(t, models.AliasResourceLink, found.ResourceType)
		})

		t.Run("ByAliasNotFound", func(t *testing.T) {
			found, err := repo.ByAlias(ctx, "never-bound")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("LiveUniqueness", func(t *testing.T) {
			dup := &models.Alias{
				Alias:        "promo",
				ResourceType: models.AliasResourceLink,
				LinkID:       &link2.ID,
			}
			err := repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("ReuseAfterSoftDelete", func(t *testing.T) {
			row, err := repo.ByAlias(ctx, "promo")
			require.NoError(t, err)
			require.NotNil(t, row)

			require.NoError(t, repo.SoftDelete(ctx, row.ID))

			found, err := repo.ByAlias(ctx, "promo")
			require.NoError(t, err)
			assert.Nil(t, found)

			// The partial index only guards live rows, so the name is free again
			reborn := &models.Alias{
				Alias:        "promo",
				ResourceType: models.AliasResourceLink,
				LinkID:       &link2.ID,
			}
			require.NoError(t, repo.Save(ctx, reborn))

			found, err = repo.ByAlias(ctx, "promo")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link2.ID, *found.LinkID)
		})

		t.Run("SoftDeleteByLink", func(t *testing.T) {
			_, err := fixtures.CreateTestAlias(link1.ID, "one-of-two")
			require.NoError(t, err)
			_, err = fixtures.CreateTestAlias(link1.ID, "two-of-two")
			require.NoError(t, err)

			require.NoError(t, repo.SoftDeleteByLink(ctx, link1.ID))

			live, err := repo.ListByLink(ctx, link1.ID, false)
			require.NoError(t, err)
			assert.Empty(t, live)

			all, err := repo.ListByLink(ctx, link1.ID, true)
			require.NoError(t, err)
			assert.NotEmpty(t, all)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTrackingIDRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTrackingIDRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("LookupOrCreateIsStablePerIP", func(t *testing.T) {
			first, err := repo.LookupOrCreate(ctx, "192.0.2.10")
			require.NoError(t, err)

			second, err := repo.LookupOrCreate(ctx, "192.0.2.10")
			require.NoError(t, err)
			assert.Equal(t, first, second)

			other, err := repo.LookupOrCreate(ctx, "192.0.2.11")
			require.NoError(t, err)
			assert.NotEqual(t, first, other)
		})

		t.Run("BySourceIP", func(t *testing.T) {
			id, err := repo.LookupOrCreate(ctx, "198.51.100.1")
			require.NoError(t, err)

			row, err := repo.BySourceIP(ctx, "198.51.100.1")
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, id, row.UUID)

			row, err = repo.BySourceIP(ctx, "203.0.113.99")
			require.NoError(t, err)
			assert.Nil(t, row)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRoleGrantRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewRoleGrantRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("DuplicateGrantRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestRoleGrant(models.RolePowerUser, "alice", "root")
			require.NoError(t, err)

			dup := &models.RoleGrant{Role: models.RolePowerUser, Entity: "alice", GrantedBy: "root"}
			err = repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("SameEntityDifferentRole", func(t *testing.T) {
			grant := &models.RoleGrant{Role: models.RoleWhitelisted, Entity: "alice", GrantedBy: "root"}
			require.NoError(t, repo.Save(ctx, grant))
		})

		t.Run("ByRoleAndEntity", func(t *testing.T) {
			row, err := repo.ByRoleAndEntity(ctx, models.RolePowerUser, "alice")
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, "root", row.GrantedBy)

			row, err = repo.ByRoleAndEntity(ctx, models.RolePowerUser, "bob")
			require.NoError(t, err)
			assert.Nil(t, row)
		})

		t.Run("ListEntities", func(t *testing.T) {
			_, err := fixtures.CreateTestRoleGrant(models.RolePowerUser, "bob", "root")
			require.NoError(t, err)

			entities, err := repo.ListEntities(ctx, models.RolePowerUser)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"alice", "bob"}, entities)
		})

		t.Run("ListRolesForEntity", func(t *testing.T) {
			roles, err := repo.ListRolesForEntity(ctx, "alice")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{models.RolePowerUser, models.RoleWhitelisted}, roles)
		})

		t.Run("DeleteIsIdempotent", func(t *testing.T) {
			removed, err := repo.Delete(ctx, models.RolePowerUser, "bob")
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = repo.Delete(ctx, models.RolePowerUser, "bob")
			require.NoError(t, err)
			assert.False(t, removed)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTicketRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTicketRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("DuplicateOpenTicketRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestTicket("alice", models.TicketReasonPowerUser, nil)
			require.NoError(t, err)

			dup := &models.Ticket{
				Reason:    models.TicketReasonPowerUser,
				Comment:   "asking again",
				CreatedBy: "alice",
			}
			err = repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("DifferentEntityIsNotADuplicate", func(t *testing.T) {
			entity := "https://example.com/blocked"
			_, err := fixtures.CreateTestTicket("alice", models.TicketReasonOther, &entity)
			require.NoError(t, err)

			other := "https://example.com/other"
			_, err = fixtures.CreateTestTicket("alice", models.TicketReasonOther, &other)
			require.NoError(t, err)
		})

		t.Run("CloseFreesTheSlot", func(t *testing.T) {
			open, err := repo.ByFilter(ctx, models.TicketFilter{
				CreatedBy: utils.ToPtr("alice"),
				Reason:    utils.ToPtr(models.TicketReasonPowerUser),
			}, "id ASC", 1, 0)
			require.NoError(t, err)
			require.Len(t, open, 1)

			require.NoError(t, repo.Close(ctx, open[0].ID, "root", utils.UTCNow()))

			closed, err := repo.ByUUID(ctx, open[0].UUID.String())
			require.NoError(t, err)
			require.NotNil(t, closed)
			assert.Equal(t, models.TicketStatusClosed, closed.Status)
			require.NotNil(t, closed.ActionedBy)
			assert.Equal(t, "root", *closed.ActionedBy)
			assert.NotNil(t, closed.ClosedAt)

			// A closed ticket no longer blocks a fresh request
			_, err = fixtures.CreateTestTicket("alice", models.TicketReasonPowerUser, nil)
			require.NoError(t, err)
		})

		t.Run("DeleteOpenOnlyByCreator", func(t *testing.T) {
			ticket, err := fixtures.CreateTestTicket("bob", models.TicketReasonWhitelisted, nil)
			require.NoError(t, err)

			deleted, err := repo.DeleteOpen(ctx, ticket.ID, "mallory")
			require.NoError(t, err)
			assert.False(t, deleted)

			deleted, err = repo.DeleteOpen(ctx, ticket.ID, "bob")
			require.NoError(t, err)
			assert.True(t, deleted)

			row, err := repo.ByUUID(ctx, ticket.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, row)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrganizationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewOrganizationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		org, err := fixtures.CreateTestOrg("research-lab", "alice")
		require.NoError(t, err)

		t.Run("NameUniqueness", func(t *testing.T) {
			dup := &models.Organization{Name: "research-lab"}
			err := repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("MemberUniqueness", func(t *testing.T) {
			err := repo.AddMember(ctx, &models.OrganizationMember{
				OrganizationID: org.ID,
				Netid:          "alice",
			})
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("MembershipLifecycle", func(t *testing.T) {
			require.NoError(t, repo.AddMember(ctx, &models.OrganizationMember{
				OrganizationID: org.ID,
				Netid:          "bob",
			}))

			members, err := repo.ListMembers(ctx, org.ID)
			require.NoError(t, err)
			assert.Len(t, members, 2)

			require.NoError(t, repo.SetMemberAdmin(ctx, org.ID, "bob", true))
			members, err = repo.ListMembers(ctx, org.ID)
			require.NoError(t, err)
			admins := 0
			for _, m := range members {
				if m.IsAdmin {
					admins++
				}
			}
			assert.Equal(t, 2, admins)

			removed, err := repo.RemoveMember(ctx, org.ID, "bob")
			require.NoError(t, err)
			assert.True(t, removed)

			removed, err = repo.RemoveMember(ctx, org.ID, "bob")
			require.NoError(t, err)
			assert.False(t, removed)
		})

		t.Run("ListOrgNamesForNetid", func(t *testing.T) {
			_, err := fixtures.CreateTestOrg("side-project", "alice")
			require.NoError(t, err)

			names, err := repo.ListOrgNamesForNetid(ctx, "alice")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"research-lab", "side-project"}, names)

			names, err = repo.ListOrgNamesForNetid(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, names)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser("carol")
		require.NoError(t, err)

		t.Run("ByNetid", func(t *testing.T) {
			found, err := repo.ByNetid(ctx, "carol")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, user.ID, found.ID)
			assert.True(t, utils.IsTrue(found.IsActive))
		})

		t.Run("ByNetidNotFound", func(t *testing.T) {
			found, err := repo.ByNetid(ctx, "ghost")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("NetidUniqueness", func(t *testing.T) {
			dup := &models.User{Netid: "carol", PasswordHash: "x"}
			err := repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		return nil
	})
	require.NoError(t, err)
}
