package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plexlink/plexlink/models"
)

func TestValidateRoleEntity_NetidRoles(t *testing.T) {
	for _, role := range []string{models.RoleAdmin, models.RolePowerUser, models.RoleWhitelisted, models.RoleBlacklisted} {
		assert.NoError(t, validateRoleEntity(role, "alice"), role)
		assert.NoError(t, validateRoleEntity(role, "a.b-c_d1"), role)

		assert.ErrorIs(t, validateRoleEntity(role, ""), ErrInvalidEntity, role)
		assert.ErrorIs(t, validateRoleEntity(role, "UPPER"), ErrInvalidEntity, role)
		assert.ErrorIs(t, validateRoleEntity(role, "1leading"), ErrInvalidEntity, role)
		assert.ErrorIs(t, validateRoleEntity(role, "has space"), ErrInvalidEntity, role)
	}
}

func TestValidateRoleEntity_BlockedURL(t *testing.T) {
	assert.NoError(t, validateRoleEntity(models.RoleBlockedURL, "https://evil.example.com/path"))
	assert.NoError(t, validateRoleEntity(models.RoleBlockedURL, "http://evil.example.com"))

	assert.ErrorIs(t, validateRoleEntity(models.RoleBlockedURL, "evil.example.com"), ErrInvalidEntity)
	assert.ErrorIs(t, validateRoleEntity(models.RoleBlockedURL, "ftp://evil.example.com"), ErrInvalidEntity)
	assert.ErrorIs(t, validateRoleEntity(models.RoleBlockedURL, ""), ErrInvalidEntity)
}

func TestValidateRoleEntity_UnknownRole(t *testing.T) {
	assert.ErrorIs(t, validateRoleEntity("superuser", "alice"), ErrUnknownRole)
}
