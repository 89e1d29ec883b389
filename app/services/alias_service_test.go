package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexlink/plexlink/utils"
)

func TestAliasService_GenerateUsesAlphabetAndLength(t *testing.T) {
	svc := NewAliasService("abc", 10, nil)

	for i := 0; i < 20; i++ {
		alias, err := svc.Generate()
		require.NoError(t, err)
		assert.Len(t, alias, 10)
		for _, c := range alias {
			assert.Contains(t, "abc", string(c))
		}
	}
}

func TestAliasService_GenerateDefaults(t *testing.T) {
	svc := NewAliasService("", 0, nil)

	alias, err := svc.Generate()
	require.NoError(t, err)
	assert.Len(t, alias, utils.DefaultAliasLength)
	for _, c := range alias {
		assert.Contains(t, utils.DefaultAliasAlphabet, string(c))
	}
}

func TestAliasService_ValidateCharset(t *testing.T) {
	svc := NewAliasService("", 0, nil)

	assert.NoError(t, svc.Validate("simple"))
	assert.NoError(t, svc.Validate("With-Caps_and.tilde~"))
	assert.NoError(t, svc.Validate("x"))

	assert.ErrorIs(t, svc.Validate("has space"), ErrAliasBadCharset)
	assert.ErrorIs(t, svc.Validate("slash/alias"), ErrAliasBadCharset)
	assert.ErrorIs(t, svc.Validate("ümlaut"), ErrAliasBadCharset)
}

func TestAliasService_ValidateLength(t *testing.T) {
	svc := NewAliasService("", 0, nil)

	assert.ErrorIs(t, svc.Validate(""), ErrAliasBadLength)
	assert.ErrorIs(t, svc.Validate(strings.Repeat("a", utils.MaxAliasLength+1)), ErrAliasBadLength)
	assert.NoError(t, svc.Validate(strings.Repeat("a", utils.MaxAliasLength)))
}

func TestAliasService_ValidateReserved(t *testing.T) {
	svc := NewAliasService("", 0, []string{"admin", "API"})

	assert.ErrorIs(t, svc.Validate("admin"), ErrAliasReserved)
	// Reserved matching is case-insensitive both ways
	assert.ErrorIs(t, svc.Validate("Admin"), ErrAliasReserved)
	assert.ErrorIs(t, svc.Validate("api"), ErrAliasReserved)

	assert.NoError(t, svc.Validate("admin2"))
}
