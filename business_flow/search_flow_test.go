package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plexlink/plexlink/app/dto"
)

func TestBuildSearchFilter_DefaultsToOwnLinks(t *testing.T) {
	filter, orderBy, err := buildSearchFilter("alice", false, &dto.SearchRequest{})
	require.NoError(t, err)

	require.NotNil(t, filter.OwnerNetid)
	assert.Equal(t, "alice", *filter.OwnerNetid)
	require.NotNil(t, filter.Deleted)
	assert.False(t, *filter.Deleted)
	assert.NotNil(t, filter.NotExpiredAt)
	assert.Equal(t, "created_at DESC", orderBy)
}

func TestBuildSearchFilter_AllRequiresAdmin(t *testing.T) {
	_, _, err := buildSearchFilter("alice", false, &dto.SearchRequest{Set: "all"})
	assert.ErrorIs(t, err, ErrForbidden)

	filter, _, err := buildSearchFilter("root", true, &dto.SearchRequest{Set: "all"})
	require.NoError(t, err)
	assert.Nil(t, filter.OwnerNetid)
}

func TestBuildSearchFilter_QueryBecomesTextPredicate(t *testing.T) {
	filter, _, err := buildSearchFilter("alice", false, &dto.SearchRequest{Query: "  hello  "})
	require.NoError(t, err)
	require.NotNil(t, filter.TextContains)
	assert.Equal(t, "hello", *filter.TextContains)
}

func TestBuildSearchFilter_ShowFlags(t *testing.T) {
	filter, _, err := buildSearchFilter("alice", false, &dto.SearchRequest{
		ShowDeletedLinks: true,
		ShowExpiredLinks: true,
	})
	require.NoError(t, err)
	assert.Nil(t, filter.Deleted)
	assert.Nil(t, filter.NotExpiredAt)
}

func TestBuildSearchFilter_ShowType(t *testing.T) {
	filter, _, err := buildSearchFilter("alice", false, &dto.SearchRequest{ShowType: "tracking_pixels"})
	require.NoError(t, err)
	require.NotNil(t, filter.IsTrackingPixel)
	assert.True(t, *filter.IsTrackingPixel)

	filter, _, err = buildSearchFilter("alice", false, &dto.SearchRequest{ShowType: "links"})
	require.NoError(t, err)
	require.NotNil(t, filter.IsTrackingPixel)
	assert.False(t, *filter.IsTrackingPixel)

	filter, _, err = buildSearchFilter("alice", false, &dto.SearchRequest{ShowType: "both"})
	require.NoError(t, err)
	assert.Nil(t, filter.IsTrackingPixel)
}

func TestBuildSearchFilter_SortOrders(t *testing.T) {
	for sort, want := range sortOrders {
		_, orderBy, err := buildSearchFilter("alice", false, &dto.SearchRequest{Sort: sort})
		require.NoError(t, err)
		assert.Equal(t, want, orderBy)
	}
}

func TestBuildSearchFilter_RejectsUnknownEnums(t *testing.T) {
	var businessErr *BusinessError

	_, _, err := buildSearchFilter("alice", false, &dto.SearchRequest{Set: "everyone"})
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "INVALID_SET", businessErr.Code)

	_, _, err = buildSearchFilter("alice", false, &dto.SearchRequest{ShowType: "qr_codes"})
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "INVALID_SHOW_TYPE", businessErr.Code)

	_, _, err = buildSearchFilter("alice", false, &dto.SearchRequest{Sort: "alphabetical"})
	require.ErrorAs(t, err, &businessErr)
	assert.Equal(t, "INVALID_SORT", businessErr.Code)
}
