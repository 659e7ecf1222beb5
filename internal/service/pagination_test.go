package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginateSlicesRequestedPage(t *testing.T) {
	view, err := Paginate(seq(25), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, seq(20)[10:], view.Items)
	assert.Equal(t, 3, view.Pagination.TotalPages)
	assert.Equal(t, 25, view.Pagination.TotalCount)
	assert.True(t, view.Pagination.HasNext)
	assert.True(t, view.Pagination.HasPrev)
}

func TestPaginateLastPartialPage(t *testing.T) {
	view, err := Paginate(seq(25), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, view.Items)
	assert.False(t, view.Pagination.HasNext)
}

func TestPaginateClampsOutOfRangePages(t *testing.T) {
	view, err := Paginate(seq(25), 9, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Pagination.Page)
	assert.Len(t, view.Items, 5)

	view, err = Paginate(seq(25), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Pagination.Page)
	assert.False(t, view.Pagination.HasPrev)
}

func TestPaginateEmptyCollectionHasOnePage(t *testing.T) {
	view, err := Paginate([]int{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)
	assert.Equal(t, 1, view.Pagination.TotalPages)
	assert.False(t, view.Pagination.HasNext)
	assert.False(t, view.Pagination.HasPrev)
}

func TestPaginateRejectsNonPositivePageSize(t *testing.T) {
	_, err := Paginate(seq(3), 1, 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindConfiguration, appErrors.KindOf(err))

	_, err = PageMeta(3, 1, -5)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestPageMetaMatchesServerTotals(t *testing.T) {
	meta, err := PageMeta(41, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, meta.TotalPages)
	assert.Equal(t, 5, meta.Page)
	assert.False(t, meta.HasNext)
}

func TestPaginateDoesNotAliasInput(t *testing.T) {
	items := seq(4)
	view, err := Paginate(items, 1, 2)
	require.NoError(t, err)
	view.Items[0] = 99
	assert.Equal(t, 1, items[0])
}
