package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gym-dashboard/internal/models"
)

func sampleUsers() []models.User {
	return []models.User{
		{ID: 1, FullName: "Ana Silva", Email: "ana@gym.test", Role: models.RoleAdmin, Status: models.UserActive},
		{ID: 2, FullName: "Bruno Costa", Email: "bruno@gym.test", Role: models.RoleTrainer, Status: models.UserActive},
		{ID: 3, FullName: "Carla Dias", Email: "carla@gym.test", Role: models.RoleMember, Status: models.UserInactive},
		{ID: 4, FullName: "Diego Anaya", Email: "diego@gym.test", Role: models.RoleMember, Status: models.UserActive},
	}
}

func ids[T models.Record](records []T) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.RecordID())
	}
	return out
}

func TestFilterRecordsSearchIsCaseInsensitive(t *testing.T) {
	got := FilterRecords(sampleUsers(), FilterCriteria{Search: "ANA"})
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestFilterRecordsCategoricalIsExact(t *testing.T) {
	got := FilterRecords(sampleUsers(), FilterCriteria{Filters: map[string]string{"role": "MEMBER"}})
	assert.Equal(t, []int64{3, 4}, ids(got))

	got = FilterRecords(sampleUsers(), FilterCriteria{Filters: map[string]string{"role": "member"}})
	assert.Empty(t, got)
}

func TestFilterRecordsCombinesDimensions(t *testing.T) {
	c := FilterCriteria{Search: "gym.test", Filters: map[string]string{"role": "MEMBER", "status": "ACTIVE"}}
	assert.Equal(t, []int64{4}, ids(FilterRecords(sampleUsers(), c)))
}

func TestFilterRecordsSentinelsMatchEverything(t *testing.T) {
	for _, sentinel := range []string{"", "all", "ALL"} {
		c := FilterCriteria{Filters: map[string]string{"role": sentinel}}
		assert.Len(t, FilterRecords(sampleUsers(), c), 4, sentinel)
	}
}

func TestFilterRecordsEmptySearchMatches(t *testing.T) {
	assert.Len(t, FilterRecords(sampleUsers(), FilterCriteria{Search: "   "}), 4)
}

func TestFilterRecordsUnknownFilterMatchesNothing(t *testing.T) {
	c := FilterCriteria{Filters: map[string]string{"favourite_colour": "blue"}}
	assert.Empty(t, FilterRecords(sampleUsers(), c))
}

func TestFilterCriteriaNormalizeAndEqual(t *testing.T) {
	a := FilterCriteria{Search: " yoga ", Filters: map[string]string{"status": "all", "goal": "MAINTENANCE"}}
	b := FilterCriteria{Search: "yoga", Filters: map[string]string{"goal": "MAINTENANCE"}}

	assert.True(t, a.Equal(b))
	assert.Equal(t, map[string]string{"goal": "MAINTENANCE"}, a.Normalize().Filters)
	assert.Equal(t, "yoga", a.Normalize().Search)
	assert.False(t, a.Equal(FilterCriteria{Search: "yoga"}))
}
