package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripInGymZone(t *testing.T) {
	c := New("America/New_York")
	instant, err := c.ToInstant("2024-07-01T09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 13, 30, 0, 0, time.UTC), instant)
	assert.Equal(t, "2024-07-01T09:30", c.ToLocal(instant))
}

func TestUnknownZoneDefaultsToUTC(t *testing.T) {
	for _, name := range []string{"", "Mars/Olympus_Mons"} {
		c := New(name)
		assert.Equal(t, "UTC", c.Name())
		instant, err := c.ToInstant("2024-01-05 18:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 5, 18, 0, 0, 0, time.UTC), instant)
	}
}

func TestRejectsGarbage(t *testing.T) {
	_, err := New("UTC").ToInstant("tomorrow-ish")
	assert.Error(t, err)
	assert.Equal(t, "", New("UTC").ToLocal(time.Time{}))
}
