package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock12Table(t *testing.T) {
	h, m, err := ParseClock12("12:00 AM")
	require.NoError(t, err)
	assert.Equal(t, 0, h)
	assert.Equal(t, 0, m)

	h, _, err = ParseClock12("12:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 12, h)

	for hour := 1; hour <= 11; hour++ {
		am, _, err := ParseClock12(fmt.Sprintf("%d:00 AM", hour))
		require.NoError(t, err)
		assert.Equal(t, hour, am)

		pm, _, err := ParseClock12(fmt.Sprintf("%d:00 PM", hour))
		require.NoError(t, err)
		assert.Equal(t, hour+12, pm)
	}
}

func TestParseClock12Minutes(t *testing.T) {
	h, m, err := ParseClock12("9:45 pm")
	require.NoError(t, err)
	assert.Equal(t, 21, h)
	assert.Equal(t, 45, m)

	h, m, err = ParseClock12(" 12:30 AM ")
	require.NoError(t, err)
	assert.Equal(t, 0, h)
	assert.Equal(t, 30, m)
}

func TestParseClock12Invalid(t *testing.T) {
	for _, s := range []string{"", "11:00", "13:00 PM", "0:30 AM", "11:60 AM", "11:5 AM", "eleven PM", "11:00 XM", "11:00PM"} {
		_, _, err := ParseClock12(s)
		assert.ErrorIs(t, err, ErrInvalidTime, s)
	}
}

func TestExpiryInstant(t *testing.T) {
	expiry, err := ExpiryInstant("2024-01-01", "11:00 PM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), expiry)

	start, err := StartInstant("2024-01-01", "11:00 PM", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), start)

	_, err = ExpiryInstant("01/01/2024", "11:00 PM", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExpiryInstantRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	expiry, err := ExpiryInstant("2024-01-01", "11:00 PM", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC), expiry.UTC())
}
