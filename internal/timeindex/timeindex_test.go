package timeindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourToSlotDayAndNight(t *testing.T) {
	slot, ok := HourToSlot("08:00", Day)
	require.True(t, ok)
	assert.Equal(t, 0, slot)

	slot, ok = HourToSlot("20:00", Night)
	require.True(t, ok)
	assert.Equal(t, 0, slot)

	slot, ok = HourToSlot("07:00", Night)
	require.True(t, ok)
	assert.Equal(t, 11, slot)
}

func TestHourToSlotUnknownIsDropped(t *testing.T) {
	_, ok := HourToSlot("08:00", Night)
	assert.False(t, ok)

	_, ok = HourToSlot("not-a-time", Day)
	assert.False(t, ok)
}

func TestHoursToSlotsDropsUnknownAndDedupes(t *testing.T) {
	slots := HoursToSlots([]string{"09:00", "bogus", "08:00", "09:00"}, Day)
	assert.Equal(t, []int{0, 1}, slots)
}

func TestRoundTripPreservesSlots(t *testing.T) {
	for _, shift := range []Shift{Day, Night} {
		original := []int{0, 3, 7, 11}
		hours := SlotsToHours(original, shift)
		back := HoursToSlots(hours, shift)
		assert.Equal(t, original, back)
	}
}

func TestSlotToHourOutOfRange(t *testing.T) {
	_, err := SlotToHour(12, Day)
	assert.Error(t, err)
	_, err = SlotToHour(-1, Night)
	assert.Error(t, err)
}
