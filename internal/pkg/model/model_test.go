package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityID_Parts(t *testing.T) {
	id := EntityID("light.remi_abc_night_light")
	assert.Equal(t, "light", id.Domain())
	assert.Equal(t, "remi_abc_night_light", id.ObjectID())
}

func TestParseFace(t *testing.T) {
	assert.Equal(t, FaceSleeping, ParseFace("sleeping"))
	assert.Equal(t, FaceHappy, ParseFace("happy"))

	for _, state := range []string{"unavailable", "unknown", "", "grimace"} {
		assert.Equal(t, FaceUnknown, ParseFace(state), state)
	}
}

func TestFace_Icon(t *testing.T) {
	assert.Equal(t, "mdi:sleep", FaceSleeping.Icon())
	assert.Equal(t, "mdi:help-circle-outline", FaceUnknown.Icon())
	assert.Equal(t, "mdi:help-circle-outline", Face("grimace").Icon())
}

func TestDecodeAttributes(t *testing.T) {
	st := EntityState{
		EntityID: "time.nursery_remi_wake_up_time",
		State:    "07:30:00",
		Attributes: map[string]any{
			"alarm_name":   "Wake up",
			"days_indices": []any{0, 2, 4},
			"face":         "happy",
			"brightness":   200,
			"volume":       60,
			"irrelevant":   "ignored",
		},
	}

	var attrs AlarmAttributes
	require.NoError(t, st.DecodeAttributes(&attrs))
	assert.Equal(t, "Wake up", attrs.AlarmName)
	assert.Equal(t, []int{0, 2, 4}, attrs.DaysIndices)
	assert.Equal(t, "happy", attrs.Face)
	assert.Equal(t, 200, attrs.Brightness)
}

func TestDecodeAttributes_AbsentKeysKeepZeroValues(t *testing.T) {
	st := EntityState{EntityID: "sensor.remi_abc_temperature", State: "21.5"}

	var attrs SensorAttributes
	require.NoError(t, st.DecodeAttributes(&attrs))
	assert.Empty(t, attrs.UnitOfMeasurement)
}

func TestEntityState_Sentinels(t *testing.T) {
	assert.True(t, EntityState{State: StateUnavailable}.IsUnavailable())
	assert.False(t, EntityState{State: StateOff}.IsUnavailable())
	assert.True(t, EntityState{State: StateOn}.IsOn())
}
