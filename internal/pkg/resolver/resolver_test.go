package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remihome/remi-card/internal/pkg/model"
)

func TestResolve_TemplateSubstitution(t *testing.T) {
	ents := Resolve("abc123")

	assert.Equal(t, model.EntityID("sensor.remi_abc123_face"), ents.Face)
	assert.Equal(t, model.EntityID("select.remi_abc123_face"), ents.FaceSelect)
	assert.Equal(t, model.EntityID("light.remi_abc123_night_light"), ents.NightLight)
	assert.Equal(t, model.EntityID("sensor.remi_abc123_temperature"), ents.Temperature)
	assert.Equal(t, model.EntityID("binary_sensor.remi_abc123_connectivity"), ents.Connectivity)
	assert.Equal(t, model.EntityID("sensor.remi_abc123_rssi"), ents.SignalStrength)
}

func TestResolve_ChangingDeviceIDChangesAllIdentifiers(t *testing.T) {
	before := Resolve("first")
	after := Resolve("second")

	beforeIDs := before.All()
	require.Len(t, beforeIDs, 6)
	for i, id := range after.All() {
		assert.NotEqual(t, beforeIDs[i], id, "identifier %d kept a stale device id", i)
		assert.Contains(t, id.String(), "second")
		assert.NotContains(t, id.String(), "first")
	}
}

func TestAlarms_PatternScan(t *testing.T) {
	ids := []model.EntityID{
		"time.my_remi_wakeup_time",
		"time.my_remi_nap_time",
		"time.other_device_wakeup_time",
		"sensor.my_remi_temperature",
		"time.my_remi_unrelated", // wrong suffix
	}

	alarms := Alarms(ids, "My Remi")
	assert.Equal(t, []model.EntityID{
		"time.my_remi_nap_time",
		"time.my_remi_wakeup_time",
	}, alarms)
}

func TestAlarms_UnmatchedPatternYieldsEmptyList(t *testing.T) {
	ids := []model.EntityID{"time.someone_else_wakeup_time"}

	alarms := Alarms(ids, "My Remi")
	assert.Empty(t, alarms)
}

func TestNameSlug(t *testing.T) {
	tests := map[string]string{
		"My Remi":   "my_remi",
		"Rémi Bébé": "remi_bebe",
		"nursery":   "nursery",
	}
	for name, want := range tests {
		assert.Equal(t, want, NameSlug(name))
	}
}

type fakeSource struct {
	ids []model.EntityID
	rev uint64
}

func (f *fakeSource) IDs() []model.EntityID { return f.ids }
func (f *fakeSource) Revision() uint64      { return f.rev }

func TestResolver_MemoizesUntilInputsChange(t *testing.T) {
	source := &fakeSource{ids: []model.EntityID{"time.remi_wakeup_time"}, rev: 1}
	r := New()

	ents, alarms := r.Current("dev1", "remi", source)
	assert.Equal(t, Resolve("dev1"), ents)
	assert.Len(t, alarms, 1)

	// Same inputs: the memoized alarm list is reused even if the underlying
	// slice would now differ.
	source.ids = nil
	_, alarms = r.Current("dev1", "remi", source)
	assert.Len(t, alarms, 1)

	// Revision bump forces a rescan.
	source.rev = 2
	_, alarms = r.Current("dev1", "remi", source)
	assert.Empty(t, alarms)
}

func TestResolver_RecomputesOnDeviceChange(t *testing.T) {
	source := &fakeSource{rev: 1}
	r := New()

	ents, _ := r.Current("dev1", "remi", source)
	assert.Equal(t, Resolve("dev1"), ents)

	ents, _ = r.Current("dev2", "remi", source)
	assert.Equal(t, Resolve("dev2"), ents)
}
