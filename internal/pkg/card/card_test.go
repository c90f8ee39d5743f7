package card

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/statestore"
	"github.com/remihome/remi-card/internal/pkg/view"
)

type mockHistory struct {
	samples []model.Sample
	saved   map[string][]byte
	stored  []byte
}

func (m *mockHistory) WriteSample(_ context.Context, sample model.Sample) error {
	m.samples = append(m.samples, sample)
	return nil
}

func (m *mockHistory) SaveCardConfig(_ context.Context, deviceID string, configJSON []byte) error {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[deviceID] = configJSON
	return nil
}

func (m *mockHistory) LoadCardConfig(_ context.Context, _ string) ([]byte, error) {
	return m.stored, nil
}

type mockBroadcaster struct {
	cards []view.CardView
}

func (m *mockBroadcaster) CardUpdated(card view.CardView) {
	m.cards = append(m.cards, card)
}

func tempState(value, unit string) *model.EntityState {
	return &model.EntityState{
		EntityID:   "sensor.remi_abc_temperature",
		State:      value,
		Attributes: map[string]any{"unit_of_measurement": unit, "device_class": "temperature"},
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(config.CardConfig{}, statestore.New(), nil)
	assert.ErrorIs(t, err, config.ErrDeviceIDRequired)
}

func TestUpdateConfig_PersistsMergedDocument(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	svc, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)

	hours := 12
	merged, err := svc.UpdateConfig(context.Background(), config.CardPatch{HoursToShow: &hours})
	require.NoError(t, err)
	assert.Equal(t, 12, merged.HoursToShow)
	assert.Equal(t, "abc", merged.DeviceID)
	assert.Equal(t, merged, svc.Config())

	require.Contains(t, history.saved, "abc")
	var persisted config.CardConfig
	require.NoError(t, json.Unmarshal(history.saved["abc"], &persisted))
	assert.Equal(t, merged, persisted)
}

func TestUpdateConfig_RejectsEmptyDeviceID(t *testing.T) {
	history := &mockHistory{}
	svc, err := New(config.DefaultCard("abc"), statestore.New(), history)
	require.NoError(t, err)

	empty := ""
	_, err = svc.UpdateConfig(context.Background(), config.CardPatch{DeviceID: &empty})
	assert.ErrorIs(t, err, config.ErrDeviceIDRequired)
	assert.Equal(t, "abc", svc.Config().DeviceID)
	assert.Empty(t, history.saved)
}

func TestRestoreConfig(t *testing.T) {
	stored, err := json.Marshal(config.CardConfig{DeviceID: "abc", DeviceName: "Nursery Remi", HoursToShow: 48})
	require.NoError(t, err)
	history := &mockHistory{stored: stored}

	svc, err := New(config.DefaultCard("abc"), statestore.New(), history)
	require.NoError(t, err)
	require.NoError(t, svc.RestoreConfig(context.Background()))

	cfg := svc.Config()
	assert.Equal(t, "Nursery Remi", cfg.DeviceName)
	assert.Equal(t, 48, cfg.HoursToShow)
}

func TestRestoreConfig_NothingStored(t *testing.T) {
	svc, err := New(config.DefaultCard("abc"), statestore.New(), &mockHistory{})
	require.NoError(t, err)
	require.NoError(t, svc.RestoreConfig(context.Background()))
	assert.Equal(t, config.DefaultCard("abc"), svc.Config())
}

func TestRestoreConfig_RejectsInvalidDocument(t *testing.T) {
	history := &mockHistory{stored: []byte(`{"device_id": ""}`)}
	svc, err := New(config.DefaultCard("abc"), statestore.New(), history)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RestoreConfig(context.Background()), config.ErrDeviceIDRequired)
	assert.Equal(t, "abc", svc.Config().DeviceID)
}

func TestOnStateChange_RecordsTemperatureSamples(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	svc, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)

	broadcast := &mockBroadcaster{}
	svc.SetBroadcaster(broadcast)

	store.Apply("sensor.remi_abc_temperature", tempState("21.5", "°C"))

	require.Len(t, history.samples, 1)
	assert.Equal(t, "sensor.remi_abc_temperature", history.samples[0].EntityID)
	assert.Equal(t, "21.5", history.samples[0].Value)
	assert.Equal(t, "°C", history.samples[0].Unit)
	assert.NotEmpty(t, broadcast.cards)
}

func TestOnStateChange_SkipsUnusableValues(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	_, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)

	store.Apply("sensor.remi_abc_temperature", tempState(model.StateUnavailable, "°C"))
	store.Apply("sensor.remi_abc_temperature", tempState(model.StateUnknown, "°C"))
	assert.Empty(t, history.samples)
}

func TestOnStateChange_RecordsNightLightSamples(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	_, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)

	store.Apply("light.remi_abc_night_light", &model.EntityState{
		EntityID:   "light.remi_abc_night_light",
		State:      model.StateOn,
		Attributes: map[string]any{"brightness": 128},
	})
	store.Apply("light.remi_abc_night_light", &model.EntityState{
		EntityID: "light.remi_abc_night_light",
		State:    model.StateOff,
	})

	require.Len(t, history.samples, 2)
	assert.Equal(t, "light.remi_abc_night_light", history.samples[0].EntityID)
	assert.Equal(t, model.StateOn, history.samples[0].Value)
	assert.Equal(t, model.StateOff, history.samples[1].Value)
}

func TestOnStateChange_IgnoresOtherEntities(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	broadcast := &mockBroadcaster{}
	svc, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)
	svc.SetBroadcaster(broadcast)

	store.Apply("binary_sensor.remi_abc_connectivity", &model.EntityState{
		EntityID: "binary_sensor.remi_abc_connectivity",
		State:    model.StateOn,
	})

	// No sample, but dashboards still get the re-rendered card.
	assert.Empty(t, history.samples)
	assert.NotEmpty(t, broadcast.cards)
}

func TestSnapshotRecordsSamples(t *testing.T) {
	history := &mockHistory{}
	store := statestore.New()
	_, err := New(config.DefaultCard("abc"), store, history)
	require.NoError(t, err)

	store.ReplaceAll([]model.EntityState{
		*tempState("19.8", "°C"),
		{EntityID: "light.remi_abc_night_light", State: model.StateOff},
	})

	require.Len(t, history.samples, 2)
	assert.Equal(t, "19.8", history.samples[0].Value)
	assert.Equal(t, model.StateOff, history.samples[1].Value)
}
