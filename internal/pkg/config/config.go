package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// ErrDeviceIDRequired is the fatal configuration error: without a device id no
// entity can be derived, so the card refuses to start or accept the update.
var ErrDeviceIDRequired = errors.New("device_id is required")

type Config struct {
	Card     CardConfig
	Hass     *HassConfig
	Mqtt     *MqttConfig
	Database *DatabaseConfig
	Server   *ServerConfig
	LogLevel string
}

// CardConfig is the card's own configuration object, the one the editor edits.
// Every show_* flag independently gates one section of the rendered card.
type CardConfig struct {
	DeviceID             string `json:"device_id"              env:"DEVICE_ID"`
	DeviceName           string `json:"device_name"            env:"DEVICE_NAME"`
	ShowFaceSelector     bool   `json:"show_face_selector"     env:"SHOW_FACE_SELECTOR"     envDefault:"true"`
	ShowControls         bool   `json:"show_controls"          env:"SHOW_CONTROLS"          envDefault:"true"`
	ShowTemperatureGraph bool   `json:"show_temperature_graph" env:"SHOW_TEMPERATURE_GRAPH" envDefault:"true"`
	ShowConnectivity     bool   `json:"show_connectivity"      env:"SHOW_CONNECTIVITY"      envDefault:"true"`
	ShowAlarmClocks      bool   `json:"show_alarm_clocks"      env:"SHOW_ALARM_CLOCKS"      envDefault:"true"`
	HoursToShow          int    `json:"hours_to_show"          env:"HOURS_TO_SHOW"          envDefault:"24"`
}

type HassConfig struct {
	URL   string
	Token string
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
}

type DatabaseConfig struct {
	URL              string
	MigrationsFolder string
}

type ServerConfig struct {
	ListenAddr   string
	APISecret    string
	PasswordHash string
}

// DefaultCard returns a CardConfig with every flag at its default.
func DefaultCard(deviceID string) CardConfig {
	return CardConfig{
		DeviceID:             deviceID,
		ShowFaceSelector:     true,
		ShowControls:         true,
		ShowTemperatureGraph: true,
		ShowConnectivity:     true,
		ShowAlarmClocks:      true,
		HoursToShow:          24,
	}
}

// CardFromEnv builds a CardConfig from REMI_CARD_* environment variables.
func CardFromEnv() (CardConfig, error) {
	var cfg CardConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "REMI_CARD_"}); err != nil {
		return CardConfig{}, err
	}
	return cfg, nil
}

// Validate enforces the single required field. Called at configure time,
// before any rendering or service start.
func (c CardConfig) Validate() error {
	if c.DeviceID == "" {
		return ErrDeviceIDRequired
	}
	return nil
}

// Name returns the display label, defaulting to the device id.
func (c CardConfig) Name() string {
	if c.DeviceName != "" {
		return c.DeviceName
	}
	return c.DeviceID
}

// CardPatch is a partial editor update. Nil fields mean "unchanged".
type CardPatch struct {
	DeviceID             *string `json:"device_id,omitempty"`
	DeviceName           *string `json:"device_name,omitempty"`
	ShowFaceSelector     *bool   `json:"show_face_selector,omitempty"`
	ShowControls         *bool   `json:"show_controls,omitempty"`
	ShowTemperatureGraph *bool   `json:"show_temperature_graph,omitempty"`
	ShowConnectivity     *bool   `json:"show_connectivity,omitempty"`
	ShowAlarmClocks      *bool   `json:"show_alarm_clocks,omitempty"`
	HoursToShow          *int    `json:"hours_to_show,omitempty"`
}

// Merge applies a patch onto the previous config and returns the full merged
// result, shallow-merge semantics: only fields present in the patch overwrite.
func (c CardConfig) Merge(patch CardPatch) CardConfig {
	merged := c
	if patch.DeviceID != nil {
		merged.DeviceID = *patch.DeviceID
	}
	if patch.DeviceName != nil {
		merged.DeviceName = *patch.DeviceName
	}
	if patch.ShowFaceSelector != nil {
		merged.ShowFaceSelector = *patch.ShowFaceSelector
	}
	if patch.ShowControls != nil {
		merged.ShowControls = *patch.ShowControls
	}
	if patch.ShowTemperatureGraph != nil {
		merged.ShowTemperatureGraph = *patch.ShowTemperatureGraph
	}
	if patch.ShowConnectivity != nil {
		merged.ShowConnectivity = *patch.ShowConnectivity
	}
	if patch.ShowAlarmClocks != nil {
		merged.ShowAlarmClocks = *patch.ShowAlarmClocks
	}
	if patch.HoursToShow != nil {
		merged.HoursToShow = *patch.HoursToShow
	}
	return merged
}
