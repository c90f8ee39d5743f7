package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Entity domains the card binds to.
const (
	DomainSensor       = "sensor"
	DomainBinarySensor = "binary_sensor"
	DomainLight        = "light"
	DomainSelect       = "select"
	DomainTime         = "time"
)

// Sentinel states used by the host for entities that exist but carry no usable value.
const (
	StateOn          = "on"
	StateOff         = "off"
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
)

// EntityID is a host entity identifier of the form "domain.object_id".
type EntityID string

func (id EntityID) String() string {
	return string(id)
}

func (id EntityID) Domain() string {
	domain, _, _ := strings.Cut(string(id), ".")
	return domain
}

func (id EntityID) ObjectID() string {
	_, object, _ := strings.Cut(string(id), ".")
	return object
}

// EntityState is the host's state snapshot for a single entity, as delivered by
// get_states and state_changed events.
type EntityState struct {
	EntityID    EntityID       `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

func (s EntityState) IsUnavailable() bool {
	return s.State == StateUnavailable
}

func (s EntityState) IsOn() bool {
	return s.State == StateOn
}

// DecodeAttributes unpacks the open attribute map into a per-domain schema struct.
// Unknown keys are ignored, absent keys keep their zero value.
func (s EntityState) DecodeAttributes(out any) error {
	data, err := json.Marshal(s.Attributes)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// LightAttributes is the attribute schema of a light entity. Brightness is the
// host-native 0..255 scale.
type LightAttributes struct {
	Brightness   int    `json:"brightness"`
	FriendlyName string `json:"friendly_name"`
}

// SensorAttributes is the attribute schema of sensor and binary_sensor entities.
type SensorAttributes struct {
	UnitOfMeasurement string `json:"unit_of_measurement"`
	DeviceClass       string `json:"device_class"`
	FriendlyName      string `json:"friendly_name"`
}

// SelectAttributes is the attribute schema of a select entity.
type SelectAttributes struct {
	Options      []string `json:"options"`
	FriendlyName string   `json:"friendly_name"`
}

// AlarmAttributes is the attribute schema of an alarm-clock time entity. The
// entity state itself carries the wall-clock time, everything else rides in
// attributes. DaysIndices is 0=Monday .. 6=Sunday.
type AlarmAttributes struct {
	AlarmName   string `json:"alarm_name"`
	DaysIndices []int  `json:"days_indices"`
	Face        string `json:"face"`
	Brightness  int    `json:"brightness"`
	Volume      int    `json:"volume"`
}
