package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

type RegisterMessage struct {
	Tilda             string         `json:"~"`
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	AvailabilityTopic string         `json:"availability_topic"`
	Icon              string         `json:"icon"`
	Device            RegisterDevice `json:"device"`
}

// Device identifies the sleep trainer a card instance is bound to.
type Device struct {
	ID   string
	Name string
}

// CardStatus is what the card republishes on every rebuild: the composed status
// line plus whether the device is currently reachable.
type CardStatus struct {
	DeviceID   string `json:"device_id"`
	StatusLine string `json:"status_line"`
	Face       string `json:"face"`
	Available  bool   `json:"available"`
}
