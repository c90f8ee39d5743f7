package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// The card republishes its composed status as a discoverable sensor so host
// automations can react to it without scraping the dashboard.

func statusBase(deviceID string) string {
	return fmt.Sprintf("homeassistant/sensor/remi_%s_card_status", deviceID)
}

// RegisterDevice publishes the discovery config once per device.
func (s *service) RegisterDevice(device *model.Device) error {
	s.mu.Lock()
	if _, exists := s.configuredDevices[device.ID]; exists {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	payload, err := json.Marshal(defaultRegisterMsg(device))
	if err != nil {
		return err
	}

	token := s.client.Publish(statusBase(device.ID)+"/config", 1, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	if token.WaitTimeout(time.Second * 5) {
		s.mu.Lock()
		s.configuredDevices[device.ID] = struct{}{}
		s.mu.Unlock()
	}
	return nil
}

// PublishStatus writes the status line and availability to the state topics.
func (s *service) PublishStatus(_ context.Context, status model.CardStatus) error {
	base := statusBase(status.DeviceID)

	availability := "offline"
	if status.Available {
		availability = "online"
	}
	if err := s.publish(base+"/availability", []byte(availability)); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"status_line": status.StatusLine,
		"face":        status.Face,
	})
	if err != nil {
		return err
	}
	return s.publish(base+"/state", payload)
}

func (s *service) publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, 0, false, payload)
	if token.WaitTimeout(time.Second * 10) {
		return nil
	}
	return token.Error()
}

func defaultRegisterMsg(device *model.Device) model.RegisterMessage {
	name := fmt.Sprintf("%s card status", device.Name)
	return model.RegisterMessage{
		Tilda:             statusBase(device.ID),
		Name:              name,
		ID:                fmt.Sprintf("remi_%s_card_status", device.ID),
		StateTopic:        "~/state",
		AvailabilityTopic: "~/availability",
		Icon:              "mdi:baby-face-outline",
		Device: model.RegisterDevice{
			Name:         device.Name,
			Identifiers:  []string{"remi_" + device.ID},
			Model:        "Remi",
			Manufacturer: "UrbanHello",
		},
	}
}
