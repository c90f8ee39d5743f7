package hass

import (
	"github.com/remihome/remi-card/internal/pkg/model"
	"go.uber.org/zap"
)

// The three outbound command shapes the card issues. All of them are
// fire-and-forget: no awaited completion, no retry, no timeout. Success or
// failure is only visible through the next state_changed event.

// TurnOn switches the night light on at the given display percentage.
func (s *Service) TurnOn(light model.EntityID, brightnessPct int) error {
	s.logger.Info("turn_on", zap.String("entity_id", light.String()), zap.Int("brightness_pct", brightnessPct))
	s.send(callServiceRequest{
		commandRequest: commandRequest{ID: s.nextID(), Type: typeCallService},
		Domain:         model.DomainLight,
		Service:        "turn_on",
		ServiceData:    map[string]any{"brightness_pct": brightnessPct},
		Target:         serviceTarget{EntityID: light},
	})
	return nil
}

// TurnOff switches the night light off.
func (s *Service) TurnOff(light model.EntityID) error {
	s.logger.Info("turn_off", zap.String("entity_id", light.String()))
	s.send(callServiceRequest{
		commandRequest: commandRequest{ID: s.nextID(), Type: typeCallService},
		Domain:         model.DomainLight,
		Service:        "turn_off",
		Target:         serviceTarget{EntityID: light},
	})
	return nil
}

// SelectOption writes a face choice through the select entity.
func (s *Service) SelectOption(sel model.EntityID, option string) error {
	s.logger.Info("select_option", zap.String("entity_id", sel.String()), zap.String("option", option))
	s.send(callServiceRequest{
		commandRequest: commandRequest{ID: s.nextID(), Type: typeCallService},
		Domain:         model.DomainSelect,
		Service:        "select_option",
		ServiceData:    map[string]any{"option": option},
		Target:         serviceTarget{EntityID: sel},
	})
	return nil
}
