package hass

import (
	"encoding/json"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// Message types of the host websocket API.
const (
	typeAuthRequired = "auth_required"
	typeAuth         = "auth"
	typeAuthOK       = "auth_ok"
	typeAuthInvalid  = "auth_invalid"
	typeResult       = "result"
	typeEvent        = "event"

	typeGetStates       = "get_states"
	typeGetConfig       = "get_config"
	typeSubscribeEvents = "subscribe_events"
	typeCallService     = "call_service"

	eventStateChanged = "state_changed"
)

// envelope is the minimal shape every inbound frame shares.
type envelope struct {
	ID      int             `json:"id"`
	Type    string          `json:"type"`
	Success *bool           `json:"success"`
	Result  json.RawMessage `json:"result"`
	Event   json.RawMessage `json:"event"`
	Error   *resultError    `json:"error"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authRequest struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

type commandRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

type subscribeRequest struct {
	commandRequest
	EventType string `json:"event_type"`
}

type callServiceRequest struct {
	commandRequest
	Domain      string         `json:"domain"`
	Service     string         `json:"service"`
	ServiceData map[string]any `json:"service_data,omitempty"`
	Target      serviceTarget  `json:"target"`
}

type serviceTarget struct {
	EntityID model.EntityID `json:"entity_id"`
}

type hostConfig struct {
	Language string `json:"language"`
	Version  string `json:"version"`
}

type stateChangedEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		EntityID model.EntityID     `json:"entity_id"`
		OldState *model.EntityState `json:"old_state"`
		NewState *model.EntityState `json:"new_state"`
	} `json:"data"`
}
