package publisher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	mu                   sync.Mutex
	registeredPublishers = make(map[string]publisher)
	lastStatus           sync.Map
)

type publisher interface {
	// PublishStatus pushes the card's composed status to the sink.
	PublishStatus(ctx context.Context, status model.CardStatus) error
	RegisterDevice(device *model.Device) error
}

// Register is the single explicit registration call sinks make at startup.
func Register(name string, p publisher) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = p
	return nil
}

// PublishStatus fans the status out to every registered sink, suppressing
// publishes when nothing changed since the last one for that device.
func PublishStatus(ctx context.Context, status model.CardStatus) {
	if !shouldUpdate(status) {
		return
	}
	mu.Lock()
	sinks := make(map[string]publisher, len(registeredPublishers))
	for name, p := range registeredPublishers {
		sinks[name] = p
	}
	mu.Unlock()

	for name, p := range sinks {
		if err := p.PublishStatus(ctx, status); err != nil {
			zap.L().Error("failed to publish status", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("published status", zap.String("publisher", name), zap.String("status", status.StatusLine))
	}
}

// RegisterDevice announces the bound device to every sink.
func RegisterDevice(device *model.Device) {
	mu.Lock()
	sinks := make(map[string]publisher, len(registeredPublishers))
	for name, p := range registeredPublishers {
		sinks[name] = p
	}
	mu.Unlock()

	for name, p := range sinks {
		if err := p.RegisterDevice(device); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", device.ID), zap.String("publisher", name))
	}
}

func shouldUpdate(status model.CardStatus) bool {
	old, exists := lastStatus.Load(status.DeviceID)
	if exists && old.(model.CardStatus) == status {
		return false
	}
	lastStatus.Store(status.DeviceID, status)
	return true
}
