package card

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/contxt"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/publisher"
	"github.com/remihome/remi-card/internal/pkg/resolver"
	"github.com/remihome/remi-card/internal/pkg/statestore"
	"github.com/remihome/remi-card/internal/pkg/view"
)

// historyStore is the persistence slice the card needs: graph samples in,
// config documents in and out.
type historyStore interface {
	WriteSample(ctx context.Context, sample model.Sample) error
	SaveCardConfig(ctx context.Context, deviceID string, configJSON []byte) error
	LoadCardConfig(ctx context.Context, deviceID string) ([]byte, error)
}

// viewBroadcaster pushes a freshly rendered card to connected dashboards.
type viewBroadcaster interface {
	CardUpdated(card view.CardView)
}

// Service ties the pieces together: it watches the state store, re-renders
// the card on every change, records history samples and republishes status.
// It owns no persistent state of its own beyond the configuration document.
type Service struct {
	store    *statestore.Store
	resolver *resolver.Resolver
	history  historyStore
	logger   *zap.Logger

	mu        sync.RWMutex
	cfg       config.CardConfig
	broadcast viewBroadcaster
}

// New validates the configuration up front; a missing device_id is fatal and
// surfaces before anything renders.
func New(cfg config.CardConfig, store *statestore.Store, history historyStore) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		store:    store,
		resolver: resolver.New(),
		history:  history,
		cfg:      cfg,
		logger:   zap.L(),
	}
	store.Subscribe(s.onStateChange)
	return s, nil
}

// SetBroadcaster attaches the dashboard push hub once the server exists.
func (s *Service) SetBroadcaster(b viewBroadcaster) {
	s.mu.Lock()
	s.broadcast = b
	s.mu.Unlock()
}

// RestoreConfig overlays a previously saved editor document, if any.
func (s *Service) RestoreConfig(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	s.mu.Lock()
	deviceID := s.cfg.DeviceID
	s.mu.Unlock()

	stored, err := s.history.LoadCardConfig(ctx, deviceID)
	if err != nil || stored == nil {
		return err
	}
	var cfg config.CardConfig
	if err := json.Unmarshal(stored, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.logger.Info("restored card config", zap.String("device_id", cfg.DeviceID))
	return nil
}

func (s *Service) Config() config.CardConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig is the editor path: shallow-merge the patch, validate the
// required field, persist, and hand back the full merged object.
func (s *Service) UpdateConfig(ctx context.Context, patch config.CardPatch) (config.CardConfig, error) {
	s.mu.Lock()
	merged := s.cfg.Merge(patch)
	if err := merged.Validate(); err != nil {
		s.mu.Unlock()
		return config.CardConfig{}, err
	}
	s.cfg = merged
	s.mu.Unlock()

	if s.history != nil {
		data, err := json.Marshal(merged)
		if err == nil {
			err = s.history.SaveCardConfig(ctx, merged.DeviceID, data)
		}
		if err != nil {
			s.logger.Error("failed to persist card config", zap.Error(err))
		}
	}

	s.rebuild()
	return merged, nil
}

// Entities returns the currently resolved identifier set.
func (s *Service) Entities() (resolver.Entities, []model.EntityID) {
	cfg := s.Config()
	return s.resolver.Current(cfg.DeviceID, cfg.Name(), s.store)
}

// View renders the card against the current snapshot.
func (s *Service) View() view.CardView {
	cfg := s.Config()
	ents, alarms := s.resolver.Current(cfg.DeviceID, cfg.Name(), s.store)
	return view.Build(cfg, s.store, ents, alarms)
}

// onStateChange runs on every host push: record temperature and night-light
// samples for the history tables, then re-render and fan out.
func (s *Service) onStateChange(changed model.EntityID) {
	cfg := s.Config()
	ents, _ := s.resolver.Current(cfg.DeviceID, cfg.Name(), s.store)

	if changed == "" || changed == ents.Temperature {
		s.recordSample(ents.Temperature)
	}
	if changed == "" || changed == ents.NightLight {
		s.recordSample(ents.NightLight)
	}
	s.rebuild()
}

func (s *Service) rebuild() {
	card := s.View()

	s.mu.RLock()
	broadcast := s.broadcast
	cfg := s.cfg
	s.mu.RUnlock()

	if broadcast != nil {
		broadcast.CardUpdated(card)
	}

	available := card.Connectivity != nil && card.Connectivity.Connected
	publisher.PublishStatus(contxt.NewContext(time.Second*5), model.CardStatus{
		DeviceID:   cfg.DeviceID,
		StatusLine: card.Header.StatusLine,
		Face:       card.Header.Face,
		Available:  available,
	})
}

func (s *Service) recordSample(id model.EntityID) {
	if s.history == nil {
		return
	}
	st, ok := s.store.Lookup(id)
	if !ok || st.IsUnavailable() || st.State == model.StateUnknown {
		return
	}
	var attrs model.SensorAttributes
	_ = st.DecodeAttributes(&attrs)

	if err := s.history.WriteSample(contxt.NewContext(time.Second*5), model.Sample{
		TimeStamp: time.Now(),
		EntityID:  id.String(),
		Value:     st.State,
		Unit:      attrs.UnitOfMeasurement,
	}); err != nil {
		s.logger.Error("failed to write history sample", zap.Error(err))
	}
}
