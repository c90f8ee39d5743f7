package hass

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/statestore"
	ws "github.com/remihome/remi-card/pkg/sockets"
)

// ErrDisconnected signals the session loop that the websocket dropped and the
// whole session (auth, snapshot, subscription) must be rebuilt.
var ErrDisconnected = errors.New("hass: disconnected")

// Service maintains one authenticated websocket session against the host:
// auth handshake, full get_states snapshot, then incremental state_changed
// events folded into the store. Service calls are fire-and-forget; their
// outcome only shows up via the next event.
type Service struct {
	cfg     *config.HassConfig
	store   *statestore.Store
	errChan chan error
	logger  *zap.Logger

	mu           sync.Mutex
	conn         ws.Connection
	msgID        int
	statesID     int
	configID     int
	subscribeID  int
	disconnected chan error

	dialer func(opts ...func(*ws.Conn)) ws.Connection
}

func New(cfg *config.HassConfig, store *statestore.Store, errChan chan error) *Service {
	return &Service{
		cfg:          cfg,
		store:        store,
		errChan:      errChan,
		logger:       zap.L(),
		disconnected: make(chan error, 1),
		dialer:       ws.New,
	}
}

func (s *Service) sendIfErr(err error) {
	if err != nil {
		s.errChan <- err
	}
}

// Connect dials the host websocket endpoint. The auth flow is driven entirely
// by inbound messages: the host speaks first with auth_required.
func (s *Service) Connect(ctx context.Context) error {
	wsURL, err := websocketURL(s.cfg.URL)
	if err != nil {
		return err
	}

	conn := s.dialer(
		ws.OnMessage(s.onMessage),
		ws.OnError(s.onError),
		ws.WithPingIntervalSec(20),
		ws.WithPingMsg([]byte(`{"type":"ping"}`)),
	)

	s.logger.Debug("connecting to host", zap.String("url", wsURL))
	if err := conn.Dial(ctx, wsURL, nil); err != nil {
		s.logger.Error("failed to connect to host", zap.String("url", wsURL), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.msgID = 0
	s.statesID, s.configID, s.subscribeID = 0, 0, 0
	s.mu.Unlock()
	return nil
}

// SubscribeToDisconnect yields once when the current session dies.
func (s *Service) SubscribeToDisconnect() <-chan error {
	return s.disconnected
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Service) onError(err error) {
	s.logger.Warn("host session error", zap.Error(err))
	select {
	case s.disconnected <- ErrDisconnected:
	default:
	}
}

func (s *Service) onMessage(data []byte, _ ws.Connection) {
	var msg envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendIfErr(err)
		return
	}

	switch msg.Type {
	case typeAuthRequired:
		s.handleAuthRequired()
	case typeAuthOK:
		s.handleAuthOK()
	case typeAuthInvalid:
		s.sendIfErr(errors.New("hass: invalid access token"))
	case typeResult:
		s.handleResult(msg)
	case typeEvent:
		s.handleEvent(msg)
	}
}

func (s *Service) handleAuthRequired() {
	s.logger.Debug("auth requested by host")
	s.send(authRequest{Type: typeAuth, AccessToken: s.cfg.Token})
}

// handleAuthOK kicks off the session proper: config for the language hint,
// the full snapshot, then the event subscription.
func (s *Service) handleAuthOK() {
	s.logger.Info("authenticated with host")
	s.mu.Lock()
	s.configID = s.nextIDLocked()
	s.statesID = s.nextIDLocked()
	s.subscribeID = s.nextIDLocked()
	configID, statesID, subscribeID := s.configID, s.statesID, s.subscribeID
	s.mu.Unlock()

	s.send(commandRequest{ID: configID, Type: typeGetConfig})
	s.send(commandRequest{ID: statesID, Type: typeGetStates})
	s.send(subscribeRequest{
		commandRequest: commandRequest{ID: subscribeID, Type: typeSubscribeEvents},
		EventType:      eventStateChanged,
	})
}

func (s *Service) handleResult(msg envelope) {
	if msg.Success != nil && !*msg.Success {
		code, text := "", ""
		if msg.Error != nil {
			code, text = msg.Error.Code, msg.Error.Message
		}
		s.logger.Warn("host rejected command",
			zap.Int("id", msg.ID), zap.String("code", code), zap.String("message", text))
		return
	}

	s.mu.Lock()
	statesID, configID := s.statesID, s.configID
	s.mu.Unlock()

	switch msg.ID {
	case statesID:
		var states []model.EntityState
		if err := json.Unmarshal(msg.Result, &states); err != nil {
			s.sendIfErr(err)
			return
		}
		s.logger.Info("snapshot received", zap.Int("entities", len(states)))
		s.store.ReplaceAll(states)
	case configID:
		var cfg hostConfig
		if err := json.Unmarshal(msg.Result, &cfg); err != nil {
			s.sendIfErr(err)
			return
		}
		s.store.SetLanguage(cfg.Language)
	}
}

func (s *Service) handleEvent(msg envelope) {
	var event stateChangedEvent
	if err := json.Unmarshal(msg.Event, &event); err != nil {
		s.sendIfErr(err)
		return
	}
	if event.EventType != eventStateChanged {
		return
	}
	s.store.Apply(event.Data.EntityID, event.Data.NewState)
}

func (s *Service) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.sendIfErr(err)
		return
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.sendIfErr(ErrDisconnected)
		return
	}
	s.sendIfErr(conn.Send(ws.Msg{Body: data}))
}

func (s *Service) nextIDLocked() int {
	s.msgID++
	return s.msgID
}

func (s *Service) nextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIDLocked()
}

func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api/websocket"
	}
	return u.String(), nil
}
