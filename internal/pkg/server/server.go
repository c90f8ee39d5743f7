package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/dispatch"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/resolver"
	"github.com/remihome/remi-card/internal/pkg/view"
)

type cardService interface {
	View() view.CardView
	Config() config.CardConfig
	UpdateConfig(ctx context.Context, patch config.CardPatch) (config.CardConfig, error)
	Entities() (resolver.Entities, []model.EntityID)
}

type dispatcher interface {
	SetBrightness(light model.EntityID, phase string, pct int) error
	SelectFace(sel model.EntityID, option string) error
	MoreInfo(id model.EntityID)
}

type historyReader interface {
	GetSamples(ctx context.Context, entityID string, from, to time.Time) (model.Samples, error)
}

type Server struct {
	card     cardService
	dispatch dispatcher
	history  historyReader
	hub      *Hub
	cfg      *config.ServerConfig
	logger   *zap.Logger
}

func New(card cardService, dispatch dispatcher, history historyReader, hub *Hub, cfg *config.ServerConfig) *Server {
	return &Server{
		card:     card,
		dispatch: dispatch,
		history:  history,
		hub:      hub,
		cfg:      cfg,
		logger:   zap.L(),
	}
}

// Routes builds the dashboard-facing API. An empty api secret disables auth.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)

	r.Get("/healthz", s.Health)
	r.Post("/api/login", s.Login)
	r.Route("/api", func(api chi.Router) {
		api.Use(JWTAuth(s.cfg.APISecret))
		api.Get("/card", s.GetCard)
		api.Get("/config", s.GetConfig)
		api.Patch("/config", s.PatchConfig)
		api.Post("/light", s.PostLight)
		api.Post("/face", s.PostFace)
		api.Post("/more-info", s.PostMoreInfo)
		api.Get("/history/temperature", s.GetTemperatureHistory)
		api.Get("/ws", s.hub.Serve)
	})
	return r
}

func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card.View())
}

func (s *Server) GetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card.Config())
}

// PatchConfig is the editor surface: a partial config comes in, the full
// merged object goes back out.
func (s *Server) PatchConfig(w http.ResponseWriter, r *http.Request) {
	patch, err := unmarshalPayload[config.CardPatch](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	merged, err := s.card.UpdateConfig(r.Context(), *patch)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

type lightRequest struct {
	Phase         string `json:"phase"`
	BrightnessPct int    `json:"brightness_pct"`
}

func (s *Server) PostLight(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[lightRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	if req.Phase == "" {
		req.Phase = dispatch.PhaseCommit
	}
	ents, _ := s.card.Entities()
	if err := s.dispatch.SetBrightness(ents.NightLight, req.Phase, req.BrightnessPct); err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type faceRequest struct {
	Option string `json:"option"`
}

func (s *Server) PostFace(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[faceRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	ents, _ := s.card.Entities()
	if err := s.dispatch.SelectFace(ents.FaceSelect, req.Option); err != nil {
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type moreInfoRequest struct {
	EntityID model.EntityID `json:"entity_id"`
}

func (s *Server) PostMoreInfo(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[moreInfoRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	s.dispatch.MoreInfo(req.EntityID)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) GetTemperatureHistory(w http.ResponseWriter, r *http.Request) {
	cfg := s.card.Config()
	hours := cfg.HoursToShow
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			handleError(w, http.StatusBadRequest, errInvalidHours)
			return
		}
		hours = parsed
	}

	ents, _ := s.card.Entities()
	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)
	samples, err := s.history.GetSamples(r.Context(), ents.Temperature.String(), from, to)
	if err != nil {
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func handleError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	var out T
	if err := json.NewDecoder(r.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
