package dispatch

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// Slider interaction phases. Drag events only move local visual state; the
// single service call goes out on release with the final value.
const (
	PhasePreview = "preview"
	PhaseCommit  = "commit"
)

// commander is the host call surface the dispatcher needs.
type commander interface {
	TurnOn(light model.EntityID, brightnessPct int) error
	TurnOff(light model.EntityID) error
	SelectOption(sel model.EntityID, option string) error
}

// broadcaster pushes local UI events to connected dashboard clients.
type broadcaster interface {
	BrightnessPreview(light model.EntityID, pct int)
	MoreInfo(id model.EntityID)
}

// Dispatcher translates discrete user interactions into the three outbound
// command shapes. It keeps no command outcome state: a failed call is logged
// and reality catches up with the next snapshot.
type Dispatcher struct {
	commands  commander
	broadcast broadcaster
	logger    *zap.Logger

	mu          sync.Mutex
	previewPct  int
	previewLive bool
}

func New(commands commander, broadcast broadcaster) *Dispatcher {
	return &Dispatcher{
		commands:  commands,
		broadcast: broadcast,
		logger:    zap.L(),
	}
}

// SetBrightness handles one slider event. Previews supersede each other and
// never reach the host; a commit issues exactly one call with the final
// value: zero turns the light off, anything else turns it on at that percent.
func (d *Dispatcher) SetBrightness(light model.EntityID, phase string, pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("brightness_pct out of range: %d", pct)
	}

	switch phase {
	case PhasePreview:
		d.mu.Lock()
		d.previewPct = pct
		d.previewLive = true
		d.mu.Unlock()
		if d.broadcast != nil {
			d.broadcast.BrightnessPreview(light, pct)
		}
		return nil
	case PhaseCommit:
		d.mu.Lock()
		d.previewLive = false
		d.mu.Unlock()
		if pct == 0 {
			if err := d.commands.TurnOff(light); err != nil {
				d.logger.Error("turn_off failed", zap.Error(err))
			}
			return nil
		}
		if err := d.commands.TurnOn(light, pct); err != nil {
			d.logger.Error("turn_on failed", zap.Error(err))
		}
		return nil
	default:
		return fmt.Errorf("unknown slider phase: %q", phase)
	}
}

// PendingPreview reports an uncommitted slider value, if any.
func (d *Dispatcher) PendingPreview() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.previewPct, d.previewLive
}

// SelectFace issues the select-option call with the chosen face value.
func (d *Dispatcher) SelectFace(sel model.EntityID, option string) error {
	if err := d.commands.SelectOption(sel, option); err != nil {
		d.logger.Error("select_option failed", zap.Error(err))
	}
	return nil
}

// MoreInfo is a local UI event only: it asks connected dashboards to open the
// host's detail view for an entity. No host call is made.
func (d *Dispatcher) MoreInfo(id model.EntityID) {
	if d.broadcast != nil {
		d.broadcast.MoreInfo(id)
	}
}
