package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/remihome/remi-card/internal/pkg/config"
	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/resolver"
)

// stateStore is the slice of the host snapshot the render gate needs.
type stateStore interface {
	Lookup(id model.EntityID) (model.EntityState, bool)
	CurrentLanguage() string
}

// CardView is the fully rendered card. Nil sections are not drawn; each
// section is gated by its show_* flag and self-suppresses when its underlying
// entity is absent or unavailable.
type CardView struct {
	Header       HeaderSection        `json:"header"`
	FaceSelector *FaceSelectorSection `json:"face_selector,omitempty"`
	Controls     *ControlsSection     `json:"controls,omitempty"`
	Temperature  *TemperatureSection  `json:"temperature,omitempty"`
	Connectivity *ConnectivitySection `json:"connectivity,omitempty"`
	Alarms       *AlarmSection        `json:"alarms,omitempty"`
}

type HeaderSection struct {
	Title      string `json:"title"`
	Face       string `json:"face"`
	FaceIcon   string `json:"face_icon"`
	FaceLabel  string `json:"face_label"`
	StatusLine string `json:"status_line"`
}

type FaceOption struct {
	Value    string `json:"value"`
	Icon     string `json:"icon"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type FaceSelectorSection struct {
	EntityID model.EntityID `json:"entity_id"`
	Options  []FaceOption   `json:"options"`
}

type ControlsSection struct {
	EntityID      model.EntityID `json:"entity_id"`
	On            bool           `json:"on"`
	BrightnessPct int            `json:"brightness_pct"`
}

type TemperatureSection struct {
	EntityID    model.EntityID `json:"entity_id"`
	Value       string         `json:"value"`
	Unit        string         `json:"unit"`
	Unavailable bool           `json:"unavailable"`
	HoursToShow int            `json:"hours_to_show"`
}

type SignalRow struct {
	EntityID model.EntityID `json:"entity_id"`
	Value    string         `json:"value"`
	Unit     string         `json:"unit"`
}

type ConnectivitySection struct {
	EntityID  model.EntityID `json:"entity_id"`
	Connected bool           `json:"connected"`
	Signal    *SignalRow     `json:"signal,omitempty"`
}

type AlarmRow struct {
	EntityID      model.EntityID `json:"entity_id"`
	Time          string         `json:"time"`
	Name          string         `json:"name"`
	Days          string         `json:"days"`
	Face          string         `json:"face"`
	FaceIcon      string         `json:"face_icon"`
	BrightnessPct int            `json:"brightness_pct"`
	Volume        int            `json:"volume"`
}

type AlarmSection struct {
	Rows []AlarmRow `json:"rows"`
}

// BrightnessPercent converts the host-native 0..255 brightness to a rounded
// display percentage: 128 -> 50, 255 -> 100.
func BrightnessPercent(native int) int {
	if native <= 0 {
		return 0
	}
	if native >= 255 {
		return 100
	}
	return int(math.Round(float64(native) * 100 / 255))
}

// Build renders the card from the current config, snapshot and resolved
// identifiers. It holds no state of its own; callers re-run it whenever either
// input changed.
func Build(cfg config.CardConfig, store stateStore, ents resolver.Entities, alarms []model.EntityID) CardView {
	lang := store.CurrentLanguage()

	card := CardView{
		Header: buildHeader(cfg, store, ents, lang),
	}
	if cfg.ShowFaceSelector {
		card.FaceSelector = buildFaceSelector(store, ents, lang)
	}
	if cfg.ShowControls {
		card.Controls = buildControls(store, ents)
	}
	if cfg.ShowTemperatureGraph {
		card.Temperature = buildTemperature(cfg, store, ents)
	}
	if cfg.ShowConnectivity {
		card.Connectivity = buildConnectivity(store, ents)
	}
	if cfg.ShowAlarmClocks {
		card.Alarms = buildAlarms(store, alarms)
	}
	return card
}

func buildHeader(cfg config.CardConfig, store stateStore, ents resolver.Entities, lang string) HeaderSection {
	face := model.FaceUnknown
	if st, ok := store.Lookup(ents.Face); ok && !st.IsUnavailable() {
		face = model.ParseFace(st.State)
	}
	return HeaderSection{
		Title:      cfg.Name(),
		Face:       face.String(),
		FaceIcon:   face.Icon(),
		FaceLabel:  FaceLabel(face, lang),
		StatusLine: statusLine(store, ents, lang),
	}
}

// statusLine composes the fixed-order summary: temperature (when available),
// face label, brightness percent or "off".
func statusLine(store stateStore, ents resolver.Entities, lang string) string {
	parts := make([]string, 0, 3)

	if st, ok := store.Lookup(ents.Temperature); ok && !st.IsUnavailable() && st.State != model.StateUnknown {
		var attrs model.SensorAttributes
		_ = st.DecodeAttributes(&attrs)
		unit := attrs.UnitOfMeasurement
		if unit == "" {
			unit = "°C"
		}
		parts = append(parts, st.State+" "+unit)
	}

	face := model.FaceUnknown
	if st, ok := store.Lookup(ents.Face); ok && !st.IsUnavailable() {
		face = model.ParseFace(st.State)
	}
	parts = append(parts, FaceLabel(face, lang))

	brightness := Label("off", lang)
	if st, ok := store.Lookup(ents.NightLight); ok && st.IsOn() {
		var attrs model.LightAttributes
		_ = st.DecodeAttributes(&attrs)
		brightness = fmt.Sprintf("%d%%", BrightnessPercent(attrs.Brightness))
	}
	parts = append(parts, brightness)

	return strings.Join(parts, " • ")
}

func buildFaceSelector(store stateStore, ents resolver.Entities, lang string) *FaceSelectorSection {
	st, ok := store.Lookup(ents.FaceSelect)
	if !ok {
		return nil
	}
	var attrs model.SelectAttributes
	_ = st.DecodeAttributes(&attrs)

	options := lo.Map(attrs.Options, func(option string, _ int) FaceOption {
		face := model.ParseFace(option)
		return FaceOption{
			Value:    option,
			Icon:     face.Icon(),
			Label:    FaceLabel(face, lang),
			Selected: option == st.State,
		}
	})
	return &FaceSelectorSection{EntityID: ents.FaceSelect, Options: options}
}

func buildControls(store stateStore, ents resolver.Entities) *ControlsSection {
	st, ok := store.Lookup(ents.NightLight)
	if !ok || st.IsUnavailable() {
		return nil
	}
	var attrs model.LightAttributes
	_ = st.DecodeAttributes(&attrs)

	section := &ControlsSection{EntityID: ents.NightLight, On: st.IsOn()}
	if st.IsOn() {
		section.BrightnessPct = BrightnessPercent(attrs.Brightness)
	}
	return section
}

func buildTemperature(cfg config.CardConfig, store stateStore, ents resolver.Entities) *TemperatureSection {
	st, ok := store.Lookup(ents.Temperature)
	if !ok {
		return nil
	}
	var attrs model.SensorAttributes
	_ = st.DecodeAttributes(&attrs)
	unit := attrs.UnitOfMeasurement
	if unit == "" {
		unit = "°C"
	}

	section := &TemperatureSection{
		EntityID:    ents.Temperature,
		Unit:        unit,
		HoursToShow: cfg.HoursToShow,
	}
	// Unavailable still renders, with a literal marker instead of a reading.
	if st.IsUnavailable() {
		section.Unavailable = true
		section.Value = model.StateUnavailable
	} else {
		section.Value = st.State
	}
	return section
}

func buildConnectivity(store stateStore, ents resolver.Entities) *ConnectivitySection {
	st, ok := store.Lookup(ents.Connectivity)
	if !ok || st.IsUnavailable() {
		// Unavailable connectivity suppresses the whole section, signal row
		// included, regardless of the rssi entity's own state.
		return nil
	}

	section := &ConnectivitySection{EntityID: ents.Connectivity, Connected: st.IsOn()}
	if rssi, ok := store.Lookup(ents.SignalStrength); ok && !rssi.IsUnavailable() {
		var attrs model.SensorAttributes
		_ = rssi.DecodeAttributes(&attrs)
		unit := attrs.UnitOfMeasurement
		if unit == "" {
			unit = "dBm"
		}
		section.Signal = &SignalRow{EntityID: ents.SignalStrength, Value: rssi.State, Unit: unit}
	}
	return section
}

func buildAlarms(store stateStore, alarms []model.EntityID) *AlarmSection {
	if len(alarms) == 0 {
		return nil
	}
	lang := store.CurrentLanguage()

	rows := make([]AlarmRow, 0, len(alarms))
	for _, id := range alarms {
		st, ok := store.Lookup(id)
		if !ok || st.IsUnavailable() {
			continue
		}
		var attrs model.AlarmAttributes
		_ = st.DecodeAttributes(&attrs)

		face := model.ParseFace(attrs.Face)
		rows = append(rows, AlarmRow{
			EntityID:      id,
			Time:          st.State,
			Name:          attrs.AlarmName,
			Days:          WeekdayLabels(attrs.DaysIndices, lang),
			Face:          face.String(),
			FaceIcon:      face.Icon(),
			BrightnessPct: BrightnessPercent(attrs.Brightness),
			Volume:        attrs.Volume,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return &AlarmSection{Rows: rows}
}
