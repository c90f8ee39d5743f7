package resolver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// Entities holds the six fixed identifiers derived from a device id. They are
// pure functions of the id: same input, same output, never mutated in place.
type Entities struct {
	Face           model.EntityID `json:"face"`
	FaceSelect     model.EntityID `json:"face_select"`
	NightLight     model.EntityID `json:"night_light"`
	Temperature    model.EntityID `json:"temperature"`
	Connectivity   model.EntityID `json:"connectivity"`
	SignalStrength model.EntityID `json:"signal_strength"`
}

// Resolve derives the fixed identifier set by template substitution on the
// naming convention {domain}.remi_{device_id}_{suffix}.
func Resolve(deviceID string) Entities {
	id := func(domain, suffix string) model.EntityID {
		return model.EntityID(fmt.Sprintf("%s.remi_%s_%s", domain, deviceID, suffix))
	}
	return Entities{
		Face:           id(model.DomainSensor, "face"),
		FaceSelect:     id(model.DomainSelect, "face"),
		NightLight:     id(model.DomainLight, "night_light"),
		Temperature:    id(model.DomainSensor, "temperature"),
		Connectivity:   id(model.DomainBinarySensor, "connectivity"),
		SignalStrength: id(model.DomainSensor, "rssi"),
	}
}

func (e Entities) All() []model.EntityID {
	return []model.EntityID{e.Face, e.FaceSelect, e.NightLight, e.Temperature, e.Connectivity, e.SignalStrength}
}

// NameSlug normalizes a device name the same way the host does when it builds
// object ids: lowercased, non-alphanumerics collapsed to underscores.
func NameSlug(deviceName string) string {
	return strings.Replace(slug.Make(deviceName), "-", "_", -1)
}

// Alarms scans all known identifiers for alarm-clock time entities matching
// time.{slug(device_name)}_*_time. An unmatched pattern yields an empty list,
// never an error; the result is sorted for stable row order.
func Alarms(ids []model.EntityID, deviceName string) []model.EntityID {
	prefix := model.DomainTime + "." + NameSlug(deviceName) + "_"
	matched := lo.Filter(ids, func(id model.EntityID, _ int) bool {
		return strings.HasPrefix(id.String(), prefix) && strings.HasSuffix(id.String(), "_time")
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
	return matched
}

type idSource interface {
	IDs() []model.EntityID
	Revision() uint64
}

// Resolver memoizes the derived identifiers on (device_id, device_name,
// snapshot revision). Recomputation happens whenever either input changes; it
// never diffs deep equality.
type Resolver struct {
	mu sync.Mutex

	lastDeviceID string
	lastName     string
	lastRevision uint64
	primed       bool

	entities Entities
	alarms   []model.EntityID
}

func New() *Resolver {
	return &Resolver{}
}

// Current returns the memoized identifiers, recomputing when the configured
// device or the snapshot revision moved.
func (r *Resolver) Current(deviceID, deviceName string, source idSource) (Entities, []model.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rev := source.Revision()
	if r.primed && deviceID == r.lastDeviceID && deviceName == r.lastName && rev == r.lastRevision {
		return r.entities, r.alarms
	}

	r.entities = Resolve(deviceID)
	r.alarms = Alarms(source.IDs(), deviceName)
	if len(r.alarms) == 0 {
		// Pattern matching on the display name is brittle: a renamed device
		// silently loses its alarm rows. Surface it in the logs at least.
		zap.L().Debug("no alarm entities matched",
			zap.String("device_name", deviceName),
			zap.String("pattern", model.DomainTime+"."+NameSlug(deviceName)+"_*_time"))
	}
	r.lastDeviceID = deviceID
	r.lastName = deviceName
	r.lastRevision = rev
	r.primed = true
	return r.entities, r.alarms
}
