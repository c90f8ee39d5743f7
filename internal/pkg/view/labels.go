package view

import (
	"strings"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// Shipped translations. The host supplies a language hint; anything we don't
// carry falls back to English.
var translations = map[string]map[string]string{
	"en": {
		"face.sleeping": "Sleeping",
		"face.awake":    "Awake",
		"face.happy":    "Happy",
		"face.sad":      "Sad",
		"face.angry":    "Angry",
		"face.neutral":  "Neutral",
		"face.unknown":  "Unknown",
		"off":           "off",
		"no_repeat":     "Once",
	},
	"fr": {
		"face.sleeping": "Endormi",
		"face.awake":    "Réveillé",
		"face.happy":    "Content",
		"face.sad":      "Triste",
		"face.angry":    "Fâché",
		"face.neutral":  "Neutre",
		"face.unknown":  "Inconnu",
		"off":           "éteint",
		"no_repeat":     "Une fois",
	},
}

// Weekday abbreviations indexed 0=Monday .. 6=Sunday.
var weekdays = map[string][7]string{
	"en": {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	"fr": {"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"},
}

func Label(key, lang string) string {
	if m, ok := translations[lang]; ok {
		if label, ok := m[key]; ok {
			return label
		}
	}
	return translations["en"][key]
}

func FaceLabel(face model.Face, lang string) string {
	label := Label("face."+face.String(), lang)
	if label == "" {
		label = Label("face.unknown", lang)
	}
	return label
}

// WeekdayLabels renders days_indices as abbreviated weekday names in index
// order. An empty list means the alarm does not repeat.
func WeekdayLabels(indices []int, lang string) string {
	names, ok := weekdays[lang]
	if !ok {
		names = weekdays["en"]
	}
	labels := make([]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i > 6 {
			continue
		}
		labels = append(labels, names[i])
	}
	if len(labels) == 0 {
		return Label("no_repeat", lang)
	}
	return strings.Join(labels, ", ")
}
