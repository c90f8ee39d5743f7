package model

// Face is the mood/expression shown on the device, mirrored by the face sensor
// and face select entities.
type Face string

const (
	FaceSleeping Face = "sleeping"
	FaceAwake    Face = "awake"
	FaceHappy    Face = "happy"
	FaceSad      Face = "sad"
	FaceAngry    Face = "angry"
	FaceNeutral  Face = "neutral"
	FaceUnknown  Face = "unknown"
)

func (f Face) String() string {
	return string(f)
}

var faceIcons = map[Face]string{
	FaceSleeping: "mdi:sleep",
	FaceAwake:    "mdi:weather-sunny",
	FaceHappy:    "mdi:emoticon-happy-outline",
	FaceSad:      "mdi:emoticon-sad-outline",
	FaceAngry:    "mdi:emoticon-angry-outline",
	FaceNeutral:  "mdi:emoticon-neutral-outline",
}

// Icon returns the mdi icon for a face, falling back to a question mark for
// values outside the known set.
func (f Face) Icon() string {
	if icon, ok := faceIcons[f]; ok {
		return icon
	}
	return "mdi:help-circle-outline"
}

// ParseFace maps an entity state string onto the face enum. Anything outside
// the known set, including the sentinel states, collapses to FaceUnknown.
func ParseFace(state string) Face {
	f := Face(state)
	if _, ok := faceIcons[f]; ok {
		return f
	}
	return FaceUnknown
}
