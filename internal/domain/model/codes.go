package model

// TrendCategory classifies the pace shape of a race.
type TrendCategory string

// Race trend categories.
const (
	TrendSprintFinish      TrendCategory = "sprint_finish"
	TrendLongSprint        TrendCategory = "long_sprint"
	TrendEvenPace          TrendCategory = "even_pace"
	TrendFrontLoaded       TrendCategory = "front_loaded"
	TrendFrontLoadedStrong TrendCategory = "front_loaded_strong"
)

// Surface is the racing surface.
type Surface string

// Surfaces.
const (
	SurfaceTurf Surface = "turf"
	SurfaceDirt Surface = "dirt"
)

// TrackConditionUnknown is the label used when the condition code is not one
// of the four known values.
const TrackConditionUnknown = "不明"

// Tozai codes.
const (
	TozaiEast = "1"
	TozaiWest = "2"
)

var sexNames = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"1": "牡",
	"2": "牝",
	"3": "セン",
}

var tozaiNames = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	TozaiEast: "美浦",
	TozaiWest: "栗東",
}

var trackConditions = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"1": "良",
	"2": "稍重",
	"3": "重",
	"4": "不良",
}

// SexName returns the display name for a sex code, or "" if unknown.
func SexName(code string) string {
	return sexNames[code]
}

// TozaiName returns the stable region name for a tozai code, or "" if unknown.
func TozaiName(code string) string {
	return tozaiNames[code]
}

// TrackConditionName maps a going code to its label. Unknown codes map to
// TrackConditionUnknown.
func TrackConditionName(code string) string {
	if name, ok := trackConditions[code]; ok {
		return name
	}
	return TrackConditionUnknown
}
