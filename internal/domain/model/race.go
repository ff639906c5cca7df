// Package model contains domain models passed between layers.
package model

// SeEntry is one horse's decoded result row for one race.
type SeEntry struct {
	Seq uint64 // scan order, see Sequence

	RaceID     string
	Date       string // YYYY-MM-DD
	VenueCode  string
	Kai        int
	Nichi      int
	RaceNumber int

	Wakuban   int
	Umaban    int
	KettoNum  string
	HorseName string
	SexCode   string
	SexName   string
	Age       int
	Tozai     string

	TrainerCode string
	TrainerName string
	JockeyCode  string
	JockeyName  string

	Futan           float64 // kg
	HorseWeight     int
	HorseWeightDiff int
	FinishPosition  int
	Time            string // m:ss.t
	Last3F          float64
	Last4F          float64
	Odds            float64
	Popularity      int
	Corners         []int
}

// RaceEntry converts the decoded row into its output form.
func (e *SeEntry) RaceEntry() RaceEntry {
	corners := make([]int, len(e.Corners))
	copy(corners, e.Corners)
	return RaceEntry{
		Umaban:          e.Umaban,
		Wakuban:         e.Wakuban,
		KettoNum:        e.KettoNum,
		HorseName:       e.HorseName,
		SexCode:         e.SexCode,
		Age:             e.Age,
		JockeyName:      e.JockeyName,
		TrainerName:     e.TrainerName,
		Futan:           e.Futan,
		HorseWeight:     e.HorseWeight,
		HorseWeightDiff: e.HorseWeightDiff,
		FinishPosition:  e.FinishPosition,
		Time:            e.Time,
		Last3F:          e.Last3F,
		Last4F:          e.Last4F,
		Odds:            e.Odds,
		Popularity:      e.Popularity,
		Corners:         corners,
		JockeyCode:      e.JockeyCode,
		TrainerCode:     e.TrainerCode,
	}
}

// SrSummary is the confirmed race-level summary decoded from an SR record.
type SrSummary struct {
	Seq uint64

	RaceID     string
	Date       string
	VenueCode  string
	VenueName  string
	Kai        int
	Nichi      int
	RaceNumber int

	Distance   int
	TrackType  Surface
	TrackCode  string
	BabaCode   string
	BabaName   string
	NumRunners int
	First3F    float64
	First4F    *float64
	Last3F     float64
	Last4F     *float64
	RPCI       float64
	Trend      TrendCategory
}

// Pace builds the output pace block.
func (s *SrSummary) Pace() *RacePace {
	return &RacePace{
		S3:        s.First3F,
		S4:        s.First4F,
		L3:        s.Last3F,
		L4:        s.Last4F,
		RPCI:      s.RPCI,
		RaceTrend: s.Trend,
	}
}

// RaceEntry is one runner inside a RaceMaster document.
type RaceEntry struct {
	Umaban          int     `json:"umaban"`
	Wakuban         int     `json:"wakuban"`
	KettoNum        string  `json:"ketto_num"`
	HorseName       string  `json:"horse_name"`
	SexCode         string  `json:"sex_cd"`
	Age             int     `json:"age"`
	JockeyName      string  `json:"jockey_name"`
	TrainerName     string  `json:"trainer_name"`
	Futan           float64 `json:"futan"`
	HorseWeight     int     `json:"horse_weight"`
	HorseWeightDiff int     `json:"horse_weight_diff"`
	FinishPosition  int     `json:"finish_position"`
	Time            string  `json:"time"`
	Last3F          float64 `json:"last_3f"`
	Last4F          float64 `json:"last_4f"`
	Odds            float64 `json:"odds"`
	Popularity      int     `json:"popularity"`
	Corners         []int   `json:"corners"`
	JockeyCode      string  `json:"jockey_code"`
	TrainerCode     string  `json:"trainer_code"`
}

// RacePace holds the split times and derived pace figures.
type RacePace struct {
	S3        float64       `json:"s3"`
	S4        *float64      `json:"s4"`
	L3        float64       `json:"l3"`
	L4        *float64      `json:"l4"`
	RPCI      float64       `json:"rpci"`
	RaceTrend TrendCategory `json:"race_trend"`
}

// Meta describes how a document was produced.
type Meta struct {
	DataVersion string `json:"data_version"`
	Source      string `json:"source"`
	CreatedAt   string `json:"created_at"`
	PreRace     bool   `json:"pre_race"`
}

// Meta constants.
const (
	DataVersion     = "4.0"
	SourceJRAVAN    = "jravan"
	CreatedAtLayout = "2006-01-02T15:04:05"
)

// RaceMaster is the canonical per-race JSON document.
type RaceMaster struct {
	RaceID         string      `json:"race_id"`
	Date           string      `json:"date"`
	VenueCode      string      `json:"venue_code"`
	VenueName      string      `json:"venue_name"`
	Kai            int         `json:"kai"`
	Nichi          int         `json:"nichi"`
	RaceNumber     int         `json:"race_number"`
	Distance       int         `json:"distance"`
	TrackType      Surface     `json:"track_type"`
	TrackCondition string      `json:"track_condition"`
	NumRunners     int         `json:"num_runners"`
	Pace           *RacePace   `json:"pace"`
	Entries        []RaceEntry `json:"entries"`
	Meta           Meta        `json:"meta"`
}

// Sequence packs a file index and a record index into a single ordering key.
// Records from earlier files, and earlier within a file, sort first.
func Sequence(fileIdx, recIdx int) uint64 {
	return uint64(uint32(fileIdx))<<32 | uint64(uint32(recIdx)) //nolint:gosec // indices are non-negative and bounded
}
