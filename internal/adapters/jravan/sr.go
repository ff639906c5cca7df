package jravan

import (
	"fmt"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/internal/domain/pace"
	"github.com/okian/jvrace/internal/domain/raceid"
)

// SR record layout and validation bounds.
const (
	SRRecordLen   = 1272
	srTag         = "RA"
	srConfirmed   = '7'
	srKubunOffset = 2
	minDistance   = 800
	maxDistance   = 4000
	min3F, max3F  = 30.0, 50.0
	min4F, max4F  = 40.0, 70.0
	turfTrackLead = '1'
	dirtTrackLead = '2'
)

var ( //nolint:gochecknoglobals // fixed record layout
	srTagField  = field{0, 2}
	srYear      = field{11, 4}
	srMonthDay  = field{15, 4}
	srVenue     = field{19, 2}
	srKai       = field{21, 2}
	srNichi     = field{23, 2}
	srRace      = field{25, 2}
	srDistance  = field{697, 4}
	srTrackCode = field{705, 2}
	srRunners   = field{883, 2}
	srTurfGoing = field{888, 1}
	srDirtGoing = field{889, 1}
	srFirst3F   = field{969, 3}
	srFirst4F   = field{972, 3}
	srLast3F    = field{975, 3}
	srLast4F    = field{978, 3}
)

// DecodeSR decodes a confirmed race summary record starting at offset and
// derives its RPCI and trend. Rejections wrap ErrSkip.
func DecodeSR(buf []byte, offset int) (model.SrSummary, error) {
	if offset < 0 || len(buf)-offset < SRRecordLen {
		return model.SrSummary{}, ErrTruncated
	}
	rec := buf[offset : offset+SRRecordLen]

	if string(srTagField.bytes(rec)) != srTag {
		return model.SrSummary{}, ErrRecordType
	}
	if rec[srKubunOffset] != srConfirmed {
		return model.SrSummary{}, ErrUnconfirmed
	}

	year, okY := srYear.digits(rec)
	md, okMD := srMonthDay.digits(rec)
	if !okY || !okMD {
		return model.SrSummary{}, ErrDate
	}

	venue := srVenue.ascii(rec)
	venueName, ok := raceid.VenueName(venue)
	if !ok {
		return model.SrSummary{}, fmt.Errorf("%w: %q", ErrUnknownVenue, venue)
	}

	dist, ok := srDistance.digits(rec)
	distance := atoi(dist)
	if !ok || distance < minDistance || distance > maxDistance {
		return model.SrSummary{}, fmt.Errorf("%w: %q", ErrDistance, string(srDistance.bytes(rec)))
	}

	trackCode := srTrackCode.ascii(rec)
	var surface model.Surface
	var going string
	switch {
	case trackCode != "" && trackCode[0] == turfTrackLead:
		surface = model.SurfaceTurf
		going = srTurfGoing.ascii(rec)
	case trackCode != "" && trackCode[0] == dirtTrackLead:
		surface = model.SurfaceDirt
		going = srDirtGoing.ascii(rec)
	default:
		return model.SrSummary{}, fmt.Errorf("%w: %q", ErrSurface, trackCode)
	}

	first3F, ok1 := srFirst3F.paceTime(rec)
	last3F, ok2 := srLast3F.paceTime(rec)
	if !ok1 || !ok2 || !inRange(first3F, min3F, max3F) || !inRange(last3F, min3F, max3F) {
		return model.SrSummary{}, ErrPaceTime
	}
	first4F := optionalPace(srFirst4F, rec)
	last4F := optionalPace(srLast4F, rec)

	kai, okK := srKai.digits(rec)
	nichi, okN := srNichi.digits(rec)
	race, okR := srRace.digits(rec)
	if !okK || !okN || !okR {
		return model.SrSummary{}, fmt.Errorf("%w: %q", ErrRaceID, string(rec[srKai.off:srRace.off+srRace.n]))
	}

	id := raceid.Fields{
		Year:       atoi(year),
		Month:      atoi(md[0:2]),
		Day:        atoi(md[2:4]),
		VenueCode:  venue,
		Kai:        atoi(kai),
		Nichi:      atoi(nichi),
		RaceNumber: atoi(race),
	}

	rpci, _ := pace.ComputeRPCI(first3F, last3F) // 3F bounds guarantee a positive sum
	return model.SrSummary{
		RaceID:     id.ID(),
		Date:       id.Date(),
		VenueCode:  venue,
		VenueName:  venueName,
		Kai:        id.Kai,
		Nichi:      id.Nichi,
		RaceNumber: id.RaceNumber,
		Distance:   distance,
		TrackType:  surface,
		TrackCode:  trackCode,
		BabaCode:   going,
		BabaName:   model.TrackConditionName(going),
		NumRunners: srRunners.num(rec),
		First3F:    first3F,
		First4F:    first4F,
		Last3F:     last3F,
		Last4F:     last4F,
		RPCI:       rpci,
		Trend:      pace.ClassifyTrend(rpci, last3F, first4F, last4F),
	}, nil
}

// optionalPace returns nil for a malformed or out-of-range 4F sectional.
func optionalPace(f field, rec []byte) *float64 {
	v, ok := f.paceTime(rec)
	if !ok || !inRange(v, min4F, max4F) {
		return nil
	}
	return &v
}
