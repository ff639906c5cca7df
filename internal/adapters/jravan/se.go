package jravan

import (
	"fmt"
	"strings"

	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/internal/domain/raceid"
)

// SE record layout.
const (
	SERecordLen = 555
	seTag       = "SE"
	cornerCount = 4
)

var ( //nolint:gochecknoglobals // fixed record layout
	seTagField      = field{0, 2}
	seYear          = field{11, 4}
	seMonthDay      = field{15, 4}
	seVenue         = field{19, 2}
	seKai           = field{21, 2}
	seNichi         = field{23, 2}
	seRace          = field{25, 2}
	seWakuban       = field{27, 1}
	seUmaban        = field{28, 2}
	seKetto         = field{30, 10}
	seHorseName     = field{40, 36}
	seSex           = field{78, 1}
	seAge           = field{82, 2}
	seTozai         = field{84, 1}
	seTrainerCode   = field{85, 5}
	seTrainerName   = field{90, 8}
	seFutan         = field{288, 3}
	seJockeyCode    = field{296, 5}
	seJockeyName    = field{306, 8}
	seHorseWeight   = field{324, 3}
	seWeightSign    = field{327, 1}
	seWeightDiff    = field{328, 3}
	seFinish        = field{334, 2}
	seTime          = field{338, 4}
	seCornersOffset = 351
	seOdds          = field{359, 4}
	sePopularity    = field{363, 2}
	seLast4F        = field{387, 3}
	seLast3F        = field{390, 3}
)

// DecodeSE decodes the per-horse result record starting at offset.
// Rejections wrap ErrSkip.
func DecodeSE(buf []byte, offset int) (model.SeEntry, error) {
	if offset < 0 || len(buf)-offset < SERecordLen {
		return model.SeEntry{}, ErrTruncated
	}
	rec := buf[offset : offset+SERecordLen]

	if string(seTagField.bytes(rec)) != seTag {
		return model.SeEntry{}, ErrRecordType
	}

	year, okY := seYear.digits(rec)
	md, okMD := seMonthDay.digits(rec)
	if !okY || !okMD {
		return model.SeEntry{}, ErrDate
	}

	venue := seVenue.ascii(rec)
	if _, ok := raceid.VenueName(venue); !ok {
		return model.SeEntry{}, fmt.Errorf("%w: %q", ErrUnknownVenue, venue)
	}

	ketto := seKetto.text(rec)
	if ketto == "" {
		return model.SeEntry{}, ErrMissingKey
	}

	kai, okK := seKai.digits(rec)
	nichi, okN := seNichi.digits(rec)
	race, okR := seRace.digits(rec)
	if !okK || !okN || !okR {
		return model.SeEntry{}, fmt.Errorf("%w: %q", ErrRaceID, string(rec[seKai.off:seRace.off+seRace.n]))
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

	diff := seWeightDiff.num(rec)
	if seWeightSign.ascii(rec) == "-" {
		diff = -diff
	}

	sex := seSex.text(rec)
	return model.SeEntry{
		RaceID:          id.ID(),
		Date:            id.Date(),
		VenueCode:       venue,
		Kai:             id.Kai,
		Nichi:           id.Nichi,
		RaceNumber:      id.RaceNumber,
		Wakuban:         seWakuban.num(rec),
		Umaban:          seUmaban.num(rec),
		KettoNum:        ketto,
		HorseName:       seHorseName.text(rec),
		SexCode:         sex,
		SexName:         model.SexName(sex),
		Age:             seAge.num(rec),
		Tozai:           seTozai.text(rec),
		TrainerCode:     seTrainerCode.text(rec),
		TrainerName:     seTrainerName.text(rec),
		JockeyCode:      seJockeyCode.text(rec),
		JockeyName:      seJockeyName.text(rec),
		Futan:           seFutan.tenths(rec),
		HorseWeight:     seHorseWeight.num(rec),
		HorseWeightDiff: diff,
		FinishPosition:  seFinish.num(rec),
		Time:            FormatTime(seTime.text(rec)),
		Last3F:          seLast3F.tenths(rec),
		Last4F:          seLast4F.tenths(rec),
		Odds:            seOdds.tenths(rec),
		Popularity:      sePopularity.num(rec),
		Corners:         corners(rec),
	}, nil
}

func corners(rec []byte) []int {
	out := make([]int, 0, cornerCount)
	for i := 0; i < cornerCount; i++ {
		if c := (field{seCornersOffset + i*2, 2}).num(rec); c > 0 {
			out = append(out, c)
		}
	}
	return out
}

// FormatTime renders a packed MSST elapsed time as m:ss.t, dropping the
// minute when it is zero ("0583" is "58.3", "1345" is "1:34.5"). Blank or
// short input yields "" and anything non-numeric is returned as-is.
func FormatTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 {
		return ""
	}
	if len(raw) != 4 || !isDigits(raw) {
		return raw
	}
	m := int(raw[0] - '0')
	s := atoi(raw[1:3])
	t := int(raw[3] - '0')
	if m == 0 {
		return fmt.Sprintf("%d.%d", s, t)
	}
	return fmt.Sprintf("%d:%02d.%d", m, s, t)
}

// atoi parses a string already checked to be digits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
