// Package jravantest builds JRA-VAN fixed-length records for tests.
package jravantest

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/japanese"
)

// Record lengths, duplicated here so the package has no dependency on the
// decoders it feeds.
const (
	seLen = 555
	srLen = 1272
	umLen = 1609
)

// SE describes a per-horse result record. Numeric fields are written
// zero-padded to their width.
type SE struct {
	Tag         string
	Year        string
	MonthDay    string
	Venue       string
	Kai         int
	Nichi       int
	Race        int
	Wakuban     int
	Umaban      int
	Ketto       string
	Name        string
	Sex         string
	Age         int
	Tozai       string
	TrainerCode string
	TrainerName string
	Futan       string // x10, 3 digits
	JockeyCode  string
	JockeyName  string
	HorseWeight int
	WeightSign  string
	WeightDiff  int
	Finish      int
	Time        string // MSST
	Corners     [4]int
	Odds        string // x10, 4 digits
	Popularity  int
	Last4F      string
	Last3F      string
}

// DefaultSE returns a valid record for 2026-01-24 Nakayama 1-2 R8.
func DefaultSE() SE {
	return SE{
		Tag:         "SE",
		Year:        "2026",
		MonthDay:    "0124",
		Venue:       "06",
		Kai:         1,
		Nichi:       2,
		Race:        8,
		Wakuban:     1,
		Umaban:      1,
		Ketto:       "2021100001",
		Name:        "テストホース",
		Sex:         "1",
		Age:         4,
		Tozai:       "1",
		TrainerCode: "01001",
		TrainerName: "調教師",
		Futan:       "570",
		JockeyCode:  "01234",
		JockeyName:  "騎手",
		HorseWeight: 480,
		WeightSign:  "+",
		WeightDiff:  4,
		Finish:      1,
		Time:        "1345",
		Corners:     [4]int{3, 3, 2, 1},
		Odds:        "0035",
		Popularity:  1,
		Last4F:      "470",
		Last3F:      "345",
	}
}

// Bytes encodes the record.
func (s SE) Bytes() []byte {
	r := newRecord(seLen)
	r.ascii(0, 2, s.Tag)
	r.ascii(11, 4, s.Year)
	r.ascii(15, 4, s.MonthDay)
	r.ascii(19, 2, s.Venue)
	r.num(21, 2, s.Kai)
	r.num(23, 2, s.Nichi)
	r.num(25, 2, s.Race)
	r.num(27, 1, s.Wakuban)
	r.num(28, 2, s.Umaban)
	r.ascii(30, 10, s.Ketto)
	r.text(40, 36, s.Name)
	r.ascii(78, 1, s.Sex)
	r.num(82, 2, s.Age)
	r.ascii(84, 1, s.Tozai)
	r.ascii(85, 5, s.TrainerCode)
	r.text(90, 8, s.TrainerName)
	r.ascii(288, 3, s.Futan)
	r.ascii(296, 5, s.JockeyCode)
	r.text(306, 8, s.JockeyName)
	r.num(324, 3, s.HorseWeight)
	r.ascii(327, 1, s.WeightSign)
	r.num(328, 3, s.WeightDiff)
	r.num(334, 2, s.Finish)
	r.ascii(338, 4, s.Time)
	for i, c := range s.Corners {
		r.num(351+i*2, 2, c)
	}
	r.ascii(359, 4, s.Odds)
	r.num(363, 2, s.Popularity)
	r.ascii(387, 3, s.Last4F)
	r.ascii(390, 3, s.Last3F)
	return r.b
}

// SR describes a race summary record.
type SR struct {
	Tag       string
	Kubun     string
	Year      string
	MonthDay  string
	Venue     string
	Kai       int
	Nichi     int
	Race      int
	Distance  string
	TrackCode string
	Runners   int
	TurfGoing string
	DirtGoing string
	First3F   string
	First4F   string
	Last3F    string
	Last4F    string
}

// DefaultSR returns a confirmed turf summary matching DefaultSE.
func DefaultSR() SR {
	return SR{
		Tag:       "RA",
		Kubun:     "7",
		Year:      "2026",
		MonthDay:  "0124",
		Venue:     "06",
		Kai:       1,
		Nichi:     2,
		Race:      8,
		Distance:  "2000",
		TrackCode: "17",
		Runners:   16,
		TurfGoing: "1",
		DirtGoing: "2",
		First3F:   "360",
		First4F:   "480",
		Last3F:    "345",
		Last4F:    "462",
	}
}

// Bytes encodes the record.
func (s SR) Bytes() []byte {
	r := newRecord(srLen)
	r.ascii(0, 2, s.Tag)
	r.ascii(2, 1, s.Kubun)
	r.ascii(11, 4, s.Year)
	r.ascii(15, 4, s.MonthDay)
	r.ascii(19, 2, s.Venue)
	r.num(21, 2, s.Kai)
	r.num(23, 2, s.Nichi)
	r.num(25, 2, s.Race)
	r.ascii(697, 4, s.Distance)
	r.ascii(705, 2, s.TrackCode)
	r.num(883, 2, s.Runners)
	r.ascii(888, 1, s.TurfGoing)
	r.ascii(889, 1, s.DirtGoing)
	r.ascii(969, 3, s.First3F)
	r.ascii(972, 3, s.First4F)
	r.ascii(975, 3, s.Last3F)
	r.ascii(978, 3, s.Last4F)
	return r.b
}

// UM describes a horse master record.
type UM struct {
	Tag         string
	Ketto       string
	DelKubun    string
	RegDate     string
	DelDate     string
	BirthDate   string
	Name        string
	NameKana    string
	NameEng     string
	Sex         string
	Tozai       string
	TrainerCode string
	TrainerName string
	Breeder     string
	Owner       string
}

// DefaultUM returns an active east-stable horse.
func DefaultUM() UM {
	return UM{
		Tag:         "UM",
		Ketto:       "2021100001",
		DelKubun:    "0",
		RegDate:     "20230601",
		DelDate:     "00000000",
		BirthDate:   "20210315",
		Name:        "テストホース",
		NameKana:    "テストホース",
		NameEng:     "Test Horse",
		Sex:         "1",
		Tozai:       "1",
		TrainerCode: "01001",
		TrainerName: "調教師",
		Breeder:     "テスト牧場",
		Owner:       "テストオーナー",
	}
}

// Bytes encodes the record.
func (u UM) Bytes() []byte {
	r := newRecord(umLen)
	r.ascii(0, 2, u.Tag)
	r.ascii(11, 10, u.Ketto)
	r.ascii(21, 1, u.DelKubun)
	r.ascii(22, 8, u.RegDate)
	r.ascii(30, 8, u.DelDate)
	r.ascii(38, 8, u.BirthDate)
	r.text(46, 36, u.Name)
	r.text(82, 36, u.NameKana)
	r.ascii(118, 60, u.NameEng)
	r.ascii(200, 1, u.Sex)
	r.ascii(849, 1, u.Tozai)
	r.ascii(850, 5, u.TrainerCode)
	r.text(855, 8, u.TrainerName)
	r.text(920, 40, u.Breeder)
	r.text(970, 44, u.Owner)
	return r.b
}

// Join concatenates records into one file body.
func Join(records ...[]byte) []byte {
	var out []byte
	for _, rec := range records {
		out = append(out, rec...)
	}
	return out
}

// WriteDAT writes records to dir/name, creating dir. It returns the path.
func WriteDAT(dir, name string, records ...[]byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Join(records...), 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ShiftJIS encodes s, panicking on characters outside the code page.
func ShiftJIS(s string) []byte {
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jravantest: %q is not Shift-JIS encodable: %v", s, err))
	}
	return b
}

type record struct {
	b []byte
}

func newRecord(n int) *record {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	if n >= 2 {
		b[n-2], b[n-1] = '\r', '\n'
	}
	return &record{b: b}
}

// ascii writes s left-aligned and space-padded. Longer values are cut.
func (r *record) ascii(off, n int, s string) {
	copy(r.b[off:off+n], s)
}

func (r *record) num(off, n, v int) {
	copy(r.b[off:off+n], fmt.Sprintf("%0*d", n, v))
}

// text writes s as Shift-JIS padded with full-width spaces.
func (r *record) text(off, n int, s string) {
	enc := ShiftJIS(s)
	dst := r.b[off : off+n]
	i := copy(dst, enc)
	for ; i+1 < n; i += 2 {
		dst[i], dst[i+1] = 0x81, 0x40
	}
}
