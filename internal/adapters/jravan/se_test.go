package jravan_test

import (
	"errors"
	"testing"

	"github.com/okian/jvrace/internal/adapters/jravan"
	"github.com/okian/jvrace/internal/adapters/jravan/jravantest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeSE(t *testing.T) {
	Convey("Given an SE record", t, func() {
		rec := jravantest.DefaultSE()

		Convey("When it is well formed", func() {
			e, err := jravan.DecodeSE(rec.Bytes(), 0)

			Convey("Then identity fields should be decoded", func() {
				So(err, ShouldBeNil)
				So(e.RaceID, ShouldEqual, "2026012406010208")
				So(e.Date, ShouldEqual, "2026-01-24")
				So(e.VenueCode, ShouldEqual, "06")
				So(e.Kai, ShouldEqual, 1)
				So(e.Nichi, ShouldEqual, 2)
				So(e.RaceNumber, ShouldEqual, 8)
				So(e.KettoNum, ShouldEqual, "2021100001")
			})

			Convey("Then text fields should be decoded from Shift-JIS", func() {
				So(e.HorseName, ShouldEqual, "テストホース")
				So(e.TrainerName, ShouldEqual, "調教師")
				So(e.JockeyName, ShouldEqual, "騎手")
				So(e.SexCode, ShouldEqual, "1")
				So(e.SexName, ShouldEqual, "牡")
				So(e.TrainerCode, ShouldEqual, "01001")
				So(e.JockeyCode, ShouldEqual, "01234")
			})

			Convey("Then numeric and scaled fields should be converted", func() {
				So(e.Wakuban, ShouldEqual, 1)
				So(e.Umaban, ShouldEqual, 1)
				So(e.Age, ShouldEqual, 4)
				So(e.Futan, ShouldEqual, 57.0)
				So(e.Odds, ShouldEqual, 3.5)
				So(e.HorseWeight, ShouldEqual, 480)
				So(e.HorseWeightDiff, ShouldEqual, 4)
				So(e.FinishPosition, ShouldEqual, 1)
				So(e.Popularity, ShouldEqual, 1)
				So(e.Time, ShouldEqual, "1:34.5")
				So(e.Last3F, ShouldEqual, 34.5)
				So(e.Last4F, ShouldEqual, 47.0)
				So(e.Corners, ShouldResemble, []int{3, 3, 2, 1})
			})
		})

		Convey("When the weight change is negative", func() {
			rec.WeightSign = "-"
			rec.WeightDiff = 12
			e, err := jravan.DecodeSE(rec.Bytes(), 0)

			Convey("Then the diff should be signed", func() {
				So(err, ShouldBeNil)
				So(e.HorseWeightDiff, ShouldEqual, -12)
			})
		})

		Convey("When scaled fields are not numeric", func() {
			rec.Futan = "ab5"
			rec.Odds = "    "
			e, err := jravan.DecodeSE(rec.Bytes(), 0)

			Convey("Then they should be zero instead of failing", func() {
				So(err, ShouldBeNil)
				So(e.Futan, ShouldEqual, 0)
				So(e.Odds, ShouldEqual, 0)
			})
		})

		Convey("When the horse missed some corners", func() {
			rec.Corners = [4]int{0, 0, 5, 4}
			e, _ := jravan.DecodeSE(rec.Bytes(), 0)

			Convey("Then only positive positions should be kept", func() {
				So(e.Corners, ShouldResemble, []int{5, 4})
			})
		})

		Convey("When the horse did not finish", func() {
			rec.Corners = [4]int{}
			rec.Time = "    "
			e, _ := jravan.DecodeSE(rec.Bytes(), 0)

			Convey("Then time should be blank and corners empty", func() {
				So(e.Time, ShouldEqual, "")
				So(e.Corners, ShouldNotBeNil)
				So(e.Corners, ShouldBeEmpty)
			})
		})

		Convey("When the record is not at the start of the buffer", func() {
			second := jravantest.DefaultSE()
			second.Umaban = 7
			buf := jravantest.Join(rec.Bytes(), second.Bytes())
			e, err := jravan.DecodeSE(buf, jravan.SERecordLen)

			Convey("Then it should decode from the offset", func() {
				So(err, ShouldBeNil)
				So(e.Umaban, ShouldEqual, 7)
			})
		})
	})
}

func TestDecodeSERejections(t *testing.T) {
	Convey("Given malformed SE records", t, func() {
		rec := jravantest.DefaultSE()

		Convey("When fewer than 555 bytes remain", func() {
			_, err1 := jravan.DecodeSE(rec.Bytes()[:554], 0)
			_, err2 := jravan.DecodeSE(rec.Bytes(), 1)
			_, err3 := jravan.DecodeSE(rec.Bytes(), -1)

			Convey("Then it should be truncated", func() {
				So(errors.Is(err1, jravan.ErrTruncated), ShouldBeTrue)
				So(errors.Is(err2, jravan.ErrTruncated), ShouldBeTrue)
				So(errors.Is(err3, jravan.ErrTruncated), ShouldBeTrue)
			})
		})

		Convey("When the tag is wrong", func() {
			rec.Tag = "RA"
			_, err := jravan.DecodeSE(rec.Bytes(), 0)
			So(errors.Is(err, jravan.ErrRecordType), ShouldBeTrue)
		})

		Convey("When the date is not numeric", func() {
			rec.MonthDay = "01x4"
			_, err := jravan.DecodeSE(rec.Bytes(), 0)
			So(errors.Is(err, jravan.ErrDate), ShouldBeTrue)
		})

		Convey("When the venue is not one of the ten", func() {
			rec.Venue = "42"
			_, err := jravan.DecodeSE(rec.Bytes(), 0)
			So(errors.Is(err, jravan.ErrUnknownVenue), ShouldBeTrue)
			So(jravan.Reason(err), ShouldEqual, "unknown_venue")
		})

		Convey("When the registration number is blank", func() {
			rec.Ketto = ""
			_, err := jravan.DecodeSE(rec.Bytes(), 0)
			So(errors.Is(err, jravan.ErrMissingKey), ShouldBeTrue)
		})

		Convey("When the meeting number carries a sign", func() {
			buf := rec.Bytes()
			copy(buf[21:23], "-1")
			e, err := jravan.DecodeSE(buf, 0)
			So(errors.Is(err, jravan.ErrRaceID), ShouldBeTrue)
			So(jravan.IsSkip(err), ShouldBeTrue)
			So(jravan.Reason(err), ShouldEqual, "race_id")
			So(e.RaceID, ShouldEqual, "")
		})

		Convey("When the race number is blank", func() {
			buf := rec.Bytes()
			copy(buf[25:27], "  ")
			_, err := jravan.DecodeSE(buf, 0)
			So(errors.Is(err, jravan.ErrRaceID), ShouldBeTrue)
		})
	})
}

func TestFormatTime(t *testing.T) {
	Convey("Given packed MSST times", t, func() {
		So(jravan.FormatTime("0583"), ShouldEqual, "58.3")
		So(jravan.FormatTime("1345"), ShouldEqual, "1:34.5")
		So(jravan.FormatTime("2005"), ShouldEqual, "2:00.5")
		So(jravan.FormatTime("0000"), ShouldEqual, "0.0")
		So(jravan.FormatTime(""), ShouldEqual, "")
		So(jravan.FormatTime("    "), ShouldEqual, "")
		So(jravan.FormatTime("12"), ShouldEqual, "")
		So(jravan.FormatTime("1a45"), ShouldEqual, "1a45")
	})
}
