package sink_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/jvrace/internal/adapters/sink"
	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func race() model.RaceMaster {
	return model.RaceMaster{
		RaceID:     "2026012406010208",
		Date:       "2026-01-24",
		VenueCode:  "06",
		VenueName:  "中山",
		Kai:        1,
		Nichi:      2,
		RaceNumber: 8,
		Entries:    []model.RaceEntry{{Umaban: 1, HorseName: "テスト&ホース", Corners: []int{}}},
		Meta:       model.Meta{DataVersion: model.DataVersion, Source: model.SourceJRAVAN, PreRace: true},
	}
}

func TestRacePath(t *testing.T) {
	Convey("Given a races root", t, func() {
		Convey("When the id is valid", func() {
			p, err := sink.RacePath("/data/races", "2026012406010208")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, filepath.Join("/data/races", "2026", "01", "24", "race_2026012406010208.json"))
		})

		Convey("When the id is not 16 digits", func() {
			_, err := sink.RacePath("/data/races", "20260124")
			So(errors.Is(err, sink.ErrInvalidRaceID), ShouldBeTrue)
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Given a race master", t, func() {
		raw, err := sink.Encode(race())
		So(err, ShouldBeNil)
		out := string(raw)

		Convey("Then non-ASCII and HTML characters should be left as-is", func() {
			So(out, ShouldContainSubstring, `"venue_name": "中山"`)
			So(out, ShouldContainSubstring, `"テスト&ホース"`)
		})

		Convey("Then it should use 2-space indentation and end with a newline", func() {
			So(strings.HasPrefix(out, "{\n  \"race_id\": \"2026012406010208\",\n"), ShouldBeTrue)
			So(strings.HasSuffix(out, "}\n"), ShouldBeTrue)
		})
	})
}

func TestFileSink(t *testing.T) {
	Convey("Given a file sink", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		races := filepath.Join(root, "races")
		masters := filepath.Join(root, "masters")
		s := sink.NewFileSink(races, masters, sink.WithLogger(logger.NewNop()))

		Convey("When a race is written", func() {
			path, err := s.WriteRace(ctx, race())
			So(err, ShouldBeNil)

			Convey("Then the file should hold the encoded document", func() {
				got, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				want, _ := sink.Encode(race())
				So(string(got), ShouldEqual, string(want))
			})

			Convey("Then no temp files should be left behind", func() {
				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})

			Convey("And it is written again with new content", func() {
				rm := race()
				rm.Distance = 2000
				_, err := s.WriteRace(ctx, rm)
				So(err, ShouldBeNil)

				Convey("Then the file should be replaced", func() {
					got, _ := os.ReadFile(path)
					So(string(got), ShouldContainSubstring, `"distance": 2000`)
				})
			})
		})

		Convey("When a race has an invalid id", func() {
			rm := race()
			rm.RaceID = "bogus"
			_, err := s.WriteRace(ctx, rm)
			So(errors.Is(err, sink.ErrInvalidRaceID), ShouldBeTrue)
		})

		Convey("When horse masters and the name index are written", func() {
			hp, err := s.WriteHorse(ctx, model.HorseMaster{KettoNum: "2021100001", Name: "テストホース"})
			So(err, ShouldBeNil)
			ip, err := s.WriteNameIndex(ctx, map[string]string{"ホースB": "2021100002", "ホースA": "2021100001"})
			So(err, ShouldBeNil)

			Convey("Then they should land under the masters root", func() {
				So(hp, ShouldEqual, filepath.Join(masters, "horses", "2021100001.json"))
				So(ip, ShouldEqual, filepath.Join(masters, "horse_name_index.json"))
				raw, err := os.ReadFile(ip)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, "{\n  \"ホースA\": \"2021100001\",\n  \"ホースB\": \"2021100002\"\n}\n")
			})
		})

		Convey("When a horse has no registration number", func() {
			_, err := s.WriteHorse(ctx, model.HorseMaster{Name: "名無し"})
			So(errors.Is(err, sink.ErrMissingKey), ShouldBeTrue)
		})

		Convey("When the name index is nil", func() {
			ip, err := s.WriteNameIndex(ctx, nil)
			So(err, ShouldBeNil)
			raw, _ := os.ReadFile(ip)
			So(string(raw), ShouldEqual, "{}\n")
		})
	})

	Convey("Given a dry-run sink", t, func() {
		root := t.TempDir()
		s := sink.NewFileSink(filepath.Join(root, "races"), filepath.Join(root, "masters"),
			sink.WithDryRun(true), sink.WithLogger(logger.NewNop()))

		Convey("When a race is written", func() {
			path, err := s.WriteRace(context.Background(), race())

			Convey("Then the path should be reported but nothing created", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEndWith, "race_2026012406010208.json")
				_, statErr := os.Stat(filepath.Join(root, "races"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
