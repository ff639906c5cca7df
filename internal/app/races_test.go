package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/okian/jvrace/internal/adapters/catalog"
	"github.com/okian/jvrace/internal/adapters/jravan"
	"github.com/okian/jvrace/internal/adapters/jravan/jravantest"
	"github.com/okian/jvrace/internal/adapters/repository"
	"github.com/okian/jvrace/internal/adapters/sink"
	service "github.com/okian/jvrace/internal/app"
	"github.com/okian/jvrace/internal/domain/model"
	"github.com/okian/jvrace/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	fullRaceID = "2026012406010208"
	preRaceID  = "2026012506010301"
)

var fixedClock = func() time.Time { return time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC) }

// writeRaceTree lays out one season: race R8 on 01-24 with a summary that is
// revised in a later SR file, and a 01-25 race with entries only.
func writeRaceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "2026")

	first := jravantest.DefaultSE()
	second := jravantest.DefaultSE()
	second.Umaban = 2
	second.Wakuban = 2
	second.Ketto = "2021100002"
	second.Finish = 2
	pre := jravantest.DefaultSE()
	pre.MonthDay = "0125"
	pre.Nichi = 3
	pre.Race = 1

	revised := jravantest.DefaultSR()
	revised.Last3F = "340"

	must := func(_ string, err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(jravantest.WriteDAT(dir, "SU001.DAT", second.Bytes(), pre.Bytes()))
	must(jravantest.WriteDAT(dir, "SU002.DAT", first.Bytes()))
	must(jravantest.WriteDAT(dir, "SR001.DAT", jravantest.DefaultSR().Bytes()))
	must(jravantest.WriteDAT(dir, "SR002.DAT", revised.Bytes()))
	return root
}

func newBuilder(root, out string, opts ...service.Option) *service.RaceMasterBuilder {
	w := sink.NewFileSink(filepath.Join(out, "races"), filepath.Join(out, "masters"), sink.WithLogger(logger.NewNop()))
	opts = append([]service.Option{service.WithLogger(logger.NewNop()), service.WithClock(fixedClock)}, opts...)
	return service.NewRaceMasterBuilder(service.NewSources(root, root, root), w, opts...)
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[rel] = string(raw)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

type failingWriter struct{ calls int }

func (f *failingWriter) WriteRace(context.Context, model.RaceMaster) (string, error) {
	f.calls++
	return "", errors.New("disk full")
}

func (f *failingWriter) WriteHorse(context.Context, model.HorseMaster) (string, error) {
	f.calls++
	return "", errors.New("disk full")
}

func (f *failingWriter) WriteNameIndex(context.Context, map[string]string) (string, error) {
	f.calls++
	return "", errors.New("disk full")
}

func TestMerge(t *testing.T) {
	Convey("Given a race master builder", t, func() {
		ctx := context.Background()
		b := newBuilder(t.TempDir(), t.TempDir())
		entries := []model.SeEntry{
			{Seq: 2, RaceID: fullRaceID, Umaban: 3, HorseName: "C"},
			{Seq: 1, RaceID: fullRaceID, Umaban: 1, HorseName: "A"},
			{Seq: 0, RaceID: fullRaceID, Umaban: 3, HorseName: "B"},
		}

		Convey("When there are no entries", func() {
			_, ok := b.Merge(ctx, fullRaceID, nil, nil)

			Convey("Then no document should be produced", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When no summary exists", func() {
			rm, ok := b.Merge(ctx, preRaceID, entries, repository.NewSummaryIndex())

			Convey("Then identity should come from the race id", func() {
				So(ok, ShouldBeTrue)
				So(rm.Meta.PreRace, ShouldBeTrue)
				So(rm.Pace, ShouldBeNil)
				So(rm.Date, ShouldEqual, "2026-01-25")
				So(rm.VenueCode, ShouldEqual, "06")
				So(rm.VenueName, ShouldEqual, "中山")
				So(rm.Kai, ShouldEqual, 1)
				So(rm.Nichi, ShouldEqual, 3)
				So(rm.RaceNumber, ShouldEqual, 1)
				So(rm.Distance, ShouldEqual, 0)
				So(rm.TrackType, ShouldEqual, model.Surface(""))
				So(rm.TrackCondition, ShouldEqual, "")
				So(rm.Meta.CreatedAt, ShouldEqual, "2026-01-25T09:00:00")
				So(rm.Meta.DataVersion, ShouldEqual, model.DataVersion)
				So(rm.Meta.Source, ShouldEqual, model.SourceJRAVAN)
			})

			Convey("Then entries should be ordered by horse number then sequence", func() {
				So(rm.NumRunners, ShouldEqual, 3)
				So(rm.Entries[0].HorseName, ShouldEqual, "A")
				So(rm.Entries[1].HorseName, ShouldEqual, "B")
				So(rm.Entries[2].HorseName, ShouldEqual, "C")
			})

			Convey("Then the input slice should be left untouched", func() {
				So(entries[0].HorseName, ShouldEqual, "C")
			})
		})

		Convey("When a summary exists", func() {
			f4 := 48.0
			index := repository.NewSummaryIndex()
			_, err := index.Put(ctx, model.SrSummary{
				RaceID:     fullRaceID,
				Date:       "2026-01-24",
				VenueCode:  "06",
				VenueName:  "中山",
				Kai:        1,
				Nichi:      2,
				RaceNumber: 8,
				Distance:   2000,
				TrackType:  model.SurfaceTurf,
				BabaName:   "良",
				First3F:    36.0,
				First4F:    &f4,
				Last3F:     34.5,
				RPCI:       51.1,
				Trend:      model.TrendSprintFinish,
			})
			So(err, ShouldBeNil)
			rm, ok := b.Merge(ctx, fullRaceID, entries, index)

			Convey("Then race metadata and pace should come from it", func() {
				So(ok, ShouldBeTrue)
				So(rm.Meta.PreRace, ShouldBeFalse)
				So(rm.Distance, ShouldEqual, 2000)
				So(rm.TrackType, ShouldEqual, model.SurfaceTurf)
				So(rm.TrackCondition, ShouldEqual, "良")
				So(rm.Pace, ShouldNotBeNil)
				So(rm.Pace.RPCI, ShouldEqual, 51.1)
				So(*rm.Pace.S4, ShouldEqual, 48.0)
				So(rm.Pace.L4, ShouldBeNil)
				So(rm.Pace.RaceTrend, ShouldEqual, model.TrendSprintFinish)
			})
		})
	})
}

func TestScanAndIndex(t *testing.T) {
	Convey("Given a season on disk", t, func() {
		ctx := context.Background()
		root := writeRaceTree(t)
		b := newBuilder(root, t.TempDir())
		sel := service.Selection{Years: []int{2026}}

		Convey("When the SR records are indexed", func() {
			index, err := b.BuildIndex(ctx, b.ScanSR(ctx, sel))

			Convey("Then the later summary should win", func() {
				So(err, ShouldBeNil)
				So(index.Count(ctx), ShouldEqual, 1)
				s, err := index.Get(ctx, fullRaceID)
				So(err, ShouldBeNil)
				So(s.Last3F, ShouldEqual, 34.0)
			})
		})

		Convey("When the SE records are grouped", func() {
			groups, err := b.GroupByRace(ctx, b.ScanSE(ctx, sel))

			Convey("Then entries should be grouped by race and ordered by horse number", func() {
				So(err, ShouldBeNil)
				So(groups.RaceIDs(ctx), ShouldResemble, []string{fullRaceID, preRaceID})
				full, err := groups.Entries(ctx, fullRaceID)
				So(err, ShouldBeNil)
				So(len(full), ShouldEqual, 2)
				So(full[0].Umaban, ShouldEqual, 1)
				So(full[1].Umaban, ShouldEqual, 2)
				So(full[0].Seq, ShouldBeGreaterThan, full[1].Seq)
				pre, err := groups.Entries(ctx, preRaceID)
				So(err, ShouldBeNil)
				So(len(pre), ShouldEqual, 1)
			})
		})

		Convey("When a scan is ranged twice", func() {
			seq := b.ScanSE(ctx, sel)
			count := func() int {
				n := 0
				for _, err := range seq {
					So(err, ShouldBeNil)
					n++
				}
				return n
			}

			Convey("Then both passes should yield every record", func() {
				So(count(), ShouldEqual, 3)
				So(count(), ShouldEqual, 3)
			})
		})

		Convey("When the scan is limited to one date", func() {
			groups, err := b.GroupByRace(ctx, b.ScanSE(ctx, service.Selection{Date: "2026-01-25"}))

			Convey("Then only that date's races should be read", func() {
				So(err, ShouldBeNil)
				So(groups.RaceIDs(ctx), ShouldResemble, []string{preRaceID})
			})
		})

		Convey("When the source root is missing", func() {
			missing := newBuilder(filepath.Join(root, "nope"), t.TempDir())
			var errs []error
			for _, err := range missing.ScanSE(ctx, sel) {
				errs = append(errs, err)
			}

			Convey("Then the listing error should be the only element", func() {
				So(len(errs), ShouldEqual, 1)
				So(errors.Is(errs[0], jravan.ErrSourceRoot), ShouldBeTrue)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a season on disk", t, func() {
		ctx := context.Background()
		root := writeRaceTree(t)

		Convey("When a full run completes", func() {
			out := t.TempDir()
			rep, err := newBuilder(root, out).Run(ctx, service.ModeFull{Years: []int{2026}})

			Convey("Then every race should be written", func() {
				So(err, ShouldBeNil)
				So(rep.Mode, ShouldEqual, "full")
				So(rep.RunID, ShouldNotBeEmpty)
				So(rep.SE.Decoded, ShouldEqual, 3)
				So(rep.SR.Decoded, ShouldEqual, 2)
				So(rep.RacesMerged, ShouldEqual, 2)
				So(rep.RacesPreRace, ShouldEqual, 1)
				So(rep.RacesWritten, ShouldEqual, 2)
				So(rep.WriteErrors, ShouldEqual, 0)

				files := readTree(t, filepath.Join(out, "races"))
				So(files, ShouldContainKey, filepath.Join("2026", "01", "24", "race_"+fullRaceID+".json"))
				So(files, ShouldContainKey, filepath.Join("2026", "01", "25", "race_"+preRaceID+".json"))
			})

			Convey("And it is repeated", func() {
				first := readTree(t, out)
				_, err := newBuilder(root, out).Run(ctx, service.ModeFull{Years: []int{2026}})

				Convey("Then the output should be unchanged", func() {
					So(err, ShouldBeNil)
					So(readTree(t, out), ShouldResemble, first)
				})
			})
		})

		Convey("When full and incremental runs cover the same date", func() {
			fullOut, incOut := t.TempDir(), t.TempDir()
			_, err := newBuilder(root, fullOut).Run(ctx, service.ModeFull{Years: []int{2026}})
			So(err, ShouldBeNil)
			rep, err := newBuilder(root, incOut).Run(ctx, service.ModeIncremental{Date: "2026-01-24"})
			So(err, ShouldBeNil)

			Convey("Then the race document should be byte-identical", func() {
				rel := filepath.Join("races", "2026", "01", "24", "race_"+fullRaceID+".json")
				full := readTree(t, fullOut)
				inc := readTree(t, incOut)
				So(len(inc), ShouldEqual, 1)
				So(inc[rel], ShouldEqual, full[rel])
				So(rep.SE.Filtered, ShouldEqual, 1)
				So(rep.RacesPreRace, ShouldEqual, 0)
			})
		})

		Convey("When files are decoded in parallel", func() {
			seqOut, parOut := t.TempDir(), t.TempDir()
			_, err := newBuilder(root, seqOut).Run(ctx, service.ModeFull{Years: []int{2026}})
			So(err, ShouldBeNil)
			rep, err := newBuilder(root, parOut, service.WithWorkers(4)).Run(ctx, service.ModeFull{Years: []int{2026}})
			So(err, ShouldBeNil)

			Convey("Then the output should match the sequential run", func() {
				So(rep.SE.Decoded, ShouldEqual, 3)
				So(readTree(t, parOut), ShouldResemble, readTree(t, seqOut))
			})
		})

		Convey("When the source root is missing", func() {
			out := t.TempDir()
			_, err := newBuilder(filepath.Join(root, "nope"), out).Run(ctx, service.ModeFull{Years: []int{2026}})

			Convey("Then the run should abort before writing", func() {
				So(errors.Is(err, jravan.ErrSourceRoot), ShouldBeTrue)
				So(readTree(t, out), ShouldBeEmpty)
			})
		})

		Convey("When an SE file carries a signed meeting number", func() {
			bad := jravantest.DefaultSE().Bytes()
			copy(bad[21:23], "-1")
			if _, err := jravantest.WriteDAT(filepath.Join(root, "2026"), "SU003.DAT", bad); err != nil {
				t.Fatal(err)
			}
			out := t.TempDir()
			rep, err := newBuilder(root, out).Run(ctx, service.ModeFull{Years: []int{2026}})

			Convey("Then the record should be skipped and the run should succeed", func() {
				So(err, ShouldBeNil)
				So(rep.SE.Decoded, ShouldEqual, 3)
				So(rep.SE.Skipped["race_id"], ShouldEqual, 1)
				So(rep.RacesWritten, ShouldEqual, 2)
				So(rep.WriteErrors, ShouldEqual, 0)
			})
		})

		Convey("When every write fails", func() {
			w := &failingWriter{}
			b := service.NewRaceMasterBuilder(service.NewSources(root, root, root), w,
				service.WithLogger(logger.NewNop()), service.WithClock(fixedClock))
			rep, err := b.Run(ctx, service.ModeFull{Years: []int{2026}})

			Convey("Then failures should be counted without aborting", func() {
				So(err, ShouldBeNil)
				So(w.calls, ShouldEqual, 2)
				So(rep.WriteErrors, ShouldEqual, 2)
				So(rep.RacesWritten, ShouldEqual, 0)
			})
		})

		Convey("When a catalog is attached", func() {
			cat, err := catalog.OpenSQLite(ctx, filepath.Join(t.TempDir(), "index.db"))
			So(err, ShouldBeNil)
			defer cat.Close()
			rep, err := newBuilder(root, t.TempDir(), service.WithCatalog(cat)).Run(ctx, service.ModeFull{Years: []int{2026}})
			So(err, ShouldBeNil)

			Convey("Then written races and the run should be recorded", func() {
				ids, err := cat.RacesOn(ctx, "2026-01-24")
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{fullRaceID})

				run, err := cat.Run(ctx, rep.RunID)
				So(err, ShouldBeNil)
				So(run.RacesWritten, ShouldEqual, 2)
				So(run.Mode, ShouldEqual, "full")
			})
		})

		Convey("When the mode is invalid", func() {
			b := newBuilder(root, t.TempDir())
			_, noYears := b.Run(ctx, service.ModeFull{})
			_, badDate := b.Run(ctx, service.ModeIncremental{Date: "2026/01/24"})
			_, noSink := service.NewRaceMasterBuilder(service.NewSources(root, root, root), nil).
				Run(ctx, service.ModeFull{Years: []int{2026}})

			Convey("Then it should be rejected up front", func() {
				So(errors.Is(noYears, service.ErrNoYears), ShouldBeTrue)
				So(errors.Is(badDate, service.ErrInvalidDate), ShouldBeTrue)
				So(errors.Is(noSink, service.ErrNilSink), ShouldBeTrue)
			})
		})
	})
}

func TestParseYears(t *testing.T) {
	Convey("Given year selections", t, func() {
		Convey("When they are valid", func() {
			single, err1 := service.ParseYears("2024")
			span, err2 := service.ParseYears("2020-2023")
			list, err3 := service.ParseYears("2022, 2020")

			Convey("Then they should expand to years", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(single, ShouldResemble, []int{2024})
				So(span, ShouldResemble, []int{2020, 2021, 2022, 2023})
				sort.Ints(list)
				So(list, ShouldResemble, []int{2020, 2022})
			})
		})

		Convey("When they are invalid", func() {
			_, empty := service.ParseYears("")
			_, word := service.ParseYears("last")
			_, backwards := service.ParseYears("2026-2020")

			Convey("Then they should be rejected", func() {
				So(errors.Is(empty, service.ErrNoYears), ShouldBeTrue)
				So(word, ShouldNotBeNil)
				So(backwards, ShouldNotBeNil)
			})
		})
	})
}
