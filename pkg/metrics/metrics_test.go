package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue finds the sample of family name whose labels match want.
func counterValue(reg *prometheus.Registry, name string, want map[string]string) (float64, bool) {
	families, err := reg.Gather()
	if err != nil {
		return 0, false
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}
			if !match {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue(), true
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue(), true
			}
			if h := metric.GetHistogram(); h != nil {
				return float64(h.GetSampleCount()), true
			}
		}
	}
	return 0, false
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should own a fresh registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("scan"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordDecoded("se")

			Convey("Then names and labels should follow the options", func() {
				v, ok := counterValue(registry, "test_scan_records_decoded_total", map[string]string{"kind": "se", "env": "test"})
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording decode outcomes", func() {
			m.RecordDecoded("se")
			m.RecordDecoded("se")
			m.RecordSkipped("sr", "pace_time")
			m.RecordFiltered("se")
			m.RecordFileScanned("se", 12)

			Convey("Then each counter should carry its labels", func() {
				v, _ := counterValue(registry, "jvrace_ingest_records_decoded_total", map[string]string{"kind": "se"})
				So(v, ShouldEqual, 2)
				v, _ = counterValue(registry, "jvrace_ingest_records_skipped_total", map[string]string{"kind": "sr", "reason": "pace_time"})
				So(v, ShouldEqual, 1)
				v, _ = counterValue(registry, "jvrace_ingest_records_filtered_total", map[string]string{"kind": "se"})
				So(v, ShouldEqual, 1)
				v, _ = counterValue(registry, "jvrace_ingest_files_scanned_total", map[string]string{"kind": "se"})
				So(v, ShouldEqual, 1)
				v, _ = counterValue(registry, "jvrace_ingest_file_scan_duration_milliseconds", map[string]string{"kind": "se"})
				So(v, ShouldEqual, 1)
			})
		})

		Convey("When recording build outcomes", func() {
			m.RecordRaceMerged(StateFull)
			m.RecordRaceMerged(StatePreRace)
			m.RecordRaceMerged(StatePreRace)
			m.RecordRaceDropped()
			m.RecordRaceWritten()
			m.RecordWriteError()
			m.UpdateRaceGroups(7)
			m.AddActiveWorkers(3)
			m.AddActiveWorkers(-1)

			Convey("Then counters and gauges should reflect them", func() {
				v, _ := counterValue(registry, "jvrace_ingest_races_merged_total", map[string]string{"state": "pre_race"})
				So(v, ShouldEqual, 2)
				v, _ = counterValue(registry, "jvrace_ingest_races_dropped_total", nil)
				So(v, ShouldEqual, 1)
				v, _ = counterValue(registry, "jvrace_ingest_write_errors_total", nil)
				So(v, ShouldEqual, 1)
				v, _ = counterValue(registry, "jvrace_ingest_race_groups", nil)
				So(v, ShouldEqual, 7)
				v, _ = counterValue(registry, "jvrace_ingest_active_workers", nil)
				So(v, ShouldEqual, 2)
			})
		})

		Convey("When metrics are disabled", func() {
			off := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordDecoded("um")

			Convey("Then nothing should be recorded", func() {
				_, ok := counterValue(off.Registry(), "jvrace_ingest_records_decoded_total", map[string]string{"kind": "um"})
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the process-wide manager", t, func() {
		So(func() {
			RecordDecoded("um")
			RecordSkipped("um", "missing_key")
			RecordFiltered("sr")
			RecordFileScanned("um", 3)
			RecordRaceMerged(StateFull)
			RecordRaceDropped()
			RecordRaceWritten()
			RecordHorseWritten()
			RecordWriteError()
			UpdateRaceGroups(1)
			UpdateSummaryIndexSize(1)
			UpdateHorses(1)
			AddActiveWorkers(0)
			RecordRunDuration("full", 100)
		}, ShouldNotPanic)
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		m.RecordRaceWritten()
		path := filepath.Join(t.TempDir(), "jvrace.prom")

		Convey("When exported as a textfile", func() {
			err := m.WriteTextfile(path)

			Convey("Then the file should hold the exposition text", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "jvrace_ingest_races_written_total 1")
			})
		})

		Convey("When the directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then it should wrap ErrWriteTextfile", func() {
				So(err, ShouldNotBeNil)
				So(strings.Contains(err.Error(), ErrWriteTextfile.Error()), ShouldBeTrue)
			})
		})
	})
}
