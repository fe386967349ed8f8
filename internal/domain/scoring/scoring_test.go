package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/skilltree/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeScore(t *testing.T) {
	Convey("Given the scoring policies", t, func() {
		Convey("When the input is empty", func() {
			Convey("Then every mode reports no score", func() {
				for _, mode := range append(scoring.Modes(), scoring.Mode("bogus")) {
					_, ok := scoring.ComputeScore(nil, mode)
					So(ok, ShouldBeFalse)
					_, ok = scoring.ComputeScore([]float64{}, mode)
					So(ok, ShouldBeFalse)
				}
			})
		})

		Convey("When the input has a single element", func() {
			avg, ok := scoring.ComputeScore([]float64{42}, scoring.ModeAverage)
			So(ok, ShouldBeTrue)
			ready, ok := scoring.ComputeScore([]float64{42}, scoring.ModeTeamReadiness)
			So(ok, ShouldBeTrue)

			Convey("Then average and team readiness both return it", func() {
				So(avg, ShouldEqual, 42)
				So(ready, ShouldEqual, 42)
			})
		})

		Convey("When computing an average", func() {
			score, ok := scoring.ComputeScore([]float64{80, 0, 0}, scoring.ModeAverage)

			Convey("Then it is the mean rounded to one decimal", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 26.7)
			})
		})

		Convey("When computing team readiness", func() {
			score, ok := scoring.ComputeScore([]float64{40, 10, 30, 20}, scoring.ModeTeamReadiness)

			Convey("Then it is the interpolated 25th percentile", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 17.5)
			})
		})

		Convey("When computing coverage", func() {
			cases := [][]float64{
				{70, 69.9, 100, 50},
				{75, 80, 65},
				{10, 20},
				{90, 95, 70},
			}

			Convey("Then it equals 100 times the proficient share", func() {
				for _, scores := range cases {
					proficient := 0
					for _, s := range scores {
						if s >= scoring.ProficientThreshold {
							proficient++
						}
					}
					want := math.Round(100*float64(proficient)/float64(len(scores))*10) / 10
					got, ok := scoring.ComputeScore(scores, scoring.ModeCoverage)
					So(ok, ShouldBeTrue)
					So(got, ShouldEqual, want)
				}
			})

			Convey("And the threshold is inclusive", func() {
				got, _ := scoring.ComputeScore([]float64{70}, scoring.ModeCoverage)
				So(got, ShouldEqual, 100)
			})
		})

		Convey("When the mode is unknown", func() {
			got, ok := scoring.ComputeScore([]float64{10, 20, 60}, scoring.Mode("median"))

			Convey("Then it falls back to the average", func() {
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, 30)
			})
		})

		Convey("When results have long fractions", func() {
			inputs := [][]float64{
				{1, 2, 2},
				{33.33, 66.67, 12.345},
				{0.05, 0.1},
				{99.99, 98.76, 12.01, 55.55},
			}

			Convey("Then every mode rounds to exactly one decimal", func() {
				for _, in := range inputs {
					for _, mode := range scoring.Modes() {
						got, ok := scoring.ComputeScore(in, mode)
						So(ok, ShouldBeTrue)
						So(math.Round(got*10)/10, ShouldEqual, got)
					}
				}
			})
		})
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given a set of values", t, func() {
		values := []float64{50, 10, 40, 20, 30}

		Convey("When asking for the median", func() {
			Convey("Then the middle order statistic is returned", func() {
				So(scoring.Percentile(values, 50), ShouldEqual, 30)
			})
		})

		Convey("When asking for the extremes", func() {
			Convey("Then min and max are returned", func() {
				So(scoring.Percentile(values, 0), ShouldEqual, 10)
				So(scoring.Percentile(values, 100), ShouldEqual, 50)
			})
		})

		Convey("When p is out of range or not a number", func() {
			Convey("Then it is clamped and NaN falls back to the minimum", func() {
				So(scoring.Percentile(values, -5), ShouldEqual, 10)
				So(scoring.Percentile(values, 250), ShouldEqual, 50)
				So(func() { scoring.Percentile(values, math.NaN()) }, ShouldNotPanic)
				So(scoring.Percentile(values, math.NaN()), ShouldEqual, 10)
			})
		})

		Convey("When p falls between ranks", func() {
			Convey("Then the value is interpolated", func() {
				// rank = 0.1 * 4 = 0.4 -> 10 + 10*0.4
				So(scoring.Percentile(values, 10), ShouldAlmostEqual, 14, 1e-9)
			})
		})

		Convey("When p sweeps from 0 to 100", func() {
			Convey("Then the percentile never decreases", func() {
				prev := math.Inf(-1)
				for p := 0.0; p <= 100; p += 2.5 {
					v := scoring.Percentile(values, p)
					So(v, ShouldBeGreaterThanOrEqualTo, prev)
					prev = v
				}
			})
		})

		Convey("When computing a percentile", func() {
			_ = scoring.Percentile(values, 25)

			Convey("Then the input order is left untouched", func() {
				So(values, ShouldResemble, []float64{50, 10, 40, 20, 30})
			})
		})

		Convey("When the input is degenerate", func() {
			Convey("Then a single value is returned as-is and empty yields zero", func() {
				So(scoring.Percentile([]float64{7}, 25), ShouldEqual, 7)
				So(scoring.Percentile(nil, 25), ShouldEqual, 0)
			})
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given external scoring mode strings", t, func() {
		Convey("When the value is known", func() {
			Convey("Then it parses", func() {
				for _, m := range scoring.Modes() {
					got, err := scoring.ParseMode(string(m))
					So(err, ShouldBeNil)
					So(got, ShouldEqual, m)
				}
			})
		})

		Convey("When the value is unknown", func() {
			_, err := scoring.ParseMode("median")

			Convey("Then the error enumerates the valid modes", func() {
				So(errors.Is(err, scoring.ErrInvalidMode), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "average, team_readiness, coverage")
			})
		})
	})
}

func TestParseNotAssessed(t *testing.T) {
	Convey("Given external not-assessed strings", t, func() {
		Convey("Then known values parse and unknown values fail", func() {
			h, err := scoring.ParseNotAssessed("count_as_zero")
			So(err, ShouldBeNil)
			So(h, ShouldEqual, scoring.CountAsZero)

			h, err = scoring.ParseNotAssessed("exclude")
			So(err, ShouldBeNil)
			So(h, ShouldEqual, scoring.Exclude)

			_, err = scoring.ParseNotAssessed("ignore")
			So(errors.Is(err, scoring.ErrInvalidNotAssessed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "exclude, count_as_zero")
		})
	})
}

func TestLevel(t *testing.T) {
	Convey("Given raw scores on the level boundaries", t, func() {
		Convey("Then each lands in its bucket", func() {
			So(scoring.Level(100), ShouldEqual, scoring.LevelExpert)
			So(scoring.Level(90), ShouldEqual, scoring.LevelExpert)
			So(scoring.Level(89.9), ShouldEqual, scoring.LevelProficient)
			So(scoring.Level(70), ShouldEqual, scoring.LevelProficient)
			So(scoring.Level(50), ShouldEqual, scoring.LevelDeveloping)
			So(scoring.Level(49.99), ShouldEqual, scoring.LevelBeginner)
			So(scoring.Level(0), ShouldEqual, scoring.LevelBeginner)
		})
	})
}
