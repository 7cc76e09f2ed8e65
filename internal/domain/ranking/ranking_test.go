package ranking_test

import (
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/google/go-cmp/cmp"
	model "github.com/okian/scoutrank/internal/domain/model"
	ranking "github.com/okian/scoutrank/internal/domain/ranking"
	types "github.com/okian/scoutrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var defaults = model.DefaultThresholds()

func noPartner() omit.Val[model.PartnerRecord] { return omit.Val[model.PartnerRecord]{} }

func TestEvaluateWithoutPartner(t *testing.T) {
	Convey("Given a match with no alliance partner", t, func() {
		self := model.MatchRecord{
			Auton:   model.AutonObservation{ClassifiedArtifacts: 20, Patterns: 10, Leave: true},
			Teleop:  model.TeleopObservation{ClassifiedArtifacts: 30, Patterns: 10},
			Endgame: types.EndgameFullBase,
			Win:     true,
		}

		Convey("When the team won", func() {
			res := ranking.Evaluate(self, noPartner(), defaults)

			Convey("Then win points are reported but the total stays zero", func() {
				want := ranking.Result{Components: ranking.Components{WinRP: 3}}
				So(cmp.Diff(want, res), ShouldBeEmpty)
			})
		})

		Convey("When the team tied", func() {
			self.Win = false
			self.Tie = true
			res := ranking.Evaluate(self, noPartner(), defaults)

			Convey("Then tie points are reported but the total stays zero", func() {
				So(res.TieRP, ShouldEqual, 1)
				So(res.TotalRP, ShouldEqual, 0)
				So(res.PartnerPresent, ShouldBeFalse)
			})
		})
	})
}

func TestEvaluateMovement(t *testing.T) {
	Convey("Given two robots that both leave and both end at full base", t, func() {
		self := model.MatchRecord{
			Auton:   model.AutonObservation{Leave: true},
			Endgame: types.EndgameFullBase,
		}
		mate := model.PartnerRecord{
			Auton:   model.AutonObservation{Leave: true},
			Endgame: types.EndgameFullBase,
		}

		Convey("When evaluated against the default thresholds", func() {
			res := ranking.Evaluate(self, omit.From(mate), defaults)

			Convey("Then the movement point is earned and nothing else", func() {
				So(res.MovementRP, ShouldEqual, 1)
				So(res.GoalRP, ShouldEqual, 0)
				So(res.PatternRP, ShouldEqual, 0)
				So(res.TotalRP, ShouldEqual, 1)
				So(res.PartnerPresent, ShouldBeTrue)
			})
		})

		Convey("When the movement threshold equals the subtotal", func() {
			th := defaults
			th.Movement = 36

			Convey("Then the point is still earned", func() {
				So(ranking.Evaluate(self, omit.From(mate), th).MovementRP, ShouldEqual, 1)
			})
		})

		Convey("When the movement threshold is one above the subtotal", func() {
			th := defaults
			th.Movement = 37

			Convey("Then the point is not earned", func() {
				So(ranking.Evaluate(self, omit.From(mate), th).MovementRP, ShouldEqual, 0)
			})
		})

		Convey("When only one robot reaches full base", func() {
			mate.Endgame = types.EndgamePartialBase
			th := defaults
			th.Movement = 21

			Convey("Then no bonus is added", func() {
				// 6 leave + 10 + 5
				So(ranking.Evaluate(self, omit.From(mate), th).MovementRP, ShouldEqual, 1)
				th.Movement = 22
				So(ranking.Evaluate(self, omit.From(mate), th).MovementRP, ShouldEqual, 0)
			})
		})
	})
}

func TestEvaluateGoal(t *testing.T) {
	Convey("Given an alliance that scored many artifacts", t, func() {
		self := model.MatchRecord{
			Auton:  model.AutonObservation{ClassifiedArtifacts: 5, OverflowArtifacts: 4},
			Teleop: model.TeleopObservation{ClassifiedArtifacts: 5, OverflowArtifacts: 4, DepotArtifacts: 10, Patterns: 50},
		}
		mate := model.PartnerRecord{
			Auton:  model.AutonObservation{ClassifiedArtifacts: 4, OverflowArtifacts: 5},
			Teleop: model.TeleopObservation{ClassifiedArtifacts: 4, OverflowArtifacts: 5, DepotArtifacts: 10},
		}

		Convey("When the combined total is 56", func() {
			res := ranking.Evaluate(self, omit.From(mate), defaults)

			Convey("Then the goal point is earned", func() {
				So(res.GoalRP, ShouldEqual, 1)
			})
		})

		Convey("When the threshold equals the combined total", func() {
			th := defaults
			th.Goal = 56

			Convey("Then the goal point is earned", func() {
				So(ranking.Evaluate(self, omit.From(mate), th).GoalRP, ShouldEqual, 1)
			})
		})

		Convey("When the combined total is one less than the threshold", func() {
			th := defaults
			th.Goal = 57

			Convey("Then the goal point is not earned even though patterns were scored", func() {
				So(ranking.Evaluate(self, omit.From(mate), th).GoalRP, ShouldEqual, 0)
			})
		})
	})
}

func TestEvaluatePattern(t *testing.T) {
	Convey("Given pattern counts across both robots", t, func() {
		self := model.MatchRecord{
			Auton:  model.AutonObservation{Patterns: 5},
			Teleop: model.TeleopObservation{Patterns: 4},
		}
		mate := model.PartnerRecord{
			Auton:  model.AutonObservation{Patterns: 2},
			Teleop: model.TeleopObservation{Patterns: 1},
		}

		Convey("When pattern points total 24", func() {
			res := ranking.Evaluate(self, omit.From(mate), defaults)

			Convey("Then the pattern point is earned", func() {
				So(res.PatternRP, ShouldEqual, 1)
				So(res.TotalRP, ShouldEqual, 1)
			})
		})

		Convey("When the threshold is 25", func() {
			th := defaults
			th.Pattern = 25

			Convey("Then the pattern point is not earned", func() {
				So(ranking.Evaluate(self, omit.From(mate), th).PatternRP, ShouldEqual, 0)
			})
		})
	})
}

func TestEvaluateWinTie(t *testing.T) {
	Convey("Given a partnered match with no criteria reached", t, func() {
		self := model.MatchRecord{}
		mate := model.PartnerRecord{}

		Convey("When the team won", func() {
			self.Win = true
			res := ranking.Evaluate(self, omit.From(mate), defaults)

			Convey("Then the total is exactly the win value", func() {
				want := ranking.Result{
					Components:     ranking.Components{WinRP: 3},
					TotalRP:        3,
					PartnerPresent: true,
				}
				So(cmp.Diff(want, res), ShouldBeEmpty)
			})
		})

		Convey("When the team tied", func() {
			self.Tie = true

			Convey("Then the total is exactly the tie value", func() {
				So(ranking.Evaluate(self, omit.From(mate), defaults).TotalRP, ShouldEqual, 1)
			})
		})

		Convey("When every criterion is reached and the team won", func() {
			self = model.MatchRecord{
				Auton:   model.AutonObservation{ClassifiedArtifacts: 10, Patterns: 5, Leave: true},
				Teleop:  model.TeleopObservation{ClassifiedArtifacts: 10, Patterns: 5},
				Endgame: types.EndgameFullBase,
				Win:     true,
			}
			mate = model.PartnerRecord{
				Auton:   model.AutonObservation{ClassifiedArtifacts: 10, Leave: true},
				Teleop:  model.TeleopObservation{ClassifiedArtifacts: 10},
				Endgame: types.EndgameFullBase,
			}
			res := ranking.Evaluate(self, omit.From(mate), defaults)

			Convey("Then all components sum into the total", func() {
				So(res.Components, ShouldResemble, ranking.Components{MovementRP: 1, GoalRP: 1, PatternRP: 1, WinRP: 3})
				So(res.TotalRP, ShouldEqual, 6)
			})
		})
	})
}
