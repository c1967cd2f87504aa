package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/skillmonitor/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestFormatting(t *testing.T) {
	convey.Convey("Given dashboard figures", t, func() {
		convey.Convey("Then whole numbers render without decimals", func() {
			convey.So(model.FormatNumber(42), convey.ShouldEqual, "42")
			convey.So(model.FormatPercent(68), convey.ShouldEqual, "68%")
		})

		convey.Convey("Then fractions keep their significant digits", func() {
			convey.So(model.FormatNumber(72.5), convey.ShouldEqual, "72.5")
			convey.So(model.FormatPercent(0), convey.ShouldEqual, "0%")
		})
	})
}

func TestChart(t *testing.T) {
	convey.Convey("Given chart specs", t, func() {
		convey.So(model.Chart{}.Present(), convey.ShouldBeFalse)
		convey.So(model.Chart{Data: json.RawMessage("null")}.Present(), convey.ShouldBeFalse)
		convey.So(model.Chart{Data: json.RawMessage(`[{"type":"bar"}]`)}.Present(), convey.ShouldBeTrue)
	})
}

func TestSkillCatalog(t *testing.T) {
	convey.Convey("Given a catalog", t, func() {
		c := model.SkillCatalog{model.GroupAnalysis: {"KPI"}}

		convey.Convey("Then lookups cover every group", func() {
			convey.So(c.Empty(), convey.ShouldBeFalse)
			convey.So(c.Contains("KPI"), convey.ShouldBeTrue)
			convey.So(c.Contains("kpi"), convey.ShouldBeFalse)
		})

		convey.Convey("Then a catalog with only empty groups is empty", func() {
			empty := model.SkillCatalog{model.GroupTechnical: {}, model.GroupManagement: nil}
			convey.So(empty.Empty(), convey.ShouldBeTrue)
		})
	})
}

func TestUserDirectory(t *testing.T) {
	convey.Convey("Given a directory", t, func() {
		dir := model.UserDirectory{"u3": {}, "u1": {}, "u2": {}}

		convey.Convey("Then ids come out sorted", func() {
			convey.So(dir.IDs(), convey.ShouldResemble, []string{"u1", "u2", "u3"})
			convey.So(model.UserDirectory{}.IDs(), convey.ShouldBeEmpty)
		})
	})
}
