package viewmodel_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmonitor/internal/viewmodel"
)

func TestChecked(t *testing.T) {
	convey.Convey("Given posted checkbox values", t, func() {
		for _, v := range []string{"true", "on", "1", "checked"} {
			convey.So(viewmodel.Checked(v), convey.ShouldBeTrue)
		}
		for _, v := range []string{"", "false", "off", "0", "yes"} {
			convey.So(viewmodel.Checked(v), convey.ShouldBeFalse)
		}
	})
}
