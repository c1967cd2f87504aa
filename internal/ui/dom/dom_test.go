package dom_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/view"
)

func page() *html.Node {
	return view.El("html", view.Kids(
		view.El("body", view.Kids(
			view.El("div", view.ID("outer"), view.Kids(
				view.El("span", view.ID("inner"), view.Text("old")),
			)),
			view.El("p", view.ID("status"), view.Attr("hidden", "")),
			view.El("p", view.ID("other")),
		)),
	))
}

func TestRegions(t *testing.T) {
	convey.Convey("Given a document", t, func() {
		d := dom.New(page())

		convey.Convey("When a region is missing", func() {
			r := d.Region("nope")
			r.SetText("x")
			r.Show()
			r.SetAttr("a", "b")

			convey.Convey("Then the handle is a harmless no-op", func() {
				convey.So(r.Present(), convey.ShouldBeFalse)
				convey.So(r.Visible(), convey.ShouldBeFalse)
				convey.So(r.HTML(), convey.ShouldEqual, "")
				convey.So(d.Dirty(), convey.ShouldBeFalse)
				convey.So(d.Flush(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When text is set", func() {
			d.Region("inner").SetText("<b>new</b>")

			convey.Convey("Then a single escaped patch is produced", func() {
				patches := d.Flush()
				convey.So(patches, convey.ShouldHaveLength, 1)
				convey.So(patches[0].ID, convey.ShouldEqual, "inner")
				convey.So(patches[0].HTML, convey.ShouldEqual, `<span id="inner">&lt;b&gt;new&lt;/b&gt;</span>`)
				convey.So(d.Flush(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When a region gains new elements with ids", func() {
			d.Region("outer").Replace(
				view.El("em", view.ID("fresh"), view.Text("a")),
				view.El("em", view.Text("b")),
			)

			convey.Convey("Then they become addressable and the old ones are gone", func() {
				convey.So(d.Region("fresh").Present(), convey.ShouldBeTrue)
				convey.So(d.Region("inner").Present(), convey.ShouldBeFalse)
				convey.So(d.Region("outer").Text(), convey.ShouldEqual, "ab")
			})

			convey.Convey("Then a nested change is covered by the ancestor patch", func() {
				d.Region("fresh").SetText("c")
				patches := d.Flush()
				convey.So(patches, convey.ShouldHaveLength, 1)
				convey.So(patches[0].ID, convey.ShouldEqual, "outer")
				convey.So(patches[0].HTML, convey.ShouldContainSubstring, ">c</em>")
			})
		})

		convey.Convey("When visibility and attributes change", func() {
			status := d.Region("status")
			convey.So(status.Visible(), convey.ShouldBeFalse)
			status.Show()
			status.Show()
			d.Region("other").Hide()
			d.Region("other").SetAttr("data-x", "1")
			d.Region("other").SetAttr("data-x", "1")

			convey.Convey("Then patches come out in mutation order, once per region", func() {
				convey.So(status.Visible(), convey.ShouldBeTrue)
				patches := d.Flush()
				convey.So(patches, convey.ShouldHaveLength, 2)
				convey.So(patches[0].ID, convey.ShouldEqual, "status")
				convey.So(patches[0].HTML, convey.ShouldNotContainSubstring, "hidden")
				convey.So(patches[1].ID, convey.ShouldEqual, "other")
				convey.So(patches[1].HTML, convey.ShouldContainSubstring, `hidden=""`)
				v, ok := d.Region("other").Attr("data-x")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "1")
			})

			convey.Convey("Then removing an attribute marks the region", func() {
				d.Flush()
				d.Region("other").RemoveAttr("data-x")
				d.Region("other").RemoveAttr("data-x")
				convey.So(d.Flush(), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the whole page is rendered", func() {
			d.Region("inner").SetText("rendered")
			var buf bytes.Buffer
			convey.So(d.Render(&buf), convey.ShouldBeNil)

			convey.Convey("Then pending patches are dropped", func() {
				convey.So(strings.Contains(buf.String(), "rendered"), convey.ShouldBeTrue)
				convey.So(d.Flush(), convey.ShouldBeEmpty)
				convey.So(d.HTML(), convey.ShouldContainSubstring, "rendered")
			})
		})

		convey.Convey("When queried with a selector", func() {
			convey.So(d.Find("p").Length(), convey.ShouldEqual, 2)
			convey.So(d.Region("outer").Selection().Find("span").Length(), convey.ShouldEqual, 1)
		})
	})
}

func TestChangeSignal(t *testing.T) {
	convey.Convey("Given two documents sharing a signal", t, func() {
		sig := make(chan struct{}, 1)
		first := dom.New(page(), dom.WithSignal(sig))
		second := dom.New(page(), dom.WithSignal(sig))

		convey.Convey("When both change", func() {
			first.Region("inner").SetText("a")
			second.Region("inner").SetText("b")

			convey.Convey("Then one pending signal is delivered on the shared channel", func() {
				convey.So(len(second.Changed()), convey.ShouldEqual, 1)
				<-first.Changed()
				convey.So(len(sig), convey.ShouldEqual, 0)
			})
		})
	})
}
