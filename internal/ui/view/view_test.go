package view_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/view"
)

func doc(t *testing.T, n *html.Node) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(view.Render(n)))
	if err != nil {
		t.Fatalf("parse rendered markup: %v", err)
	}
	return d
}

func TestBuilders(t *testing.T) {
	convey.Convey("Given a tree built with options", t, func() {
		n := view.El("div", view.ID("box"), view.Class("card"), view.Class("wide", "dark"), view.Data("chart", `{"a":1}`),
			view.Kids(
				view.El("span", view.Text("one")),
				nil,
				view.El("b", view.If(false, view.Text("hidden")), view.If(true, view.Text("two"))),
			),
		)
		d := doc(t, n)

		convey.Convey("Then attributes and children come out as written", func() {
			box := d.Find("#box")
			convey.So(box.Length(), convey.ShouldEqual, 1)
			convey.So(box.HasClass("card"), convey.ShouldBeTrue)
			convey.So(box.HasClass("dark"), convey.ShouldBeTrue)
			chart, _ := box.Attr("data-chart")
			convey.So(chart, convey.ShouldEqual, `{"a":1}`)
			convey.So(box.Children().Length(), convey.ShouldEqual, 2)
			convey.So(d.Find("b").Text(), convey.ShouldEqual, "two")
		})
	})

	convey.Convey("Given user supplied text with markup", t, func() {
		evil := `<script>alert("x")</script>`
		n := view.El("p", view.Attr("title", `"><img src=x>`), view.Text(evil))
		out := view.Render(n)

		convey.Convey("Then it is escaped", func() {
			convey.So(out, convey.ShouldNotContainSubstring, "<script>")
			convey.So(out, convey.ShouldNotContainSubstring, "<img")
			convey.So(doc(t, n).Find("p").Text(), convey.ShouldEqual, evil)
		})
	})

	convey.Convey("Given attribute helpers", t, func() {
		n := view.El("input", view.Attr("checked", ""))
		view.SetAttr(n, "value", "SQL")
		view.SetAttr(n, "value", "Python")

		convey.Convey("Then set replaces and remove deletes", func() {
			v, ok := view.GetAttr(n, "value")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, "Python")
			convey.So(view.RemoveAttr(n, "checked"), convey.ShouldBeTrue)
			convey.So(view.RemoveAttr(n, "checked"), convey.ShouldBeFalse)
			_, ok = view.GetAttr(n, "checked")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a list", t, func() {
		items := view.Each([]string{"a", "b"}, func(i int, s string) *html.Node {
			return view.El("li", view.Text(s))
		})

		convey.Convey("Then one node is built per item", func() {
			convey.So(items, convey.ShouldHaveLength, 2)
			ul := view.El("ul", view.Kids(items...))
			convey.So(doc(t, ul).Find("li").Length(), convey.ShouldEqual, 2)
		})
	})
}
