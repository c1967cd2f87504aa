package main

import (
	"context"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/pkg/logger"
)

func TestNewServer(t *testing.T) {
	Convey("Given command line flags", t, func() {
		defer func() { noUsers, failing, broken = false, nil, nil }()
		noUsers = true
		failing = []string{backend.PathDashboard}
		broken = []string{backend.PathSkills}

		ts := httptest.NewServer(newServer(logger.Nop()).Handler())
		defer ts.Close()
		c := backend.NewClient(ts.URL)
		ctx := context.Background()

		Convey("Then the flagged endpoints fail the requested way", func() {
			So(c.Get(ctx, backend.PathDashboard).Kind, ShouldEqual, backend.KindBackend)
			So(c.Get(ctx, backend.PathSkills).Kind, ShouldEqual, backend.KindTransport)

			dir, err := backend.DecodeDirectory(c.Get(ctx, backend.PathUsers))
			So(err, ShouldBeNil)
			So(dir, ShouldBeEmpty)
		})
	})
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		Convey("Then its flags carry the documented defaults", func() {
			So(rootCmd.Flags().Lookup("addr").DefValue, ShouldEqual, ":5000")
			So(rootCmd.Flags().Lookup("delay").DefValue, ShouldEqual, "0s")
		})
	})
}
