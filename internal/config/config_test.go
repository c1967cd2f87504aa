package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/skillmonitor/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BackendURL, convey.ShouldEqual, "http://localhost:5000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.PollInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.AlertTTL(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.BackendTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.SettleTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.SweepInterval(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.LoopQueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad value", t, func() {
		ctx := context.Background()
		cases := map[string]func(c *config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = "" },
			"empty backend":      func(c *config.Config) { c.BackendURL = "" },
			"relative backend":   func(c *config.Config) { c.BackendURL = "/api" },
			"ftp backend":        func(c *config.Config) { c.BackendURL = "ftp://example.com" },
			"zero poll":          func(c *config.Config) { c.PollIntervalMS = 0 },
			"negative alert ttl": func(c *config.Config) { c.AlertTTLMS = -1 },
			"zero queue":         func(c *config.Config) { c.LoopQueueSize = 0 },
			"zero max sessions":  func(c *config.Config) { c.MaxSessions = 0 },
		}

		for _, mutate := range cases {
			cfg := config.New(ctx)
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}

		convey.Convey("Then an https backend is accepted", func() {
			cfg := config.New(ctx)
			cfg.BackendURL = "https://metrics.internal:8443/base"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
