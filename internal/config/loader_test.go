package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/skillmonitor/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://localhost:5000")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30_000)
				convey.So(cfg.AlertTTLMS, convey.ShouldEqual, 5_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SKILLMONITOR_ADDR", ":8080")
			_ = os.Setenv("SKILLMONITOR_BACKEND_URL", "http://api.local:5001")
			_ = os.Setenv("SKILLMONITOR_POLL_INTERVAL_MS", "1000")
			_ = os.Setenv("SKILLMONITOR_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://api.local:5001")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 1000)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.AlertTTLMS, convey.ShouldEqual, 5_000)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
backend_url: "http://backend:5000"
alert_ttl_ms: 2000
max_sessions: 50
metrics_enabled: false
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLMONITOR_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://backend:5000")
				convey.So(cfg.AlertTTLMS, convey.ShouldEqual, 2000)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30_000)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nloop_queue_size: 64\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLMONITOR_CONFIG", tmpFile)
			_ = os.Setenv("SKILLMONITOR_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LoopQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SKILLMONITOR_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SKILLMONITOR_CONFIG", "/non/existent/skillmonitor.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an invalid backend url", func() {
			_ = os.Setenv("SKILLMONITOR_BACKEND_URL", "localhost:5000")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SKILLMONITOR_POLL_INTERVAL_MS", "soon")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When loading config with zero values", func() {
			_ = os.Setenv("SKILLMONITOR_SETTLE_TIMEOUT_MS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should reject them", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"SKILLMONITOR_CONFIG",
		"SKILLMONITOR_ADDR",
		"SKILLMONITOR_BACKEND_URL",
		"SKILLMONITOR_POLL_INTERVAL_MS",
		"SKILLMONITOR_LOG_FORMAT",
		"SKILLMONITOR_SETTLE_TIMEOUT_MS",
	} {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "skillmonitor-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
