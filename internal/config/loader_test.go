package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"notrello/internal/config"
)

const testSecret = "0123456789abcdef-test"

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv("NOTRELLO_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		_ = os.Setenv("NOTRELLO_JWT_SECRET", testSecret)
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7521")
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "notrello")
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 7*24*time.Hour)
				convey.So(cfg.TimelineSlots, convey.ShouldEqual, config.SlotsHourly)
				convey.So(cfg.FirstWeekday(), convey.ShouldEqual, time.Monday)

				slots, err := cfg.Slots()
				convey.So(err, convey.ShouldBeNil)
				convey.So(slots.Labels(), convey.ShouldHaveLength, 12)
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("NOTRELLO_ADDR", ":8080")
			_ = os.Setenv("NOTRELLO_SESSION_TTL", "2h")
			_ = os.Setenv("NOTRELLO_COOKIE_SECURE", "true")
			_ = os.Setenv("NOTRELLO_TIMELINE_SLOTS", "five_minutes")
			_ = os.Setenv("NOTRELLO_IMPORT_RECURRENCE_DAYS", "30")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SessionTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.CookieSecure, convey.ShouldBeTrue)
				convey.So(cfg.ImportRecurrenceDays, convey.ShouldEqual, 30)

				slots, err := cfg.Slots()
				convey.So(err, convey.ShouldBeNil)
				convey.So(slots.Step, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When a YAML file is given", func() {
			path := filepath.Join(t.TempDir(), "notrello.yaml")
			yamlContent := "addr: \":9090\"\nweek_start: sunday\nretention_days: 90\ntimeline_end: \"18:00\"\n"
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("NOTRELLO_CONFIG", path)
			_ = os.Setenv("NOTRELLO_RETENTION_DAYS", "30")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.FirstWeekday(), convey.ShouldEqual, time.Sunday)
				convey.So(cfg.RetentionDays, convey.ShouldEqual, 30)
				convey.So(cfg.TimelineEnd, convey.ShouldEqual, "18:00")
			})
		})

		convey.Convey("When a dotenv file is present", func() {
			path := filepath.Join(t.TempDir(), "test.env")
			convey.So(os.WriteFile(path, []byte("NOTRELLO_MONGODB_DATABASE=fromdotenv\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("NOTRELLO_ENV_FILE", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "fromdotenv")
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("NOTRELLO_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When values are invalid", func() {
			cases := map[string]string{
				"NOTRELLO_JWT_SECRET":     "short",
				"NOTRELLO_TIMELINE_SLOTS": "quarter",
				"NOTRELLO_TIMELINE_START": "20:00",
				"NOTRELLO_WEEK_START":     "friday",
				"NOTRELLO_TIMEZONE":       "Mars/Olympus",
			}

			convey.Convey("Then each is rejected", func() {
				for key, value := range cases {
					_ = os.Setenv(key, value)
					_, err := config.Load(ctx)
					convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
					_ = os.Unsetenv(key)
					_ = os.Setenv("NOTRELLO_JWT_SECRET", testSecret)
				}
			})
		})
	})
}

func TestDump(t *testing.T) {
	convey.Convey("Given a config with a secret", t, func() {
		cfg := config.New()
		cfg.JWTSecret = testSecret

		var buf bytes.Buffer
		err := cfg.Dump(&buf)

		convey.Convey("Then the YAML hides the secret", func() {
			convey.So(err, convey.ShouldBeNil)
			out := buf.String()
			convey.So(out, convey.ShouldContainSubstring, "7521")
			convey.So(out, convey.ShouldContainSubstring, "session_ttl: 168h0m0s")
			convey.So(out, convey.ShouldContainSubstring, "<redacted>")
			convey.So(strings.Contains(out, testSecret), convey.ShouldBeFalse)
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "NOTRELLO_") {
			_ = os.Unsetenv(key)
		}
	}
}
