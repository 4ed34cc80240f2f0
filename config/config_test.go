package config

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func withEnv(key, value string, fn func()) {
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	defer func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	}()
	fn()
}

func TestEnvironmentDefaults(t *testing.T) {
	Convey("Config path falls back to dwight.yaml", t, func() {
		withEnv("DWIGHT_CONFIG", "", func() {
			So(GetConfigPath(), ShouldEqual, DefaultConfigFile)
		})
		withEnv("DWIGHT_CONFIG", "/etc/dwight.yaml", func() {
			So(GetConfigPath(), ShouldEqual, "/etc/dwight.yaml")
		})
	})

	Convey("Cache dir is made absolute", t, func() {
		withEnv("DWIGHT_CACHE_DIR", "", func() {
			So(GetCacheDir(), ShouldEqual, "")
		})
		withEnv("DWIGHT_CACHE_DIR", "rel/cache", func() {
			cwd, _ := os.Getwd()
			So(GetCacheDir(), ShouldEqual, cwd+"/rel/cache")
		})
	})

	Convey("Either debug variable enables debug mode", t, func() {
		withEnv("DEBUG", "", func() {
			withEnv("DWIGHT_DEBUG", "", func() {
				So(DebugEnabled(), ShouldBeFalse)
				withEnv("DWIGHT_DEBUG", "1", func() {
					So(DebugEnabled(), ShouldBeTrue)
				})
			})
			withEnv("DEBUG", "yes", func() {
				So(DebugEnabled(), ShouldBeTrue)
			})
		})
	})
}
