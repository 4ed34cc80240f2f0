package def

import (
	"fmt"
	"io/ioutil"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spacemonkeygo/errors"
	"gopkg.in/yaml.v2"

	"polydawn.net/dwight/lib/cereal"
)

/*
	The complete set of top-level names a configuration may use.
	Anything else is refused with an `UnknownConfigOptionsError`.
*/
var knownFields = map[string]struct{}{
	"ROOT_IMAGE":       {},
	"INCLUDES":         {},
	"ENVIRON":          {},
	"UID":              {},
	"GID":              {},
	"NUM_LOOP_DEVICES": {},
	"PWD":              {},
	"CACHE_DIR":        {},
	"MAX_CACHE_SIZE":   {},
	"ROOT_MOUNT_PATH":  {},
}

func LoadConfigFile(filename string) (*Config, error) {
	ser, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, CannotLoadConfigError.New("cannot read configuration %q: %s", filename, errors.GetMessage(err))
	}
	cfg, err := ParseConfig(ser)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

/*
	Parses a YAML configuration document.

	The result has not had defaults applied or been validated; see
	`Config.ApplyDefaults` and `Config.Validate`.
*/
func ParseConfig(ser []byte) (*Config, error) {
	// Turn tabs into spaces so that tabs are acceptable inputs.
	ser = cereal.Tab2space(ser)
	var raw interface{}
	if err := yaml.Unmarshal(ser, &raw); err != nil {
		return nil, CannotLoadConfigError.New("cannot load configuration: %s", errors.GetMessage(err))
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	top, ok := cereal.StringifyMapKeys(raw).(map[string]interface{})
	if !ok {
		return nil, CannotLoadConfigError.New("cannot load configuration: expected a mapping at top level, got %T", raw)
	}
	if err := checkKnownFields(top); err != nil {
		return nil, err
	}

	// MAX_CACHE_SIZE may be humanized, so it doesn't round-trip into the struct directly.
	var maxCacheSize *int64
	if v, ok := top["MAX_CACHE_SIZE"]; ok {
		size, err := parseSize(v)
		if err != nil {
			return nil, err
		}
		maxCacheSize = &size
		delete(top, "MAX_CACHE_SIZE")
	}

	var cfg Config
	if err := cereal.Bounce(top, &cfg); err != nil {
		return nil, InvalidConfigError.New("invalid configuration: %s", errors.GetMessage(err))
	}
	cfg.MaxCacheSize = maxCacheSize
	return &cfg, nil
}

func checkKnownFields(top map[string]interface{}) error {
	var unknown []string
	for k := range top {
		if _, ok := knownFields[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return UnknownConfigOptionsError.New("unknown configuration options: %s", strings.Join(unknown, ", "))
}

func parseSize(v interface{}) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case string:
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return 0, InvalidConfigError.New("MAX_CACHE_SIZE %q is not a size: %s", v, err)
		}
		return int64(n), nil
	default:
		return 0, InvalidConfigError.New("MAX_CACHE_SIZE must be a number of bytes or a size like \"10GB\", not %s", fmt.Sprint(v))
	}
}
