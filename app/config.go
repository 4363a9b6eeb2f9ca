package app

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/rs/zerolog/log"
)

// Prefix names the config folder and the env var namespace
var Prefix = "proxyman"

func init() {
	os.Setenv("APP", Prefix)
}

var envVar = regexp.MustCompile(`\$([A-Z_]+)`)

// expandEnv replaces only variables that are set, leaving unknown ones as is
func expandEnv(in string) string {
	return envVar.ReplaceAllStringFunc(in, func(match string) string {
		value := os.Getenv(match[1:])
		if value == "" {
			return match
		}
		return value
	})
}

// Config is a single section of the configuration, keyed by lowercase names
type Config map[string]string

type configurable interface {
	Configure(Config) error
}

type configuration map[string]Config

func (c Config) StrOr(key, def string) string {
	v, ok := c[key]
	if !ok {
		v = def
	}
	return expandEnv(v)
}

func (c Config) DurOr(key string, def time.Duration) time.Duration {
	v, ok := c[key]
	if !ok {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cannot parse duration")
		return def
	}
	return d
}

func (c Config) IntOr(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cannot parse int")
		return def
	}
	return p
}

func (c Config) BoolOr(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}

func configLocations() []string {
	return []string{
		filepath.Clean(expandEnv("$PWD/$APP.yml")),
		filepath.Clean(expandEnv("$PWD/config.yml")),
		filepath.Clean(expandEnv("$HOME/.$APP/config.yml")),
	}
}

// readConfigFile returns the first config file found, or nothing
func readConfigFile() ([]byte, error) {
	for _, loc := range configLocations() {
		raw, err := os.ReadFile(loc)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", loc).Msg("found configuration")
		return raw, nil
	}
	return nil, nil
}

// overlayEnv applies PROXYMAN_<SECTION>_<KEY>=value on top of the file
func (data configuration) overlayEnv(environ []string) {
	for _, raw := range environ {
		pair := strings.SplitN(raw, "=", 2)
		if len(pair) != 2 {
			continue
		}
		split := strings.SplitN(strings.ToLower(pair[0]), "_", 3)
		if len(split) != 3 || split[0] != Prefix {
			continue
		}
		section, key := split[1], split[2]
		c, ok := data[section]
		if !ok {
			c = Config{}
			data[section] = c
		}
		c[key] = pair[1]
	}
}

func getConfig() (configuration, error) {
	raw, err := readConfigFile()
	if err != nil {
		return nil, err
	}
	data := configuration{}
	err = yaml.Unmarshal(raw, &data)
	if err != nil {
		return nil, err
	}
	if data == nil {
		// empty file
		data = configuration{}
	}
	data.overlayEnv(os.Environ())
	return data, nil
}
