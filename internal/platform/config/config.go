// Package config reads application configuration from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"chatmirror/internal/platform/logger"
)

// Conf is a prefixed view over the environment. The root view sees every
// variable; children narrow it per subsystem, e.g. Prefix("CORE_BACKFILL_").
type Conf struct{ prefix string }

// New returns the root view (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child view with p appended, e.g. cfg.Prefix("OPS_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key expands a short key to the full env var name
func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) read(key string) string {
	return strings.TrimSpace(os.Getenv(c.key(key)))
}

// Require panics unless every listed key is set and non-empty
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.read(k) == "" {
			logger.Get().Panic().Str("key", c.key(k)).Msg("required env not set")
		}
	}
}

// MustString returns the value, panicking when the key is unset or empty
func (c Conf) MustString(key string) string {
	v := c.read(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("required env not set")
	}
	return v
}

// MustInt returns the value as an int, panicking on unset or non-numeric input
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("env is not an int")
	}
	return v
}

// MustBool returns the value as a bool, panicking on unset or unparsable input
func (c Conf) MustBool(key string) bool {
	s := c.MustString(key)
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("env is not a bool")
	}
	return v
}

// MustDuration returns the value parsed by time.ParseDuration ("30s", "5m"),
// panicking on unset or unparsable input
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("env is not a duration")
	}
	return d
}

// MustPort validates a TCP port (1..65535) and returns it as a listen
// address, ":8380" style
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("env is not a TCP port")
	}
	return ":" + s
}

// MayString returns the value, or def when unset/empty
func (c Conf) MayString(key, def string) string {
	if v := c.read(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value as an int; unset or unparsable falls back to def
// (unparsable is logged)
func (c Conf) MayInt(key string, def int) int {
	s := c.read(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("bad int env, using default")
		return def
	}
	return v
}

// MayFloat64 returns the value as a float64; unset or unparsable falls back
// to def (unparsable is logged)
func (c Conf) MayFloat64(key string, def float64) float64 {
	s := c.read(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Float64("default", def).
			Msg("bad float env, using default")
		return def
	}
	return v
}

// MayBool returns the value as a bool; unset or unparsable falls back to def
// (unparsable is logged)
func (c Conf) MayBool(key string, def bool) bool {
	s := c.read(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("bad bool env, using default")
		return def
	}
	return v
}

// MayDuration returns the value as a duration; unset or unparsable falls
// back to def (unparsable is logged)
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.read(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).
			Msg("bad duration env, using default")
		return def
	}
	return d
}

// MayCSV splits a comma-separated value into trimmed parts; unset, empty, or
// all-blank falls back to def
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.read(key)
	if s == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it case-insensitively matches one of
// allowed; unset returns def; anything else panics (a typo'd enum is a
// deploy error, not a fallback case)
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("env not in allowed set")
	return "" // unreachable
}
