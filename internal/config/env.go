package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/flags"
)

// envSettings are the environment defaults. Pointer fields stay nil when the
// variable is unset so flags given on the command line can win.
type envSettings struct {
	Timezone     *string `env:"ADE_CONSOLE_TIMEZONE"`
	TimeLayout   *string `env:"ADE_CONSOLE_TIME_LAYOUT"`
	DownloadBase *string `env:"ADE_CONSOLE_DOWNLOAD_BASE"`
	LogLevel     *string `env:"ADE_CONSOLE_LOG_LEVEL"`
	Concurrency  *int    `env:"ADE_CONSOLE_CONCURRENCY"`
	NoColor      *string `env:"NO_COLOR"`
}

// ApplyEnv loads environment defaults into c. Fields whose flag was set
// explicitly (changed reports true for its name) are left alone.
func (c *Config) ApplyEnv(environ []string, changed func(flag string) bool) error {
	var s envSettings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environMap(environ)}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	setString := func(dst *string, v *string, flag string) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setString(&c.Render.Timezone, s.Timezone, flags.FlagTimezone)
	setString(&c.Render.TimeLayout, s.TimeLayout, flags.FlagTimeLayout)
	setString(&c.Render.DownloadBase, s.DownloadBase, flags.FlagDownloadBase)
	setString(&c.Runtime.LogLevel, s.LogLevel, flags.FlagLogLevel)

	if s.Concurrency != nil && !changed(flags.FlagConcurrency) {
		c.Runtime.Concurrency = *s.Concurrency
	}
	// NO_COLOR disables colour when set to any non-empty value.
	if s.NoColor != nil && *s.NoColor != "" && !changed(flags.FlagNoColor) {
		c.Render.NoColor = true
	}
	return nil
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
