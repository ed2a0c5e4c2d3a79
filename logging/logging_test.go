package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	expect "github.com/yusing/cspolicy/testing"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestSetup(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	Setup(Config{Level: "warn", Output: &buf})
	expect.Equal(t, zerolog.GlobalLevel(), zerolog.WarnLevel)

	log.Info().Msg("hidden")
	log.Warn().Str("directive", "img-src").Msg("shown")
	expect.StringsNotContain(t, buf.String(), "hidden")
	expect.StringsContain(t, buf.String(), `"directive":"img-src"`)
}

func TestSetupUnknownLevel(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	Setup(Config{Level: "loud", Output: &buf})
	expect.Equal(t, zerolog.GlobalLevel(), zerolog.InfoLevel)
	expect.StringsContain(t, buf.String(), "unknown log level")
}
