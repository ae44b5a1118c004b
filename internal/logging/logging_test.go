package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-admin-console/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup("PRODUCTION", &buf)

	log.Info().Str("path", "/dashboard").Msg("navigated")
	log.Debug().Msg("dropped below info")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "navigated", line["message"])
	require.Equal(t, "/dashboard", line["path"])
}

func TestSetupDevelopmentUsesConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup("DEV", &buf)

	log.Debug().Msg("checking authentication")
	require.Contains(t, buf.String(), "checking authentication")
	require.False(t, json.Valid(buf.Bytes()))
}
