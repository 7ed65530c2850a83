package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Level: "debug", Format: "json", Output: &buf}))

	log := WithComponent("numbering")
	log.Debug().Str("number", "DEV-2025-0001").Msg("allocated")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "numbering", entry["component"])
	assert.Equal(t, "DEV-2025-0001", entry["number"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup(Config{Level: "loud"}))
}

func TestDerivedLoggersChain(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Level: "info", Format: "json", Output: &buf}))

	WithComponent("quotes").Info().Str("number", "DEV-2025-0001").Msg("Quote created")
	WithRequestID("req-1").Warn().Int("status", 404).Msg("Request handled")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "quotes", first["component"])
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "req-1", second["request_id"])
	assert.Equal(t, "warn", second["level"])
}
