package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-token-server/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestNewJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "PROD", "warn")

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Str("tenant", "acme").Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "acme", entry["tenant"])
	require.Equal(t, "warn", entry["level"])
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "PROD", "chatty")

	l.Debug().Msg("dropped")
	require.Zero(t, buf.Len())
	l.Info().Msg("kept")
	require.NotZero(t, buf.Len())
}
