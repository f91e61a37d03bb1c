package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("json", "debug", &buf)
	require.NoError(t, err)

	log.Debug().Str("game_id", "abc").Int("attempts", 3).Msg("guess")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "guess", line["message"])
	assert.Equal(t, "abc", line["game_id"])
	assert.EqualValues(t, 3, line["attempts"])
	assert.Contains(t, line, "time")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("json", "warn", &buf)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("text", "", &buf)
	require.NoError(t, err)

	log.Info().Str("addr", ":8080").Msg("http server starting")
	assert.Contains(t, buf.String(), "http server starting")
	assert.Contains(t, buf.String(), "addr=")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("xml", "info", &bytes.Buffer{})
	require.Error(t, err)

	_, err = New("json", "loud", &bytes.Buffer{})
	require.Error(t, err)
}
