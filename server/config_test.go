package server

import (
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig(env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigOverrides(t *testing.T) {
	c, err := LoadConfig(env(map[string]string{
		"PORT":            "9000",
		"RED_BOT":         "python3 bots/red.py --fast",
		"NODE_PAIRS":      "12",
		"BOARD_WIDTH":     "250.5",
		"BOARD_HEIGHT":    "80",
		"MOVE_TIMEOUT":    "750ms",
		"MAX_MOVES":       "40",
		"LOG_LEVEL":       "debug",
		"MATCH_RETENTION": "1h",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, []string{"python3", "bots/red.py", "--fast"}, c.RedBot)
	assert.Empty(t, c.BlueBot)
	assert.Equal(t, log.DebugLevel, c.LogLevel)
	assert.Equal(t, MatchConfig{
		NodePairs:   12,
		Width:       250.5,
		Height:      80,
		MoveTimeout: 750 * time.Millisecond,
		MaxMoves:    40,
		Retention:   time.Hour,
	}, c.Match)
}

func TestLoadConfigErrors(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":            "http",
		"NODE_PAIRS":      "0",
		"MAX_MOVES":       "many",
		"BOARD_WIDTH":     "-4",
		"BOARD_HEIGHT":    "NaN",
		"MOVE_TIMEOUT":    "soon",
		"LOG_LEVEL":       "loud",
		"MATCH_RETENTION": "-1m",
	} {
		_, err := LoadConfig(env(map[string]string{key: value}))
		assert.Error(t, err, "%s=%s", key, value)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "PLAY", MS_PLAY.Name())
	assert.Equal(t, "WATCH", VS_WATCH.Name())
	assert.Equal(t, HTTP_NOT_FOUND, MATCH_NOT_FOUND.ToHttp())
	assert.Equal(t, HTTP_BAD_REQUEST, MATCH_INVALID.ToHttp())
}
