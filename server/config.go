package server

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"os"
	"strconv"
	"strings"
	"time"
)

type MatchConfig struct {
	NodePairs   int
	Width       float64
	Height      float64
	MoveTimeout time.Duration
	MaxMoves    int
	// Retention is how long a finished match stays listed.
	Retention   time.Duration
}

type Config struct {
	Port     string
	RedBot   []string
	BlueBot  []string
	LogLevel log.Level
	Match    MatchConfig
}

func DefaultConfig() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: log.InfoLevel,
		Match: MatchConfig{
			NodePairs:   30,
			Width:       100,
			Height:      100,
			MoveTimeout: 2 * time.Second,
			MaxMoves:    200,
			Retention:   10 * time.Minute,
		},
	}
}

// LoadConfig reads the environment through getenv, os.Getenv when nil.
// Unset variables keep their defaults.
func LoadConfig(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	c := DefaultConfig()
	if port := getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, errors.Wrapf(err, "PORT=%q", port)
		}
		c.Port = port
	}
	if argv := strings.Fields(getenv("RED_BOT")); len(argv) > 0 {
		c.RedBot = argv
	}
	if argv := strings.Fields(getenv("BLUE_BOT")); len(argv) > 0 {
		c.BlueBot = argv
	}

	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		level, err := log.ParseLevel(lvl)
		if err != nil {
			return nil, errors.Wrapf(err, "LOG_LEVEL=%q", lvl)
		}
		c.LogLevel = level
	}

	var err error
	if c.Match.NodePairs, err = envInt(getenv, "NODE_PAIRS", c.Match.NodePairs); err != nil {
		return nil, err
	}
	if c.Match.MaxMoves, err = envInt(getenv, "MAX_MOVES", c.Match.MaxMoves); err != nil {
		return nil, err
	}
	if c.Match.Width, err = envFloat(getenv, "BOARD_WIDTH", c.Match.Width); err != nil {
		return nil, err
	}
	if c.Match.Height, err = envFloat(getenv, "BOARD_HEIGHT", c.Match.Height); err != nil {
		return nil, err
	}
	if c.Match.MoveTimeout, err = envDuration(getenv, "MOVE_TIMEOUT", c.Match.MoveTimeout); err != nil {
		return nil, err
	}
	if c.Match.Retention, err = envDuration(getenv, "MATCH_RETENTION", c.Match.Retention); err != nil {
		return nil, err
	}
	return c, nil
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("%s=%q: want a positive duration", key, v)
	}
	return d, nil
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("%s=%q: want a positive integer", key, v)
	}
	return n, nil
}

func envFloat(getenv func(string) string, key string, def float64) (float64, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !(f > 0) {
		return 0, errors.Errorf("%s=%q: want a positive number", key, v)
	}
	return f, nil
}
