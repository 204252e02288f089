package model

import (
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// ServerMessage is a single text frame sent to match viewers.
type ServerMessage interface {
	Encode() string
}

type Setup struct {
	MatchID     string
	NodeCount   int
	Description string
}

func (s Setup) Encode() string {
	return fmt.Sprintf("setup %s %d %s", s.MatchID, s.NodeCount, s.Description)
}

// MoveResult carries ownership next to power so a viewer never misses a
// capture.
type MoveResult struct {
	Color      Color
	A, B       int
	Success    bool
	Ownership  string
	PowerState string
}

func (m MoveResult) Encode() string {
	return fmt.Sprintf("move %d %d %d %s %s | %s",
		int(m.Color), m.A, m.B, boolToken(m.Success), m.Ownership, m.PowerState)
}

type GameOver struct {
	Winner Color
	Reason string
}

func (g GameOver) Encode() string {
	return fmt.Sprintf("over %d %s", int(g.Winner), strings.ReplaceAll(g.Reason, " ", "_"))
}

func boolToken(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseColor reads a color token as written in the token streams.
func ParseColor(token string) (Color, error) {
	v, err := strconv.Atoi(token)
	if err != nil {
		return Neutral, errors.Wrapf(err, "color %q", token)
	}
	switch c := Color(v); c {
	case Neutral, Red, Blue:
		return c, nil
	default:
		return Neutral, errors.Errorf("unknown color %d", v)
	}
}
