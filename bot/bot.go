// Package bot talks to external move providers.
//
// A bot receives one text line per request and answers a move request with
// a single line holding two node indexes. Lines sent by the match loop:
//
//	start <color> <full board description>
//	turn <power state>
//	result <color> <a> <b> <0|1>
//	end <winner color>
package bot

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

var (
	ErrMoveTimeout     = errors.New("bot did not answer in time")
	ErrBotDisconnected = errors.New("bot disconnected")
	ErrMalformedMove   = errors.New("malformed move")
)

// BotUnavailableError means the bot could not be started at all.
type BotUnavailableError struct {
	Name  string
	Stage string
	Err   error
}

func (e *BotUnavailableError) Error() string {
	return fmt.Sprintf("bot %s unavailable (%s): %v", e.Name, e.Stage, e.Err)
}

func (e *BotUnavailableError) Unwrap() error {
	return e.Err
}

type Move struct {
	A, B int
}

func (m Move) String() string {
	return fmt.Sprintf("%d %d", m.A, m.B)
}

type Bot interface {
	Name() string
	// RequestMove sends snapshot and blocks until the bot answers, the
	// context ends or the bot's own move timeout passes.
	RequestMove(ctx context.Context, snapshot string) (Move, error)
	// Notify sends a line that expects no answer.
	Notify(ctx context.Context, message string) error
	Close() error
}

func ParseMove(line string) (Move, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Move{}, errors.Wrapf(ErrMalformedMove, "want 2 fields, got %q", line)
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return Move{}, errors.Wrapf(ErrMalformedMove, "first index %q", fields[0])
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return Move{}, errors.Wrapf(ErrMalformedMove, "second index %q", fields[1])
	}
	return Move{A: a, B: b}, nil
}
